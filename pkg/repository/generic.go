package repository

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/redis"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Cache key constants for consistent key generation
const (
	cacheKeyHashLength = 12 // Balance between uniqueness and key length
)

// GenericRepository provides CRUD operations with cache-first reads
// and relationship-aware invalidation on writes
type GenericRepository[T Entity] struct {
	db        *gorm.DB
	dbManager *db.Manager
	redis     *redis.Manager
	tableName string
	dbName    string // Database name for cache key isolation
}

// NewGenericRepository creates a new generic repository with GORM and optional Redis integration
func NewGenericRepository[T Entity](dbManager *db.Manager, redisManager *redis.Manager) Repository[T] {
	var zero T
	tableName := zero.TableName()
	if tableName == "" {
		panic(fmt.Sprintf("entity type %v returned empty TableName()", reflect.TypeOf(zero)))
	}

	if !redisManager.Enabled() {
		redisManager = nil
	}

	return &GenericRepository[T]{
		db:        dbManager.DB(),
		dbManager: dbManager,
		redis:     redisManager,
		tableName: tableName,
		dbName:    extractDatabaseName(dbManager.DB()),
	}
}

// NewGenericRepositoryDBOnly creates a repository without Redis (database only)
func NewGenericRepositoryDBOnly[T Entity](manager *db.Manager) Repository[T] {
	return NewGenericRepository[T](manager, nil)
}

// withQueryTimeout wraps a context with the configured query timeout
func (r *GenericRepository[T]) withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.dbManager != nil && r.dbManager.Config() != nil {
		if timeout := r.dbManager.Config().QueryTimeout; timeout > 0 {
			return context.WithTimeout(ctx, timeout)
		}
	}
	return ctx, func() {}
}

// ============================================================================
// READ OPERATIONS - Cache-First Implementation
// ============================================================================

// FindByID finds a record by ID with cache-first strategy.
// Returns nil, nil when the record does not exist.
func (r *GenericRepository[T]) FindByID(ctx context.Context, id interface{}) (*T, error) {
	if id == nil {
		return nil, fmt.Errorf("id cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before operation: %w", err)
	}

	cacheKey := r.generateCacheKey("find_by_id", fmt.Sprintf("%v", id))

	if r.redis != nil {
		var entity T
		if err := r.redis.GetValue(ctx, cacheKey, &entity); err == nil {
			return &entity, nil
		} else if !redis.IsKeyNotFound(err) {
			logging.Ctx(ctx).Debug().Err(err).Str("key", cacheKey).Msg("cache read failed, falling back to database")
		}
	}

	// Primary key lookup keeps column names out of the query text
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if r.redis != nil {
		deps := map[string][]interface{}{r.tableName: {entity.GetPrimaryKeyValue()}}
		// best-effort cache store
		_ = r.redis.SetWithDependencies(ctx, cacheKey, entity, deps)
	}

	return &entity, nil
}

// FindWhere finds records with conditions and caching
func (r *GenericRepository[T]) FindWhere(ctx context.Context, query interface{}, args ...interface{}) ([]T, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled before operation: %w", err)
	}

	// *gorm.DB queries are not deterministic enough to key a cache entry on
	_, isGormDB := query.(*gorm.DB)
	shouldCache := r.redis != nil && !isGormDB

	var cacheKey string
	if shouldCache {
		cacheKey = r.generateCacheKeyFromQuery("find_where", query, args...)
		var entities []T
		if err := r.redis.GetValue(ctx, cacheKey, &entities); err == nil {
			return entities, nil
		}
	}

	var entities []T
	if err := r.db.WithContext(ctx).Where(query, args...).Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if shouldCache {
		_ = r.redis.SetWithDependencies(ctx, cacheKey, entities, r.extractDependencies(entities))
	}

	return entities, nil
}

// Raw runs a hand-built SELECT and scans the result into dest. Never cached.
func (r *GenericRepository[T]) Raw(ctx context.Context, dest interface{}, sql string, args ...interface{}) error {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	if err := r.db.WithContext(ctx).Raw(sql, args...).Scan(dest).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return nil
}

// ============================================================================
// WRITE OPERATIONS - Cache Invalidation Implementation
// ============================================================================

// Create creates a new record with automatic cache invalidation
func (r *GenericRepository[T]) Create(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("entity cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	// Associations are owned by their own repositories
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}

	r.invalidateEntityCaches(ctx, *entity)
	return nil
}

// Delete deletes a record by ID with cache invalidation.
// Reports false without error when the record does not exist.
func (r *GenericRepository[T]) Delete(ctx context.Context, id interface{}) (bool, error) {
	if id == nil {
		return false, fmt.Errorf("id cannot be nil")
	}

	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if result.Error != nil {
		return false, fmt.Errorf("database error: %w", result.Error)
	}

	if r.redis != nil {
		_ = r.InvalidateEntity(ctx, id)
	}

	return result.RowsAffected > 0, nil
}

// DeleteWhere deletes every record matching the conditions and invalidates each one
func (r *GenericRepository[T]) DeleteWhere(ctx context.Context, query interface{}, args ...interface{}) (int64, error) {
	ctx, cancel := r.withQueryTimeout(ctx)
	defer cancel()

	// Load first so relationships of the removed rows can be invalidated
	var entities []T
	if r.redis != nil {
		if err := r.db.WithContext(ctx).Where(query, args...).Find(&entities).Error; err != nil {
			return 0, fmt.Errorf("database error while loading entities to delete: %w", err)
		}
	}

	result := r.db.WithContext(ctx).Where(query, args...).Delete(new(T))
	if result.Error != nil {
		return 0, fmt.Errorf("database error: %w", result.Error)
	}

	for _, entity := range entities {
		r.invalidateEntityCaches(ctx, entity)
	}

	return result.RowsAffected, nil
}

// ============================================================================
// CACHE MANAGEMENT
// ============================================================================

// InvalidateCache invalidates all caches for this entity type in this database
func (r *GenericRepository[T]) InvalidateCache(ctx context.Context) error {
	if r.redis == nil {
		return nil
	}

	pattern := fmt.Sprintf("%s%s%s%s%s%s*", redis.KeyPrefix, redis.KeySeparator, r.dbName, redis.KeySeparator, r.tableName, redis.KeySeparator)
	return r.redis.InvalidatePattern(ctx, pattern)
}

// InvalidateEntity drops every cache entry that depends on the entity with the given ID
func (r *GenericRepository[T]) InvalidateEntity(ctx context.Context, id interface{}) error {
	if r.redis == nil {
		return nil
	}
	return r.redis.InvalidateEntityDependencies(ctx, r.tableName, id)
}

// NoCache returns a copy of the repository that always reads from the database
func (r *GenericRepository[T]) NoCache() Repository[T] {
	newRepo := *r
	newRepo.redis = nil
	return &newRepo
}

// WithTx returns a copy of the repository bound to a transaction
func (r *GenericRepository[T]) WithTx(tx *gorm.DB) Repository[T] {
	newRepo := *r
	newRepo.db = tx
	return &newRepo
}

// ============================================================================
// HELPER METHODS - Cache Key Generation and Management
// ============================================================================

// generateCacheKey creates a cache key for simple operations with database isolation
func (r *GenericRepository[T]) generateCacheKey(operation, suffix string) string {
	sep := redis.KeySeparator
	return redis.KeyPrefix + sep + r.dbName + sep + r.tableName + sep + operation + sep + suffix
}

// generateCacheKeyFromQuery creates a cache key from a query and its parameters
func (r *GenericRepository[T]) generateCacheKeyFromQuery(operation string, query interface{}, args ...interface{}) string {
	var queryStr string

	switch q := query.(type) {
	case string:
		queryStr = q
	case map[string]interface{}:
		// map keys are marshaled sorted, giving a stable key
		data, err := json.Marshal(q)
		if err != nil {
			queryStr = fmt.Sprintf("%v", q)
		} else {
			queryStr = string(data)
		}
	default:
		queryStr = fmt.Sprintf("%T:%v", query, query)
	}

	argsData, err := json.Marshal(args)
	if err != nil {
		argsData = []byte(fmt.Sprintf("%v", args))
	}

	hash := xxhash.Sum64String(queryStr + redis.KeySeparator + string(argsData))
	hashStr := fmt.Sprintf("%016x", hash)
	return r.generateCacheKey(operation, hashStr[:cacheKeyHashLength])
}

// extractDependencies builds the dependency map used for relationship invalidation
func (r *GenericRepository[T]) extractDependencies(entities []T) map[string][]interface{} {
	dependencies := make(map[string][]interface{})

	for _, entity := range entities {
		if pk := entity.GetPrimaryKeyValue(); pk != nil {
			dependencies[r.tableName] = append(dependencies[r.tableName], pk)
		}

		for _, related := range relatedEntities(entity) {
			dependencies[related.EntityType] = append(dependencies[related.EntityType], related.EntityID)
		}
	}

	return dependencies
}

// invalidateEntityCaches handles cache invalidation for entity changes (best effort)
func (r *GenericRepository[T]) invalidateEntityCaches(ctx context.Context, entity T) {
	if r.redis == nil {
		return
	}

	_ = r.InvalidateCache(ctx)
	_ = r.redis.InvalidateEntityDependencies(ctx, r.tableName, entity.GetPrimaryKeyValue())

	for _, related := range relatedEntities(entity) {
		_ = r.redis.InvalidateEntityDependencies(ctx, related.EntityType, related.EntityID)
	}
}

// relatedEntities flattens the declared relationships of a RelationshipAware entity
func relatedEntities(entity interface{}) []RelatedEntity {
	relEntity, ok := entity.(RelationshipAware)
	if !ok {
		return nil
	}

	var out []RelatedEntity
	for _, related := range relEntity.GetRelationships() {
		for _, rel := range related {
			if rel.EntityID != nil {
				out = append(out, rel)
			}
		}
	}
	return out
}

// ============================================================================
// UTILITY FUNCTIONS
// ============================================================================

// extractDatabaseName returns the current database name for cache key isolation
func extractDatabaseName(gormDB *gorm.DB) string {
	if gormDB == nil {
		return "unknown"
	}

	if name := gormDB.Migrator().CurrentDatabase(); name != "" {
		return name
	}

	return "default_db"
}
