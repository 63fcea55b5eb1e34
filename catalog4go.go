// Package catalog4go deletes media catalog titles: it removes the title's media
// file and row, then garbage-collects actors no title references any more.
// Storage is GORM (MySQL or SQLite) with an optional Redis read cache.
package catalog4go

import (
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/authz"
	"github.com/ammar0144/catalog4go/pkg/catalog"
	"github.com/ammar0144/catalog4go/pkg/config"
	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/reaper"
	"github.com/ammar0144/catalog4go/pkg/redis"
	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Config represents database configuration
type Config = db.Config

// NewManager creates a new database manager
func NewManager(config *Config) (*db.Manager, error) {
	return db.NewManager(config)
}

// Entity interface that all repository entities must implement
type Entity = repository.Entity

// Repository provides the generic repository interface
type Repository[T Entity] interface {
	repository.Repository[T]
}

// RedisConfig represents Redis configuration
type RedisConfig = redis.Config

// NewRepository creates a new repository instance.
// A nil or disabled redisManager means database-only mode.
func NewRepository[T Entity](dbManager *db.Manager, redisManager *redis.Manager) Repository[T] {
	return repository.NewGenericRepository[T](dbManager, redisManager)
}

// NewRedisManager creates a new Redis manager
func NewRedisManager(config *RedisConfig) (*redis.Manager, error) {
	return redis.NewManager(config)
}

var _ reaper.Datastore = (*catalog.Store)(nil)

// NewPipeline wires a deletion pipeline from configuration. The Casbin policy
// decides which roles may delete titles and which may sweep orphans.
func NewPipeline(cfg *config.Config, dbManager *db.Manager, redisManager *redis.Manager, session reaper.Session) (*reaper.Pipeline, error) {
	enforcer, err := authz.NewEnforcer(cfg.Security.Casbin)
	if err != nil {
		return nil, fmt.Errorf("authz: %w", err)
	}
	return reaper.New(reaper.Options{
		Session:         session,
		Authorizer:      enforcer,
		SweepAuthorizer: reaper.AuthorizerFunc(enforcer.SweepAllowed),
		Store:           catalog.NewStore(dbManager, redisManager),
		Directories:     cfg.Media,
	})
}

// NewSweeper returns the orphan collector of a configured pipeline. Its Sweep
// is guarded by the sweep policy, not the delete policy.
func NewSweeper(cfg *config.Config, dbManager *db.Manager, redisManager *redis.Manager, session reaper.Session) (*reaper.Collector, error) {
	pipeline, err := NewPipeline(cfg, dbManager, redisManager, session)
	if err != nil {
		return nil, err
	}
	return pipeline.Collector(), nil
}
