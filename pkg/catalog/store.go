package catalog

import (
	"context"
	"fmt"

	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/logging"
	"github.com/ammar0144/catalog4go/pkg/models"
	"github.com/ammar0144/catalog4go/pkg/redis"
	"github.com/ammar0144/catalog4go/pkg/repository"

	"gorm.io/gorm"
)

// Store persists titles, actors and their associations
type Store struct {
	db     *gorm.DB
	titles repository.Repository[models.Title]
	actors repository.Repository[models.Actor]
	links  repository.Repository[models.TitleActor]
}

// NewStore builds a store on top of the database manager.
// redisManager may be nil or disabled.
func NewStore(dbManager *db.Manager, redisManager *redis.Manager) *Store {
	return &Store{
		db:     dbManager.DB(),
		titles: repository.NewGenericRepository[models.Title](dbManager, redisManager),
		actors: repository.NewGenericRepository[models.Actor](dbManager, redisManager),
		links:  repository.NewGenericRepository[models.TitleActor](dbManager, redisManager),
	}
}

// FindTitleByID returns the title or nil when it does not exist
func (s *Store) FindTitleByID(ctx context.Context, id string) (*models.Title, error) {
	title, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find title %s: %w", id, err)
	}
	return title, nil
}

// DeleteTitleByID removes the title and its association rows in one transaction.
// Deleting a title that is already gone is not an error.
func (s *Store) DeleteTitleByID(ctx context.Context, id string) error {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// junction rows go first so the delete does not rely on driver cascades
		if _, err := s.links.WithTx(tx).NoCache().DeleteWhere(ctx, "title_id = ?", id); err != nil {
			return fmt.Errorf("delete associations: %w", err)
		}
		ok, err := s.titles.WithTx(tx).NoCache().Delete(ctx, id)
		if err != nil {
			return fmt.Errorf("delete title row: %w", err)
		}
		deleted = ok
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete title %s: %w", id, err)
	}

	// caches are dropped only once the rows are committed
	_ = s.titles.InvalidateEntity(ctx, id)
	_ = s.titles.InvalidateCache(ctx)
	_ = s.links.InvalidateCache(ctx)

	if !deleted {
		logging.Ctx(ctx).Debug().Str("title_id", id).Msg("title row already absent")
	}
	return nil
}

// FindAssociationsByTitle returns the junction rows of a title, read from the database
func (s *Store) FindAssociationsByTitle(ctx context.Context, id string) ([]models.TitleActor, error) {
	links, err := s.links.NoCache().FindWhere(ctx, "title_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("find associations of title %s: %w", id, err)
	}
	return links, nil
}

// CountAssociations counts the remaining associations of an actor with titles of one kind
func (s *Store) CountAssociations(ctx context.Context, actorID string, kind models.TitleKind) (int64, error) {
	query, args := db.From(models.TitleActor{}.TableName()).
		Count().
		Join("titles", "titles.id = title_actors.title_id").
		Where("title_actors.actor_id", db.Equal, actorID).
		Where("titles.kind", db.Equal, string(kind)).
		Build()

	var count int64
	if err := s.links.NoCache().Raw(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s associations of actor %s: %w", kind, actorID, err)
	}
	return count, nil
}

// DeleteActorByID removes an actor row. A missing actor is not an error.
func (s *Store) DeleteActorByID(ctx context.Context, id string) error {
	if _, err := s.actors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete actor %s: %w", id, err)
	}
	_ = s.actors.InvalidateCache(ctx)
	return nil
}

// ListUnreferencedActorIDs returns every actor with no association at all, ordered by ID
func (s *Store) ListUnreferencedActorIDs(ctx context.Context) ([]string, error) {
	query, args := db.From(models.Actor{}.TableName()).
		Columns("actors.id").
		LeftJoin("title_actors", "title_actors.actor_id = actors.id").
		WhereNull("title_actors.actor_id").
		OrderBy("actors.id", false).
		Build()

	var ids []string
	if err := s.actors.NoCache().Raw(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list unreferenced actors: %w", err)
	}
	return ids, nil
}

// CreateTitle inserts a title
func (s *Store) CreateTitle(ctx context.Context, title *models.Title) error {
	if !title.Kind.Valid() {
		return fmt.Errorf("invalid title kind %q", title.Kind)
	}
	return s.titles.Create(ctx, title)
}

// CreateActor inserts an actor
func (s *Store) CreateActor(ctx context.Context, actor *models.Actor) error {
	return s.actors.Create(ctx, actor)
}

// Link associates an actor with a title
func (s *Store) Link(ctx context.Context, titleID, actorID string) error {
	return s.links.Create(ctx, &models.TitleActor{TitleID: titleID, ActorID: actorID})
}
