package reaper

import (
	"context"

	"github.com/ammar0144/catalog4go/pkg/models"
)

// Session resolves the caller. Both methods may be called for an unauthenticated caller.
type Session interface {
	Identity(ctx context.Context) (string, bool)
	Role(ctx context.Context) string
}

// Authorizer decides whether a role may run the guarded operation
type Authorizer interface {
	Allowed(role string) bool
}

// AuthorizerFunc adapts a function to Authorizer
type AuthorizerFunc func(role string) bool

// Allowed calls f(role)
func (f AuthorizerFunc) Allowed(role string) bool { return f(role) }

// Filesystem is the part of the OS the artifact reclaimer touches
type Filesystem interface {
	Exists(path string) bool
	Remove(path string) error
}

// Datastore is the relational side of a deletion
type Datastore interface {
	// FindTitleByID returns nil, nil when the title does not exist
	FindTitleByID(ctx context.Context, id string) (*models.Title, error)
	DeleteTitleByID(ctx context.Context, id string) error
	FindAssociationsByTitle(ctx context.Context, id string) ([]models.TitleActor, error)
	CountAssociations(ctx context.Context, actorID string, kind models.TitleKind) (int64, error)
	DeleteActorByID(ctx context.Context, id string) error
	ListUnreferencedActorIDs(ctx context.Context) ([]string, error)
}

// EventLogger records lifecycle events. Implementations must not block or panic.
type EventLogger interface {
	Log(ctx context.Context, event string, payload map[string]any, severity Severity)
}
