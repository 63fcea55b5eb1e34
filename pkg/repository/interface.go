package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository defines the generic repository interface
type Repository[T any] interface {
	// Queries (Read Operations - Cache-First)
	FindByID(ctx context.Context, id interface{}) (*T, error)
	FindWhere(ctx context.Context, query interface{}, args ...interface{}) ([]T, error)

	// Raw runs a hand-built SELECT (never cached) and scans it into dest
	Raw(ctx context.Context, dest interface{}, sql string, args ...interface{}) error

	// Commands (Write Operations - Relationship-Aware Cache Invalidation)
	Create(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteWhere(ctx context.Context, query interface{}, args ...interface{}) (int64, error)

	// Cache Management
	InvalidateCache(ctx context.Context) error
	InvalidateEntity(ctx context.Context, id interface{}) error

	// Scoped copies
	NoCache() Repository[T]
	WithTx(tx *gorm.DB) Repository[T]
}
