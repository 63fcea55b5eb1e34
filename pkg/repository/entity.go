package repository

// Entity is a GORM model the generic repository can store and cache
type Entity interface {
	TableName() string

	// GetPrimaryKeyValue identifies the row in cache keys and dependency sets.
	// Composite keys are rendered as a single value.
	GetPrimaryKeyValue() interface{}
}

// RelationshipAware entities name the rows they point at. Writing one invalidates
// every cached lookup that depends on those rows too.
type RelationshipAware interface {
	Entity

	// GetRelationships groups related rows by relation name, e.g.
	// {"belongs_to": [{"titles", "t1"}, {"actors", "a1"}]}
	GetRelationships() map[string][]RelatedEntity
}

// RelatedEntity points at one row of another table
type RelatedEntity struct {
	EntityType string // table name
	EntityID   interface{}
}
