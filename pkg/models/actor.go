package models

import (
	"time"

	"github.com/ammar0144/catalog4go/pkg/repository"
)

// Actor is associated many-to-many with titles of either kind
type Actor struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id" msgpack:"id"`
	Name      string    `gorm:"size:255;not null" json:"name" msgpack:"name"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`
}

// TableName returns the database table name
func (Actor) TableName() string {
	return "actors"
}

// GetPrimaryKeyValue returns the actor ID
func (a Actor) GetPrimaryKeyValue() interface{} {
	return a.ID
}

// TitleActor is the junction row linking one title to one actor
type TitleActor struct {
	TitleID string `gorm:"primaryKey;size:64" json:"title_id" msgpack:"title_id"`
	ActorID string `gorm:"primaryKey;size:64;index" json:"actor_id" msgpack:"actor_id"`

	Title Title `gorm:"foreignKey:TitleID;references:ID;constraint:OnDelete:CASCADE" json:"-" msgpack:"-"`
	Actor Actor `gorm:"foreignKey:ActorID;references:ID;constraint:OnDelete:CASCADE" json:"-" msgpack:"-"`
}

// TableName returns the database table name
func (TitleActor) TableName() string {
	return "title_actors"
}

// GetPrimaryKeyValue returns the composite key as "title:actor"
func (ta TitleActor) GetPrimaryKeyValue() interface{} {
	return ta.TitleID + ":" + ta.ActorID
}

// GetRelationships reports both sides so cached lookups of either are invalidated
func (ta TitleActor) GetRelationships() map[string][]repository.RelatedEntity {
	return map[string][]repository.RelatedEntity{
		"belongs_to": {
			{EntityType: Title{}.TableName(), EntityID: ta.TitleID},
			{EntityType: Actor{}.TableName(), EntityID: ta.ActorID},
		},
	}
}

var (
	_ repository.Entity            = Actor{}
	_ repository.RelationshipAware = TitleActor{}
)

// DistinctActorIDs returns the actor IDs of the associations, first occurrence order kept
func DistinctActorIDs(associations []TitleActor) []string {
	seen := make(map[string]struct{}, len(associations))
	ids := make([]string, 0, len(associations))
	for _, a := range associations {
		if _, ok := seen[a.ActorID]; ok {
			continue
		}
		seen[a.ActorID] = struct{}{}
		ids = append(ids, a.ActorID)
	}
	return ids
}
