// Package models holds the GORM models of the media catalog.
package models

import (
	"time"

	"github.com/ammar0144/catalog4go/pkg/repository"
)

// TitleKind discriminates the two catalog sub-types that share the titles table
type TitleKind string

const (
	// KindPrimary is a stand-alone title (a movie)
	KindPrimary TitleKind = "primary"
	// KindSeries is an episodic title
	KindSeries TitleKind = "series"
)

// Kinds lists every title sub-type, in the order reference counts are taken
var Kinds = []TitleKind{KindPrimary, KindSeries}

// Valid reports whether k is a known sub-type
func (k TitleKind) Valid() bool {
	return k == KindPrimary || k == KindSeries
}

// Title is a catalog entry. ArtifactRef is the logical name of its media file;
// empty means no media was ever attached.
type Title struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id" msgpack:"id"`
	Kind        TitleKind `gorm:"size:16;not null;index" json:"kind" msgpack:"kind"`
	Name        string    `gorm:"size:255;not null" json:"name" msgpack:"name"`
	ArtifactRef string    `gorm:"size:255" json:"artifact_ref,omitempty" msgpack:"artifact_ref"`
	CreatedAt   time.Time `json:"created_at" msgpack:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" msgpack:"updated_at"`
}

// TableName returns the database table name
func (Title) TableName() string {
	return "titles"
}

// GetPrimaryKeyValue returns the title ID
func (t Title) GetPrimaryKeyValue() interface{} {
	return t.ID
}

// HasArtifact reports whether the title references a media file
func (t Title) HasArtifact() bool {
	return t.ArtifactRef != ""
}

var _ repository.Entity = Title{}
