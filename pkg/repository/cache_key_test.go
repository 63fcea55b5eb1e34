package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type keyedEntity struct {
	ID string
}

func (keyedEntity) TableName() string { return "keyed" }

func (k keyedEntity) GetPrimaryKeyValue() interface{} { return k.ID }

type linkedEntity struct {
	keyedEntity
	OwnerID string
}

func (l linkedEntity) GetRelationships() map[string][]RelatedEntity {
	return map[string][]RelatedEntity{
		"belongs_to": {{EntityType: "owners", EntityID: l.OwnerID}, {EntityType: "skipped", EntityID: nil}},
	}
}

func TestGenerateCacheKey(t *testing.T) {
	r := &GenericRepository[keyedEntity]{tableName: "keyed", dbName: "main"}

	assert.Equal(t, "catalog4go:main:keyed:find_by_id:42", r.generateCacheKey("find_by_id", "42"))

	k1 := r.generateCacheKeyFromQuery("find_where", map[string]interface{}{"b": 2, "a": 1})
	k2 := r.generateCacheKeyFromQuery("find_where", map[string]interface{}{"a": 1, "b": 2})
	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, "catalog4go:main:keyed:find_where:"))
	assert.Len(t, strings.TrimPrefix(k1, "catalog4go:main:keyed:find_where:"), cacheKeyHashLength)

	k3 := r.generateCacheKeyFromQuery("find_where", "id = ?", "x")
	k4 := r.generateCacheKeyFromQuery("find_where", "id = ?", "y")
	assert.NotEqual(t, k3, k4)
}

func TestRelatedEntities(t *testing.T) {
	assert.Nil(t, relatedEntities(keyedEntity{ID: "1"}))

	related := relatedEntities(linkedEntity{keyedEntity: keyedEntity{ID: "1"}, OwnerID: "o1"})
	assert.Equal(t, []RelatedEntity{{EntityType: "owners", EntityID: "o1"}}, related)
}

func TestNoCacheDropsRedis(t *testing.T) {
	r := &GenericRepository[keyedEntity]{tableName: "keyed"}
	copied := r.NoCache().(*GenericRepository[keyedEntity])
	assert.Nil(t, copied.redis)
	assert.NotSame(t, r, copied)
}
