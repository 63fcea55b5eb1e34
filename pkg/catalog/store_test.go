package catalog

import (
	"path/filepath"
	"testing"

	"github.com/ammar0144/catalog4go/pkg/db"
	"github.com/ammar0144/catalog4go/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := db.DefaultConfig()
	cfg.Driver = db.DriverSQLite
	cfg.Path = filepath.Join(t.TempDir(), "catalog.db")
	cfg.MaxOpenConns = 1
	cfg.MaxIdleConns = 1

	manager, err := db.NewManager(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })
	require.NoError(t, Migrate(manager.DB()))

	return NewStore(manager, nil)
}

// seed builds: t1 (primary) with a1, a2; t2 (series) with a2, a3; t3 (primary) with a3; a4 unlinked
func seed(t *testing.T, s *Store) {
	t.Helper()
	ctx := t.Context()

	require.NoError(t, s.CreateTitle(ctx, &models.Title{ID: "t1", Kind: models.KindPrimary, Name: "Heat", ArtifactRef: "heat"}))
	require.NoError(t, s.CreateTitle(ctx, &models.Title{ID: "t2", Kind: models.KindSeries, Name: "Lost"}))
	require.NoError(t, s.CreateTitle(ctx, &models.Title{ID: "t3", Kind: models.KindPrimary, Name: "Ronin"}))
	for _, id := range []string{"a1", "a2", "a3", "a4"} {
		require.NoError(t, s.CreateActor(ctx, &models.Actor{ID: id, Name: "Actor " + id}))
	}
	for _, link := range [][2]string{{"t1", "a1"}, {"t1", "a2"}, {"t2", "a2"}, {"t2", "a3"}, {"t3", "a3"}} {
		require.NoError(t, s.Link(ctx, link[0], link[1]))
	}
}

func TestMigrate_NilDB(t *testing.T) {
	assert.Error(t, Migrate(nil))
}

func TestStore_FindTitleByID(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	title, err := s.FindTitleByID(t.Context(), "t1")
	require.NoError(t, err)
	require.NotNil(t, title)
	assert.Equal(t, "heat", title.ArtifactRef)

	missing, err := s.FindTitleByID(t.Context(), "t9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_CreateTitleRejectsUnknownKind(t *testing.T) {
	s := newTestStore(t)
	err := s.CreateTitle(t.Context(), &models.Title{ID: "t1", Kind: "documentary", Name: "x"})
	assert.ErrorContains(t, err, "invalid title kind")
}

func TestStore_CountAssociationsPerKind(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := t.Context()

	tests := []struct {
		actor string
		kind  models.TitleKind
		want  int64
	}{
		{"a1", models.KindPrimary, 1},
		{"a1", models.KindSeries, 0},
		{"a2", models.KindPrimary, 1},
		{"a2", models.KindSeries, 1},
		{"a3", models.KindPrimary, 1},
		{"a3", models.KindSeries, 1},
		{"a4", models.KindPrimary, 0},
		{"a4", models.KindSeries, 0},
	}

	for _, tt := range tests {
		t.Run(tt.actor+"/"+string(tt.kind), func(t *testing.T) {
			got, err := s.CountAssociations(ctx, tt.actor, tt.kind)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_DeleteTitleByIDRemovesAssociations(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := t.Context()

	links, err := s.FindAssociationsByTitle(ctx, "t1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a1", "a2"}, models.DistinctActorIDs(links))

	require.NoError(t, s.DeleteTitleByID(ctx, "t1"))

	title, err := s.FindTitleByID(ctx, "t1")
	require.NoError(t, err)
	assert.Nil(t, title)

	links, err = s.FindAssociationsByTitle(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, links)

	count, err := s.CountAssociations(ctx, "a1", models.KindPrimary)
	require.NoError(t, err)
	assert.Zero(t, count)

	// second delete of the same title is a no-op
	assert.NoError(t, s.DeleteTitleByID(ctx, "t1"))
}

func TestStore_ListUnreferencedActorIDs(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := t.Context()

	ids, err := s.ListUnreferencedActorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a4"}, ids)

	require.NoError(t, s.DeleteTitleByID(ctx, "t1"))

	ids, err = s.ListUnreferencedActorIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a4"}, ids)
}

func TestStore_DeleteActorByID(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	ctx := t.Context()

	require.NoError(t, s.DeleteActorByID(ctx, "a4"))
	require.NoError(t, s.DeleteActorByID(ctx, "a4"))

	ids, err := s.ListUnreferencedActorIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
