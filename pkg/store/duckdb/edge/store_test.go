package edge

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertBatch_DuplicateTripleCollapses(t *testing.T) {
	db := setupTestDB(t)
	edgeStore, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()
	const snap = "snap-1"

	require.NoError(t, edgeStore.UpsertBatch(ctx, snap, []store.ResourceEdge{
		{FromID: "a", ToID: "b", Relation: "contains", Metadata: map[string]string{"origin": "first"}},
		{FromID: "a", ToID: "b", Relation: "contains", Metadata: map[string]string{"origin": "second"}},
		{FromID: "a", ToID: "b", Relation: "parent"},
	}))

	count, err := edgeStore.Count(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	edges, err := edgeStore.ListBySnapshot(ctx, snap)
	require.NoError(t, err)
	for _, e := range edges {
		if e.Relation == "contains" {
			// The conflicting upsert refreshed metadata in place.
			assert.Equal(t, "second", e.Metadata["origin"])
		}
	}
}

func TestDeleteBySnapshot(t *testing.T) {
	db := setupTestDB(t)
	edgeStore, err := NewStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, edgeStore.UpsertOne(ctx, "snap-a",
		store.ResourceEdge{FromID: "a", ToID: "b", Relation: "contains"}))
	require.NoError(t, edgeStore.UpsertOne(ctx, "snap-b",
		store.ResourceEdge{FromID: "a", ToID: "b", Relation: "contains"}))

	require.NoError(t, edgeStore.DeleteBySnapshot(ctx, "snap-a"))

	countA, err := edgeStore.Count(ctx, "snap-a")
	require.NoError(t, err)
	countB, err := edgeStore.Count(ctx, "snap-b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), countA)
	assert.Equal(t, int64(1), countB)
}

func TestUpsertOne_DriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	edgeStore, err := NewStore(db)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO resource_edges").
		WillReturnError(errors.New("connection reset"))

	err = edgeStore.UpsertOne(context.Background(), "snap-1",
		store.ResourceEdge{FromID: "a", ToID: "b", Relation: "contains"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert edge a->b (contains)")
	require.NoError(t, mock.ExpectationsWereMet())
}
