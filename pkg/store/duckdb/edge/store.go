package edge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
)

// Store persists relationship edges. Upserts are keyed on
// (snapshot_id, from_id, to_id, relation); only the metadata column is
// refreshed on conflict, so rebuilding a graph never duplicates edges.
type Store interface {
	UpsertBatch(ctx context.Context, snapshotID string, edges []store.ResourceEdge) error
	UpsertOne(ctx context.Context, snapshotID string, edge store.ResourceEdge) error
	ListBySnapshot(ctx context.Context, snapshotID string) ([]store.ResourceEdge, error)
	DeleteBySnapshot(ctx context.Context, snapshotID string) error
	Count(ctx context.Context, snapshotID string) (int64, error)
}

type edgeStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &edgeStore{db: db}, nil
}

const upsertQuery = `
	INSERT INTO resource_edges (snapshot_id, from_id, to_id, relation, metadata)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (snapshot_id, from_id, to_id, relation) DO UPDATE SET
		metadata = excluded.metadata`

func (e *edgeStore) UpsertBatch(ctx context.Context, snapshotID string, edges []store.ResourceEdge) error {
	if len(edges) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = e.db.PrepareContext(ctx, upsertQuery)
	} else {
		stmt, err = tx.PrepareContext(ctx, upsertQuery)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, edge := range edges {
		metadata, err := json.Marshal(edge.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		_, err = stmt.ExecContext(ctx, snapshotID, edge.FromID, edge.ToID, edge.Relation, metadata)
		if err != nil {
			return fmt.Errorf("upsert edge %s->%s (%s): %w", edge.FromID, edge.ToID, edge.Relation, err)
		}
	}
	return nil
}

func (e *edgeStore) UpsertOne(ctx context.Context, snapshotID string, edge store.ResourceEdge) error {
	metadata, err := json.Marshal(edge.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = e.db.ExecContext(ctx, upsertQuery, snapshotID, edge.FromID, edge.ToID, edge.Relation, metadata)
	if err != nil {
		return fmt.Errorf("upsert edge %s->%s (%s): %w", edge.FromID, edge.ToID, edge.Relation, err)
	}
	return nil
}

func (e *edgeStore) ListBySnapshot(ctx context.Context, snapshotID string) ([]store.ResourceEdge, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT from_id, to_id, relation, metadata FROM resource_edges WHERE snapshot_id = ?`,
		snapshotID)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	edges := make([]store.ResourceEdge, 0)
	for rows.Next() {
		var edge store.ResourceEdge
		var metadataRaw []byte
		if err := rows.Scan(&edge.FromID, &edge.ToID, &edge.Relation, &metadataRaw); err != nil {
			return nil, err
		}
		edge.SnapshotID = snapshotID
		if len(metadataRaw) > 0 {
			md := map[string]string{}
			_ = json.Unmarshal(metadataRaw, &md)
			if len(md) > 0 {
				edge.Metadata = md
			}
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

func (e *edgeStore) DeleteBySnapshot(ctx context.Context, snapshotID string) error {
	query := `DELETE FROM resource_edges WHERE snapshot_id = ?`
	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, snapshotID)
	} else {
		_, err = e.db.ExecContext(ctx, query, snapshotID)
	}
	if err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	return nil
}

func (e *edgeStore) Count(ctx context.Context, snapshotID string) (int64, error) {
	var count int64
	err := e.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM resource_edges WHERE snapshot_id = ?`, snapshotID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return count, nil
}
