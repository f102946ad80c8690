package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/google/uuid"
)

// Store manages snapshot lifecycle. Delete cascades through the record
// and edge stores inside one shared transaction.
type Store interface {
	Create(ctx context.Context, name, description string) (store.Snapshot, error)
	Get(ctx context.Context, id string) (store.Snapshot, error)
	List(ctx context.Context) ([]store.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

type snapshotStore struct {
	db      *sql.DB
	records record.Store
	edges   edge.Store
}

func NewStore(db *sql.DB, records record.Store, edges edge.Store) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &snapshotStore{db: db, records: records, edges: edges}, nil
}

func (s *snapshotStore) Create(ctx context.Context, name, description string) (store.Snapshot, error) {
	snap := store.Snapshot{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, name, description, created_at) VALUES (?, ?, ?, ?)`,
		snap.ID, snap.Name, snap.Description, snap.CreatedAt)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap, nil
}

func (s *snapshotStore) Get(ctx context.Context, id string) (store.Snapshot, error) {
	var snap store.Snapshot
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM snapshots WHERE id = ?`, id).
		Scan(&snap.ID, &snap.Name, &description, &snap.CreatedAt)
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	snap.Description = description.String
	return snap, nil
}

func (s *snapshotStore) List(ctx context.Context) ([]store.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]store.Snapshot, 0)
	for rows.Next() {
		var snap store.Snapshot
		var description sql.NullString
		if err := rows.Scan(&snap.ID, &snap.Name, &description, &snap.CreatedAt); err != nil {
			return nil, err
		}
		snap.Description = description.String
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

func (s *snapshotStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete snapshot: %w", err)
	}
	defer tx.Rollback()

	ctx = duckdb.WithTransaction(ctx, tx)
	if err := s.edges.DeleteBySnapshot(ctx, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if err := s.records.DeleteBySnapshot(ctx, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	return tx.Commit()
}
