package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/google/uuid"
)

// Store persists canonical records. Upsert is keyed on
// (snapshot_id, global_id): re-importing the same global id within a
// snapshot updates the row in place and keeps its storage id.
type Store interface {
	Upsert(ctx context.Context, snapshotID string, records []store.ResourceRecord) error
	ListRefs(ctx context.Context, snapshotID string) ([]store.RecordRef, error)
	GetByIDs(ctx context.Context, snapshotID string, ids []string) ([]store.ResourceRecord, error)
	List(ctx context.Context, snapshotID string, filter store.RecordFilter) ([]store.ResourceRecord, error)
	Count(ctx context.Context, snapshotID string, filter store.RecordFilter) (int64, error)
	DeleteBySnapshot(ctx context.Context, snapshotID string) error
}

type recordStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &recordStore{db: db}, nil
}

const upsertQuery = `
	INSERT INTO resource_records (
		id, snapshot_id, global_id, kind, display_name, container_id,
		lifecycle_state, availability_domain, region, created_at,
		defined_tags, freeform_tags, attributes
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (snapshot_id, global_id) DO UPDATE SET
		kind = excluded.kind,
		display_name = excluded.display_name,
		container_id = excluded.container_id,
		lifecycle_state = excluded.lifecycle_state,
		availability_domain = excluded.availability_domain,
		region = excluded.region,
		created_at = excluded.created_at,
		defined_tags = excluded.defined_tags,
		freeform_tags = excluded.freeform_tags,
		attributes = excluded.attributes`

func (r *recordStore) Upsert(ctx context.Context, snapshotID string, records []store.ResourceRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx := duckdb.GetTransaction(ctx)
	var stmt *sql.Stmt
	var err error
	if tx == nil {
		stmt, err = r.db.PrepareContext(ctx, upsertQuery)
	} else {
		stmt, err = tx.PrepareContext(ctx, upsertQuery)
	}
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		id := record.ID
		if id == "" {
			id = uuid.NewString()
		}
		definedTags, err := json.Marshal(record.DefinedTags)
		if err != nil {
			return fmt.Errorf("marshal defined tags: %w", err)
		}
		freeformTags, err := json.Marshal(record.FreeformTags)
		if err != nil {
			return fmt.Errorf("marshal freeform tags: %w", err)
		}
		attributes, err := json.Marshal(record.Attributes)
		if err != nil {
			return fmt.Errorf("marshal attributes: %w", err)
		}

		_, err = stmt.ExecContext(ctx,
			id,
			snapshotID,
			record.GlobalID,
			record.Kind,
			record.DisplayName,
			record.ContainerID,
			record.LifecycleState,
			record.AvailabilityDomain,
			record.Region,
			record.CreatedAt,
			definedTags,
			freeformTags,
			attributes,
		)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", record.GlobalID, err)
		}
	}
	return nil
}

func (r *recordStore) ListRefs(ctx context.Context, snapshotID string) ([]store.RecordRef, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, global_id, kind, container_id FROM resource_records WHERE snapshot_id = ?`,
		snapshotID)
	if err != nil {
		return nil, fmt.Errorf("list record refs: %w", err)
	}
	defer rows.Close()

	refs := make([]store.RecordRef, 0)
	for rows.Next() {
		var ref store.RecordRef
		var containerID sql.NullString
		if err := rows.Scan(&ref.ID, &ref.GlobalID, &ref.Kind, &containerID); err != nil {
			return nil, err
		}
		ref.ContainerID = containerID.String
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

const selectColumns = `
	SELECT id, global_id, kind, display_name, container_id, lifecycle_state,
		availability_domain, region, created_at, defined_tags, freeform_tags, attributes
	FROM resource_records`

func (r *recordStore) GetByIDs(ctx context.Context, snapshotID string, ids []string) ([]store.ResourceRecord, error) {
	if len(ids) == 0 {
		return []store.ResourceRecord{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, 1+len(ids))
	args = append(args, snapshotID)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}

	query := fmt.Sprintf("%s WHERE snapshot_id = ? AND id IN (%s)",
		selectColumns, strings.Join(placeholders, ","))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records by ids: %w", err)
	}
	defer rows.Close()
	return scanRecordRows(rows, snapshotID)
}

func (r *recordStore) List(ctx context.Context, snapshotID string, filter store.RecordFilter) ([]store.ResourceRecord, error) {
	query := selectColumns + ` WHERE snapshot_id = ?`
	args := []interface{}{snapshotID}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}
	query += ` ORDER BY kind, display_name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecordRows(rows, snapshotID)
}

func (r *recordStore) Count(ctx context.Context, snapshotID string, filter store.RecordFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM resource_records WHERE snapshot_id = ?`
	args := []interface{}{snapshotID}
	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, filter.Kind)
	}

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func (r *recordStore) DeleteBySnapshot(ctx context.Context, snapshotID string) error {
	query := `DELETE FROM resource_records WHERE snapshot_id = ?`
	var err error
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err = tx.ExecContext(ctx, query, snapshotID)
	} else {
		_, err = r.db.ExecContext(ctx, query, snapshotID)
	}
	if err != nil {
		return fmt.Errorf("delete records: %w", err)
	}
	return nil
}

func scanRecordRows(rows *sql.Rows, snapshotID string) ([]store.ResourceRecord, error) {
	records := make([]store.ResourceRecord, 0)
	for rows.Next() {
		var (
			rec                                    store.ResourceRecord
			displayName, containerID, lifecycle    sql.NullString
			availabilityDomain, region             sql.NullString
			createdAt                              sql.NullTime
			definedRaw, freeformRaw, attributesRaw []byte
		)
		err := rows.Scan(&rec.ID, &rec.GlobalID, &rec.Kind, &displayName, &containerID,
			&lifecycle, &availabilityDomain, &region, &createdAt,
			&definedRaw, &freeformRaw, &attributesRaw)
		if err != nil {
			return nil, err
		}
		rec.SnapshotID = snapshotID
		rec.DisplayName = displayName.String
		rec.ContainerID = containerID.String
		rec.LifecycleState = lifecycle.String
		rec.AvailabilityDomain = availabilityDomain.String
		rec.Region = region.String
		if createdAt.Valid {
			t := createdAt.Time
			rec.CreatedAt = &t
		}
		rec.DefinedTags = unmarshalTags(definedRaw)
		rec.FreeformTags = unmarshalTags(freeformRaw)
		if len(attributesRaw) > 0 {
			attrs := map[string]any{}
			_ = json.Unmarshal(attributesRaw, &attrs)
			rec.Attributes = attrs
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func unmarshalTags(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	tags := map[string]string{}
	_ = json.Unmarshal(raw, &tags)
	if len(tags) == 0 {
		return nil
	}
	return tags
}
