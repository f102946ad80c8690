package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const SnapshotsSchema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id VARCHAR PRIMARY KEY,
		name VARCHAR NOT NULL,
		description VARCHAR,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

const RecordsSchema = `
	CREATE TABLE IF NOT EXISTS resource_records (
		id VARCHAR NOT NULL,
		snapshot_id VARCHAR NOT NULL,
		global_id VARCHAR NOT NULL,
		kind VARCHAR NOT NULL,
		display_name VARCHAR,
		container_id VARCHAR,
		lifecycle_state VARCHAR,
		availability_domain VARCHAR,
		region VARCHAR,
		created_at TIMESTAMP NULL,
		defined_tags JSON,
		freeform_tags JSON,
		attributes JSON,
		PRIMARY KEY (snapshot_id, global_id)
	);
`

const EdgesSchema = `
	CREATE TABLE IF NOT EXISTS resource_edges (
		snapshot_id VARCHAR NOT NULL,
		from_id VARCHAR NOT NULL,
		to_id VARCHAR NOT NULL,
		relation VARCHAR NOT NULL,
		metadata JSON,
		PRIMARY KEY (snapshot_id, from_id, to_id, relation)
	);
`

var bootQueries = []string{
	SnapshotsSchema,
	RecordsSchema,
	EdgesSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
