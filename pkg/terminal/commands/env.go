package commands

import (
	"database/sql"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/graph"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/snapshot"
)

// Env holds the shared stores and services CLI commands run against. It
// is initialized once by the root command before any subcommand executes.
type Env struct {
	db        *sql.DB
	Snapshots snapshot.Store
	Records   record.Store
	Edges     edge.Store
	Importer  *ingest.Importer
	Builder   *graph.Builder
	Auditor   *audit.Auditor
}

func (e *Env) Init(dbPath string, settings audit.Settings) error {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: dbPath})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	records, err := record.NewStore(db)
	if err != nil {
		return err
	}
	edges, err := edge.NewStore(db)
	if err != nil {
		return err
	}
	snapshots, err := snapshot.NewStore(db, records, edges)
	if err != nil {
		return err
	}

	e.db = db
	e.Snapshots = snapshots
	e.Records = records
	e.Edges = edges
	e.Importer = ingest.NewImporter(records)
	e.Builder = graph.NewBuilder(records, edges)
	e.Auditor = audit.NewAuditor(records, edges, settings)
	return nil
}

func (e *Env) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
