package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-atlas/pkg/server"
	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/config"
	"github.com/de-tools/cloud-atlas/pkg/services/graph"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/snapshot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the cloud-atlas web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.Path})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	records, err := record.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create record store: %w", err)
	}
	edges, err := edge.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create edge store: %w", err)
	}
	snapshots, err := snapshot.NewStore(db, records, edges)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}

	settings := audit.Settings{
		SensitivePorts: cfg.Audit.SensitivePorts,
		RequiredTags:   cfg.Audit.RequiredTags,
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Snapshots: snapshots,
			Records:   records,
			Importer:  ingest.NewImporter(records),
			Builder:   graph.NewBuilder(records, edges),
			Auditor:   audit.NewAuditor(records, edges, settings),
		},
	})

	logger.Info().Str("db", cfg.Storage.Path).Msg("storage ready")
	return api.Start()
}
