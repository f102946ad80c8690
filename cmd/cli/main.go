package main

import (
	"fmt"
	"os"

	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/config"
	"github.com/de-tools/cloud-atlas/pkg/terminal/commands"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	var (
		cfgPath string
		dbPath  string
	)

	env := &commands.Env{}
	rootCmd := &cobra.Command{
		Use:   "cloud-atlas",
		Short: "Classify cloud inventory exports, build their relationship graph and audit it",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Storage.Path
			}

			logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))

			return env.Init(dbPath, audit.Settings{
				SensitivePorts: cfg.Audit.SensitivePorts,
				RequiredTags:   cfg.Audit.RequiredTags,
			})
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return env.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "Path to the settings file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the embedded database")

	rootCmd.AddCommand(commands.NewSnapshotCmd(env))
	rootCmd.AddCommand(commands.NewImportCmd(env))
	rootCmd.AddCommand(commands.NewRebuildCmd(env))
	rootCmd.AddCommand(commands.NewAuditCmd(env))
	rootCmd.AddCommand(commands.NewTagsCmd(env))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
