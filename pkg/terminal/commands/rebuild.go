package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type RebuildCmd struct {
	snapshotID string
	env        *Env
}

func NewRebuildCmd(env *Env) *cobra.Command {
	rc := &RebuildCmd{env: env}
	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the relationship graph of a snapshot",
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.snapshotID, "snapshot", "", "Target snapshot id")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func (rc *RebuildCmd) run(cmd *cobra.Command, _ []string) error {
	count, err := rc.env.Builder.Rebuild(cmd.Context(), rc.snapshotID)
	if err != nil {
		return fmt.Errorf("graph rebuild failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Graph rebuilt: %d edges\n", count)
	return nil
}
