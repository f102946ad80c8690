package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

type SnapshotCmd struct {
	description string
	env         *Env
}

func NewSnapshotCmd(env *Env) *cobra.Command {
	sc := &SnapshotCmd{env: env}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage inventory snapshots",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.create,
	}
	create.Flags().StringVar(&sc.description, "description", "", "Snapshot description")

	cmd.AddCommand(create)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshots",
		RunE:  sc.list,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE:  sc.delete,
	})

	return cmd
}

func (sc *SnapshotCmd) create(cmd *cobra.Command, args []string) error {
	snap, err := sc.env.Snapshots.Create(cmd.Context(), args[0], sc.description)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created snapshot %s (%s)\n", snap.Name, snap.ID)
	return nil
}

func (sc *SnapshotCmd) list(cmd *cobra.Command, _ []string) error {
	snaps, err := sc.env.Snapshots.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No snapshots found")
		return nil
	}
	for _, snap := range snaps {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n",
			snap.ID, snap.CreatedAt.Format("2006-01-02 15:04"), snap.Name)
	}
	return nil
}

func (sc *SnapshotCmd) delete(cmd *cobra.Command, args []string) error {
	if err := sc.env.Snapshots.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
	return nil
}
