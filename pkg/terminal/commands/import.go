package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/de-tools/cloud-atlas/pkg/services/classify"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/spf13/cobra"
)

type ImportCmd struct {
	snapshotID string
	kind       string
	env        *Env
}

func NewImportCmd(env *Env) *cobra.Command {
	ic := &ImportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "import <files...>",
		Short: "Classify and import export files into a snapshot",
		Args:  cobra.MinimumNArgs(1),
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.snapshotID, "snapshot", "", "Target snapshot id")
	cmd.Flags().StringVar(&ic.kind, "kind", "", "Explicit kind for all files (default: detect per file)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func (ic *ImportCmd) run(cmd *cobra.Command, args []string) error {
	if err := validateKind(ic.kind); err != nil {
		return err
	}

	payloads := make([]ingest.Payload, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		payloads = append(payloads, ingest.Payload{Name: path, Kind: ic.kind, Data: data})
	}

	done := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for {
			select {
			case p := <-ic.env.Importer.Progress():
				fmt.Fprintf(cmd.OutOrStdout(), "processed %d/%d files\n", p.ProcessedFiles, p.TotalFiles)
			case <-done:
				return
			}
		}
	}()

	result, err := ic.env.Importer.Import(cmd.Context(), ic.snapshotID, payloads)
	close(done)
	<-drained
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %d files (%d skipped)\n",
		result.RecordsImported, result.FilesProcessed, result.RecordsSkipped)
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", warning)
	}
	return nil
}

// validateKind rejects a --kind value no parser is registered for before
// any file is touched.
func validateKind(kind string) error {
	if kind == "" {
		return nil
	}
	names := make([]string, 0, len(classify.Kinds()))
	for _, k := range classify.Kinds() {
		if string(k) == kind {
			return nil
		}
		names = append(names, string(k))
	}
	return fmt.Errorf("unknown kind %q, known kinds: %s", kind, strings.Join(names, ", "))
}
