package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

type TagsCmd struct {
	snapshotID   string
	requiredTags []string
	env          *Env
}

func NewTagsCmd(env *Env) *cobra.Command {
	tc := &TagsCmd{env: env}
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Report tag compliance for a snapshot",
		RunE:  tc.run,
	}

	cmd.Flags().StringVar(&tc.snapshotID, "snapshot", "", "Target snapshot id")
	cmd.Flags().StringSliceVar(&tc.requiredTags, "required", nil, "Required tag keys (default from config)")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func (tc *TagsCmd) run(cmd *cobra.Command, _ []string) error {
	report, err := tc.env.Auditor.TagCompliance(cmd.Context(), tc.snapshotID, tc.requiredTags)
	if err != nil {
		return fmt.Errorf("tag compliance failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Records: %d total, %d compliant, %d non-compliant\n",
		report.TotalRecords, report.CompliantRecords, report.NonCompliantRecords)

	keys := make([]string, 0, len(report.PerTagCoverage))
	for key := range report.PerTagCoverage {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		coverage := report.PerTagCoverage[key]
		fmt.Fprintf(out, "  %-20s %d records (%.2f%%)\n", key, coverage.Count, coverage.Percent)
	}
	return nil
}
