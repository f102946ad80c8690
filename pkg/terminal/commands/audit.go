package commands

import (
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/spf13/cobra"
)

type AuditCmd struct {
	snapshotID string
	env        *Env
}

func NewAuditCmd(env *Env) *cobra.Command {
	ac := &AuditCmd{env: env}
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the audit rule catalogue against a snapshot",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.snapshotID, "snapshot", "", "Target snapshot id")
	_ = cmd.MarkFlagRequired("snapshot")

	return cmd
}

func (ac *AuditCmd) run(cmd *cobra.Command, _ []string) error {
	report, err := ac.env.Auditor.Run(cmd.Context(), ac.snapshotID)
	if err != nil {
		return fmt.Errorf("audit failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(report.Findings) == 0 {
		fmt.Fprintln(out, "No findings")
		return nil
	}

	for _, f := range report.Findings {
		fmt.Fprintf(out, "[%s] %s\n", f.Severity, f.Title)
		fmt.Fprintf(out, "    resource: %s (%s)\n", f.Resource.DisplayName, f.Resource.GlobalID)
		fmt.Fprintf(out, "    %s\n", f.Description)
	}

	fmt.Fprintln(out)
	for _, severity := range []domain.Severity{
		domain.SeverityCritical, domain.SeverityHigh, domain.SeverityMedium,
		domain.SeverityLow, domain.SeverityInfo,
	} {
		if count := report.Summary[severity.String()]; count > 0 {
			fmt.Fprintf(out, "%s: %d\n", severity, count)
		}
	}
	return nil
}
