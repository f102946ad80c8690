// Package audit evaluates the security and compliance rule catalogue over
// one snapshot's records and edges. Findings are derived on demand and
// never stored.
package audit

import (
	"context"
	"fmt"
	"sort"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	storemodels "github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/rs/zerolog"
)

type Auditor struct {
	records  record.Store
	edges    edge.Store
	settings Settings
}

func NewAuditor(records record.Store, edges edge.Store, settings Settings) *Auditor {
	return &Auditor{records: records, edges: edges, settings: settings}
}

// Run evaluates every rule against every record of the snapshot and
// returns the findings ordered by decreasing severity, plus a
// severity-bucketed tally.
func (a *Auditor) Run(ctx context.Context, snapshotID string) (domain.AuditReport, error) {
	rows, err := a.records.List(ctx, snapshotID, storemodels.RecordFilter{})
	if err != nil {
		return domain.AuditReport{}, fmt.Errorf("load records: %w", err)
	}

	env, err := a.buildEnv(ctx, snapshotID)
	if err != nil {
		return domain.AuditReport{}, err
	}

	report := domain.AuditReport{
		SnapshotID: snapshotID,
		Findings:   []domain.Finding{},
		Summary:    map[string]int{},
	}
	skipped := 0
	for _, row := range rows {
		rec := adapters.MapRecordStoreToDomain(row)
		if rec.GlobalID == "" {
			// A corrupted row is skipped for this pass, never fatal.
			skipped++
			continue
		}
		for _, rule := range auditRules {
			report.Findings = append(report.Findings, rule(rec, env)...)
		}
	}
	if skipped > 0 {
		zerolog.Ctx(ctx).Warn().
			Str("snapshot_id", snapshotID).
			Int("skipped", skipped).
			Msg("records skipped during audit")
	}

	sort.SliceStable(report.Findings, func(i, j int) bool {
		return report.Findings[i].Severity < report.Findings[j].Severity
	})
	for _, f := range report.Findings {
		report.Summary[f.Severity.String()]++
	}
	return report, nil
}

// buildEnv precomputes the edge-membership sets the two graph-aware rules
// need: which records are covered by an nsg-member edge and which volumes
// appear as the target of a volume-attached edge.
func (a *Auditor) buildEnv(ctx context.Context, snapshotID string) (*ruleEnv, error) {
	edges, err := a.edges.ListBySnapshot(ctx, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	env := &ruleEnv{
		settings:     a.settings,
		nsgProtected: map[string]struct{}{},
		attached:     map[string]struct{}{},
	}
	for _, e := range edges {
		switch domain.Relation(e.Relation) {
		case domain.RelationNSGMember:
			env.nsgProtected[e.FromID] = struct{}{}
		case domain.RelationVolumeAttached:
			env.attached[e.ToID] = struct{}{}
		}
	}
	return env, nil
}
