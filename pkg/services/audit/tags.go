package audit

import (
	"context"
	"fmt"
	"math"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	storemodels "github.com/de-tools/cloud-atlas/pkg/models/store"
)

// TagCompliance scores the snapshot against the required tag keys: per-key
// coverage counts and percentages, plus the records missing at least one
// key. With no required keys every record is vacuously neither compliant
// nor non-compliant.
func (a *Auditor) TagCompliance(ctx context.Context, snapshotID string, requiredTags []string) (domain.TagComplianceReport, error) {
	if len(requiredTags) == 0 {
		requiredTags = a.settings.RequiredTags
	}

	rows, err := a.records.List(ctx, snapshotID, storemodels.RecordFilter{})
	if err != nil {
		return domain.TagComplianceReport{}, fmt.Errorf("load records: %w", err)
	}

	report := domain.TagComplianceReport{
		SnapshotID:            snapshotID,
		TotalRecords:          len(rows),
		PerTagCoverage:        map[string]domain.TagCoverage{},
		NonCompliantRecordIDs: []string{},
	}

	counts := make(map[string]int, len(requiredTags))
	for _, row := range rows {
		rec := adapters.MapRecordStoreToDomain(row)
		missing := false
		for _, key := range requiredTags {
			if rec.HasTag(key) {
				counts[key]++
			} else {
				missing = true
			}
		}
		if len(requiredTags) == 0 {
			continue
		}
		if missing {
			report.NonCompliantRecords++
			report.NonCompliantRecordIDs = append(report.NonCompliantRecordIDs, rec.GlobalID)
		} else {
			report.CompliantRecords++
		}
	}

	for _, key := range requiredTags {
		coverage := domain.TagCoverage{Count: counts[key]}
		if report.TotalRecords > 0 {
			coverage.Percent = roundPercent(float64(counts[key]) / float64(report.TotalRecords) * 100)
		}
		report.PerTagCoverage[key] = coverage
	}
	return report, nil
}

func roundPercent(p float64) float64 {
	return math.Round(p*100) / 100
}
