package adapters

import (
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
)

func MapSeverityDomainToApi(s domain.Severity) api.Severity {
	switch s {
	case domain.SeverityCritical:
		return api.SeverityCritical
	case domain.SeverityHigh:
		return api.SeverityHigh
	case domain.SeverityMedium:
		return api.SeverityMedium
	case domain.SeverityLow:
		return api.SeverityLow
	default:
		return api.SeverityInfo
	}
}

func MapFindingDomainToApi(f domain.Finding) api.Finding {
	return api.Finding{
		Severity:       MapSeverityDomainToApi(f.Severity),
		Category:       f.Category,
		Title:          f.Title,
		Description:    f.Description,
		Recommendation: f.Recommendation,
		Resource: api.ResourceRef{
			GlobalID:    f.Resource.GlobalID,
			Kind:        string(f.Resource.Kind),
			DisplayName: f.Resource.DisplayName,
		},
	}
}

func MapAuditReportDomainToApi(r domain.AuditReport) api.AuditReport {
	res := api.AuditReport{
		SnapshotID: r.SnapshotID,
		Findings:   make([]api.Finding, 0, len(r.Findings)),
		Summary:    map[string]int{},
	}
	for k, v := range r.Summary {
		res.Summary[k] = v
	}
	for _, f := range r.Findings {
		res.Findings = append(res.Findings, MapFindingDomainToApi(f))
	}
	return res
}

func MapTagComplianceDomainToApi(r domain.TagComplianceReport) api.TagComplianceReport {
	res := api.TagComplianceReport{
		SnapshotID:            r.SnapshotID,
		TotalRecords:          r.TotalRecords,
		CompliantRecords:      r.CompliantRecords,
		NonCompliantRecords:   r.NonCompliantRecords,
		PerTagCoverage:        map[string]api.TagCoverage{},
		NonCompliantRecordIDs: r.NonCompliantRecordIDs,
	}
	for k, c := range r.PerTagCoverage {
		res.PerTagCoverage[k] = api.TagCoverage{Count: c.Count, Percent: c.Percent}
	}
	return res
}
