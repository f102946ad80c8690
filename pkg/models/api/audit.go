package api

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

type ResourceRef struct {
	GlobalID    string `json:"global_id"`
	Kind        string `json:"kind"`
	DisplayName string `json:"display_name,omitempty"`
}

type Finding struct {
	Severity       Severity    `json:"severity"`
	Category       string      `json:"category"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Resource       ResourceRef `json:"resource"`
}

type AuditReport struct {
	SnapshotID string         `json:"snapshot_id"`
	Findings   []Finding      `json:"findings"`
	Summary    map[string]int `json:"summary"`
}

type TagComplianceRequest struct {
	RequiredTags []string `json:"required_tags" validate:"required,min=1,dive,required"`
}

type TagCoverage struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

type TagComplianceReport struct {
	SnapshotID            string                 `json:"snapshot_id"`
	TotalRecords          int                    `json:"total_records"`
	CompliantRecords      int                    `json:"compliant_records"`
	NonCompliantRecords   int                    `json:"non_compliant_records"`
	PerTagCoverage        map[string]TagCoverage `json:"per_tag_coverage"`
	NonCompliantRecordIDs []string               `json:"non_compliant_record_ids,omitempty"`
}
