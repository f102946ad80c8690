package domain

// Severity orders findings by decreasing urgency.
type Severity int

const (
	SeverityCritical Severity = iota
	SeverityHigh
	SeverityMedium
	SeverityLow
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityHigh:
		return "HIGH"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityLow:
		return "LOW"
	default:
		return "INFO"
	}
}

// ResourceRef identifies the record a finding originated from.
type ResourceRef struct {
	GlobalID    string
	Kind        Kind
	DisplayName string
}

// Finding is one audit result. Findings are recomputed from current
// records and edges on every request and are never persisted.
type Finding struct {
	Severity       Severity
	Category       string
	Title          string
	Description    string
	Recommendation string
	Resource       ResourceRef
}

// AuditReport bundles the findings of one run with a severity tally.
type AuditReport struct {
	SnapshotID string
	Findings   []Finding
	Summary    map[string]int // severity name -> count
}

// TagCoverage is the per-key half of a compliance report.
type TagCoverage struct {
	Count   int
	Percent float64
}

// TagComplianceReport scores a snapshot against a set of required tag keys.
type TagComplianceReport struct {
	SnapshotID            string
	TotalRecords          int
	CompliantRecords      int
	NonCompliantRecords   int
	PerTagCoverage        map[string]TagCoverage
	NonCompliantRecordIDs []string
}

// ImportResult is the aggregate outcome of a multi-payload import. A batch
// always completes; recoverable problems are accumulated as warnings next
// to whatever partial success was achieved.
type ImportResult struct {
	SnapshotID      string
	FilesProcessed  int
	RecordsImported int
	RecordsSkipped  int
	Warnings        []string
}
