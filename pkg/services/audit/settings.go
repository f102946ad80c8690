package audit

// Settings carries the tunable inputs of an audit run.
type Settings struct {
	// SensitivePorts are flagged CRITICAL when reachable from the
	// unrestricted source range.
	SensitivePorts []int
	// RequiredTags is the default key set for tag-compliance checks when
	// the caller supplies none.
	RequiredTags []string
}

func DefaultSettings() Settings {
	return Settings{
		SensitivePorts: []int{22, 3389, 1433, 3306, 5432, 6379, 9200, 27017},
		RequiredTags:   []string{"environment", "owner"},
	}
}
