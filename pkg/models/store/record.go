package store

import "time"

// ResourceRecord is the row shape of one canonical record. Tag and
// attribute maps are persisted as JSON columns.
type ResourceRecord struct {
	ID                 string
	SnapshotID         string
	GlobalID           string
	Kind               string
	DisplayName        string
	ContainerID        string
	LifecycleState     string
	AvailabilityDomain string
	Region             string
	CreatedAt          *time.Time
	DefinedTags        map[string]string
	FreeformTags       map[string]string
	Attributes         map[string]any
}

// RecordRef is the narrow projection used to build the global-id lookup
// before attribute payloads are loaded.
type RecordRef struct {
	ID          string
	GlobalID    string
	Kind        string
	ContainerID string
}

// RecordFilter narrows record queries; zero value matches everything.
type RecordFilter struct {
	Kind string
}

type Snapshot struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}
