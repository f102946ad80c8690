package api

import "time"

type Snapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreateSnapshotRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ResourceRecord struct {
	ID                 string            `json:"id"`
	GlobalID           string            `json:"global_id"`
	Kind               string            `json:"kind"`
	DisplayName        string            `json:"display_name,omitempty"`
	ContainerID        string            `json:"container_id,omitempty"`
	LifecycleState     string            `json:"lifecycle_state,omitempty"`
	AvailabilityDomain string            `json:"availability_domain,omitempty"`
	Region             string            `json:"region,omitempty"`
	CreatedAt          *time.Time        `json:"created_at,omitempty"`
	DefinedTags        map[string]string `json:"defined_tags,omitempty"`
	FreeformTags       map[string]string `json:"freeform_tags,omitempty"`
	Attributes         map[string]any    `json:"attributes,omitempty"`
}

type RecordList struct {
	SnapshotID string           `json:"snapshot_id"`
	Total      int64            `json:"total"`
	Records    []ResourceRecord `json:"records"`
}

type ImportFile struct {
	Name    string `json:"name" validate:"required"`
	Kind    string `json:"kind"`
	Content string `json:"content" validate:"required"`
}

type ImportRequest struct {
	Files []ImportFile `json:"files" validate:"required,min=1,dive"`
}

type ImportResult struct {
	SnapshotID      string   `json:"snapshot_id"`
	FilesProcessed  int      `json:"files_processed"`
	RecordsImported int      `json:"records_imported"`
	RecordsSkipped  int      `json:"records_skipped"`
	Warnings        []string `json:"warnings,omitempty"`
}

type RebuildResult struct {
	SnapshotID string `json:"snapshot_id"`
	EdgeCount  int    `json:"edge_count"`
}
