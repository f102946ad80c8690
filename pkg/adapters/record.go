package adapters

import (
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/models/store"
)

func MapSnapshotDomainToApi(s domain.Snapshot) api.Snapshot {
	return api.Snapshot{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

func MapSnapshotStoreToDomain(s store.Snapshot) domain.Snapshot {
	return domain.Snapshot{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		CreatedAt:   s.CreatedAt,
	}
}

func MapRecordDomainToApi(r domain.ResourceRecord) api.ResourceRecord {
	return api.ResourceRecord{
		ID:                 r.ID,
		GlobalID:           r.GlobalID,
		Kind:               string(r.Kind),
		DisplayName:        r.DisplayName,
		ContainerID:        r.ContainerID,
		LifecycleState:     r.LifecycleState,
		AvailabilityDomain: r.AvailabilityDomain,
		Region:             r.Region,
		CreatedAt:          r.CreatedAt,
		DefinedTags:        r.DefinedTags,
		FreeformTags:       r.FreeformTags,
		Attributes:         r.Attributes,
	}
}

func MapRecordDomainToStore(snapshotID string, r domain.ResourceRecord) store.ResourceRecord {
	return store.ResourceRecord{
		ID:                 r.ID,
		SnapshotID:         snapshotID,
		GlobalID:           r.GlobalID,
		Kind:               string(r.Kind),
		DisplayName:        r.DisplayName,
		ContainerID:        r.ContainerID,
		LifecycleState:     r.LifecycleState,
		AvailabilityDomain: r.AvailabilityDomain,
		Region:             r.Region,
		CreatedAt:          r.CreatedAt,
		DefinedTags:        r.DefinedTags,
		FreeformTags:       r.FreeformTags,
		Attributes:         r.Attributes,
	}
}

func MapRecordStoreToDomain(r store.ResourceRecord) domain.ResourceRecord {
	return domain.ResourceRecord{
		ID:                 r.ID,
		GlobalID:           r.GlobalID,
		Kind:               domain.Kind(r.Kind),
		DisplayName:        r.DisplayName,
		ContainerID:        r.ContainerID,
		LifecycleState:     r.LifecycleState,
		AvailabilityDomain: r.AvailabilityDomain,
		Region:             r.Region,
		CreatedAt:          r.CreatedAt,
		DefinedTags:        r.DefinedTags,
		FreeformTags:       r.FreeformTags,
		Attributes:         r.Attributes,
	}
}

func MapImportResultDomainToApi(r domain.ImportResult) api.ImportResult {
	return api.ImportResult{
		SnapshotID:      r.SnapshotID,
		FilesProcessed:  r.FilesProcessed,
		RecordsImported: r.RecordsImported,
		RecordsSkipped:  r.RecordsSkipped,
		Warnings:        r.Warnings,
	}
}
