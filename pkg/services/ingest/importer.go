// Package ingest runs the classify-and-persist half of an import: each
// payload is classified, records without a usable global identifier are
// filtered out, and the rest are upserted. The batch always completes;
// per-payload problems become warnings on the aggregate result.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	storemodels "github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/services/classify"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/rs/zerolog"
)

// Payload is one raw export file handed over by the transport layer,
// already extracted from any archive. Kind may be empty.
type Payload struct {
	Name string
	Kind string
	Data []byte
}

type Progress struct {
	ProcessedFiles int
	TotalFiles     int
}

type Importer struct {
	records          record.Store
	progress         chan Progress
	progressInterval time.Duration
}

func NewImporter(records record.Store) *Importer {
	return &Importer{
		records:          records,
		progress:         make(chan Progress, 100),
		progressInterval: time.Second,
	}
}

// Progress reports coarse processed/total counts at most once per
// interval. Notification is best effort: a slow observer never blocks the
// import path.
func (i *Importer) Progress() <-chan Progress {
	return i.progress
}

// Import classifies and persists every payload. Malformed payloads and
// unregistered explicit kinds yield warnings, not failures; records
// missing a global identifier are counted as skipped.
func (i *Importer) Import(ctx context.Context, snapshotID string, payloads []Payload) (domain.ImportResult, error) {
	logger := zerolog.Ctx(ctx)
	result := domain.ImportResult{SnapshotID: snapshotID}
	lastNotified := time.Time{}

	for idx, payload := range payloads {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		kind := payload.Kind
		if kind == "" {
			kind = KindFromFilename(payload.Name)
		}

		records, err := classify.Payload(payload.Data, kind)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %v", payload.Name, err))
			result.FilesProcessed++
			continue
		}
		if len(records) == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: no classifiable records", payload.Name))
			result.FilesProcessed++
			continue
		}

		rows := make([]storemodels.ResourceRecord, 0, len(records))
		for _, rec := range records {
			if rec.GlobalID == "" {
				result.RecordsSkipped++
				continue
			}
			rows = append(rows, adapters.MapRecordDomainToStore(snapshotID, rec))
		}
		if err := i.records.Upsert(ctx, snapshotID, rows); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: store records: %v", payload.Name, err))
			result.FilesProcessed++
			continue
		}

		result.RecordsImported += len(rows)
		result.FilesProcessed++

		final := idx == len(payloads)-1
		if final || time.Since(lastNotified) >= i.progressInterval {
			i.notify(Progress{ProcessedFiles: result.FilesProcessed, TotalFiles: len(payloads)})
			lastNotified = time.Now()
		}
	}

	logger.Info().
		Str("snapshot_id", snapshotID).
		Int("files", result.FilesProcessed).
		Int("records", result.RecordsImported).
		Int("skipped", result.RecordsSkipped).
		Int("warnings", len(result.Warnings)).
		Msg("import finished")
	return result, nil
}

func (i *Importer) notify(p Progress) {
	select {
	case i.progress <- p:
	default:
	}
}

// filenameKinds maps export filename stems to kinds, the transport
// layer's naming convention for unlabeled files.
var filenameKinds = map[string]domain.Kind{
	"instances":          domain.KindComputeInstance,
	"images":             domain.KindComputeImage,
	"volume-attachments": domain.KindComputeVolumeAttachment,
	"volumes":            domain.KindStorageBlockVolume,
	"boot-volumes":       domain.KindStorageBootVolume,
	"volume-backups":     domain.KindStorageVolumeBackup,
	"buckets":            domain.KindStorageBucket,
	"vcns":               domain.KindNetworkVCN,
	"subnets":            domain.KindNetworkSubnet,
	"security-lists":     domain.KindNetworkSecurityList,
	"nsgs":               domain.KindNetworkNSG,
	"route-tables":       domain.KindNetworkRouteTable,
	"load-balancers":     domain.KindNetworkLoadBalancer,
	"compartments":       domain.KindIdentityCompartment,
	"users":              domain.KindIdentityUser,
	"groups":             domain.KindIdentityGroup,
	"policies":           domain.KindIdentityPolicy,
}

// KindFromFilename derives a kind hint from an export filename, e.g.
// "subnets.json" or "region1_subnets.json". Empty when nothing matches;
// classification then falls back to structural detection.
func KindFromFilename(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if kind, ok := filenameKinds[stem]; ok {
		return string(kind)
	}
	if idx := strings.LastIndex(stem, "_"); idx >= 0 {
		if kind, ok := filenameKinds[stem[idx+1:]]; ok {
			return string(kind)
		}
	}
	return ""
}
