// Package graph rebuilds the relationship edge set of a snapshot from its
// current record state. A rebuild is a pure function of the records: it
// can run repeatedly, in any order, and always converges on the same edge
// set. A rebuild that dies partway is recovered by running it again.
package graph

import (
	"context"
	"fmt"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/rs/zerolog"
)

const (
	// defaultChunkSize bounds how many full attribute payloads are in
	// memory at once; the lookup pass only loads the narrow projection.
	defaultChunkSize = 500
	// defaultBatchSize bounds one edge-write transaction.
	defaultBatchSize = 200
)

type Builder struct {
	records   record.Store
	edges     edge.Store
	chunkSize int
	batchSize int
}

func NewBuilder(records record.Store, edges edge.Store) *Builder {
	return &Builder{
		records:   records,
		edges:     edges,
		chunkSize: defaultChunkSize,
		batchSize: defaultBatchSize,
	}
}

// Rebuild derives every edge of the snapshot from current record state and
// returns the number of edges now present. Candidate edges are collapsed
// on (from, to, relation) before writing; for duplicates only the last
// metadata wins, which is fine because metadata is diagnostic only.
func (b *Builder) Rebuild(ctx context.Context, snapshotID string) (int, error) {
	logger := zerolog.Ctx(ctx)

	refs, err := b.records.ListRefs(ctx, snapshotID)
	if err != nil {
		return 0, fmt.Errorf("load record refs: %w", err)
	}

	// The lookup must be complete before any rule runs; an edge may point
	// at a record discovered later in iteration order.
	ids := make(lookup, len(refs))
	for _, ref := range refs {
		ids[ref.GlobalID] = ref.ID
	}

	deduped := map[string]domain.ResourceEdge{}
	for start := 0; start < len(refs); start += b.chunkSize {
		end := min(start+b.chunkSize, len(refs))
		chunkIDs := make([]string, 0, end-start)
		for _, ref := range refs[start:end] {
			chunkIDs = append(chunkIDs, ref.ID)
		}

		rows, err := b.records.GetByIDs(ctx, snapshotID, chunkIDs)
		if err != nil {
			return 0, fmt.Errorf("load record chunk: %w", err)
		}
		for _, row := range rows {
			rec := adapters.MapRecordStoreToDomain(row)
			for _, rule := range referenceRules {
				for _, e := range rule(rec, ids) {
					key := e.FromID + "|" + e.ToID + "|" + string(e.Relation)
					deduped[key] = e
				}
			}
		}
	}

	if err := b.edges.DeleteBySnapshot(ctx, snapshotID); err != nil {
		return 0, fmt.Errorf("clear stale edges: %w", err)
	}

	candidates := make([]store.ResourceEdge, 0, len(deduped))
	for _, e := range deduped {
		candidates = append(candidates, store.ResourceEdge{
			SnapshotID: snapshotID,
			FromID:     e.FromID,
			ToID:       e.ToID,
			Relation:   string(e.Relation),
			Metadata:   e.Metadata,
		})
	}

	written := b.writeBatched(ctx, snapshotID, candidates)
	logger.Info().
		Str("snapshot_id", snapshotID).
		Int("records", len(refs)).
		Int("edges", written).
		Msg("relationship graph rebuilt")
	return written, nil
}

// writeBatched upserts edges in bounded batches. A failed batch is retried
// per item; items that still fail are dropped, never failing the rebuild.
func (b *Builder) writeBatched(ctx context.Context, snapshotID string, edges []store.ResourceEdge) int {
	logger := zerolog.Ctx(ctx)
	written := 0

	for start := 0; start < len(edges); start += b.batchSize {
		end := min(start+b.batchSize, len(edges))
		batch := edges[start:end]

		if err := b.edges.UpsertBatch(ctx, snapshotID, batch); err == nil {
			written += len(batch)
			continue
		}

		for _, e := range batch {
			if err := b.edges.UpsertOne(ctx, snapshotID, e); err != nil {
				logger.Debug().
					Str("from", e.FromID).
					Str("to", e.ToID).
					Str("relation", e.Relation).
					Err(err).
					Msg("dropping edge after retry")
				continue
			}
			written++
		}
	}
	return written
}
