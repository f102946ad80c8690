package audit

import (
	"context"
	"sort"
	"testing"

	"github.com/de-tools/cloud-atlas/pkg/models/domain"
	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuditor(t *testing.T) (*Auditor, record.Store, edge.Store) {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	records, err := record.NewStore(db)
	require.NoError(t, err)
	edges, err := edge.NewStore(db)
	require.NoError(t, err)

	return NewAuditor(records, edges, DefaultSettings()), records, edges
}

func TestRun_OrderingAndSummary(t *testing.T) {
	auditor, records, _ := setupAuditor(t)
	ctx := context.Background()
	const snap = "snap-1"

	require.NoError(t, records.Upsert(ctx, snap, []store.ResourceRecord{
		{
			GlobalID: "b-1", Kind: "storage/bucket", DisplayName: "public-assets",
			Attributes: map[string]any{"publicAccessType": "ObjectRead"},
		},
		{
			GlobalID: "inst-1", Kind: "compute/instance", DisplayName: "worker",
			LifecycleState: "STOPPED",
		},
		{
			GlobalID: "sub-1", Kind: "network/subnet", DisplayName: "app-subnet",
			Attributes: map[string]any{},
		},
	}))

	report, err := auditor.Run(ctx, snap)
	require.NoError(t, err)

	assert.Equal(t, snap, report.SnapshotID)
	assert.True(t, sort.SliceIsSorted(report.Findings, func(i, j int) bool {
		return report.Findings[i].Severity < report.Findings[j].Severity
	}), "findings must be ordered by decreasing severity")

	require.NotEmpty(t, report.Findings)
	assert.Equal(t, domain.SeverityCritical, report.Findings[0].Severity)
	assert.Equal(t, "b-1", report.Findings[0].Resource.GlobalID)

	// bucket CRITICAL, subnet HIGH, instance MEDIUM (no NSG) + LOW (stopped).
	assert.Equal(t, 1, report.Summary["CRITICAL"])
	assert.Equal(t, 1, report.Summary["HIGH"])
	assert.Equal(t, 1, report.Summary["MEDIUM"])
	assert.Equal(t, 1, report.Summary["LOW"])
}

func TestRun_ConsultsEdges(t *testing.T) {
	auditor, records, edges := setupAuditor(t)
	ctx := context.Background()
	const snap = "snap-1"

	require.NoError(t, records.Upsert(ctx, snap, []store.ResourceRecord{
		{GlobalID: "inst-1", Kind: "compute/instance", DisplayName: "guarded", LifecycleState: "RUNNING"},
		{GlobalID: "vol-1", Kind: "storage/block-volume", DisplayName: "data",
			Attributes: map[string]any{"kmsKeyId": "key-1"}},
	}))

	refs, err := records.ListRefs(ctx, snap)
	require.NoError(t, err)
	ids := map[string]string{}
	for _, ref := range refs {
		ids[ref.GlobalID] = ref.ID
	}

	require.NoError(t, edges.UpsertBatch(ctx, snap, []store.ResourceEdge{
		{FromID: ids["inst-1"], ToID: "nsg-row", Relation: "nsg-member"},
		{FromID: ids["inst-1"], ToID: ids["vol-1"], Relation: "volume-attached"},
	}))

	report, err := auditor.Run(ctx, snap)
	require.NoError(t, err)
	assert.Empty(t, report.Findings)
}

func TestTagCompliance(t *testing.T) {
	auditor, records, _ := setupAuditor(t)
	ctx := context.Background()
	const snap = "snap-1"

	require.NoError(t, records.Upsert(ctx, snap, []store.ResourceRecord{
		{GlobalID: "r-1", Kind: "network/vcn",
			FreeformTags: map[string]string{"environment": "prod", "owner": "net-team"}},
		{GlobalID: "r-2", Kind: "network/vcn",
			DefinedTags:  map[string]string{"Operations.environment": "dev"},
			FreeformTags: map[string]string{"owner": "net-team"}},
		{GlobalID: "r-3", Kind: "network/vcn"},
	}))

	report, err := auditor.TagCompliance(ctx, snap, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalRecords)
	assert.Equal(t, 2, report.CompliantRecords)
	assert.Equal(t, 1, report.NonCompliantRecords)
	assert.Equal(t, []string{"r-3"}, report.NonCompliantRecordIDs)

	env := report.PerTagCoverage["environment"]
	assert.Equal(t, 2, env.Count)
	assert.Equal(t, 66.67, env.Percent)

	owner := report.PerTagCoverage["owner"]
	assert.Equal(t, 2, owner.Count)
	assert.Equal(t, 66.67, owner.Percent)
}

func TestTagCompliance_EmptySnapshot(t *testing.T) {
	auditor, _, _ := setupAuditor(t)

	report, err := auditor.TagCompliance(context.Background(), "snap-empty", []string{"environment"})
	require.NoError(t, err)

	assert.Equal(t, 0, report.TotalRecords)
	assert.Equal(t, 0.0, report.PerTagCoverage["environment"].Percent)
	assert.Empty(t, report.NonCompliantRecordIDs)
}
