package snapshot_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/server"
	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/graph"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/edge"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	records, err := record.NewStore(db)
	require.NoError(t, err)
	edges, err := edge.NewStore(db)
	require.NoError(t, err)
	snapshots, err := snapshot.NewStore(db, records, edges)
	require.NoError(t, err)

	return server.ConfigureRouter(server.Dependencies{
		Snapshots: snapshots,
		Records:   records,
		Importer:  ingest.NewImporter(records),
		Builder:   graph.NewBuilder(records, edges),
		Auditor:   audit.NewAuditor(records, edges, audit.DefaultSettings()),
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSnapshotValidation(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/snapshots", map[string]string{"description": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/snapshots", api.CreateSnapshotRequest{Name: "nightly"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	snap := decodeBody[api.Snapshot](t, rec)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, "nightly", snap.Name)
}

func TestImportRebuildAuditFlow(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/snapshots",
		api.CreateSnapshotRequest{Name: "prod-inventory"})
	require.Equal(t, http.StatusCreated, rec.Code)
	snap := decodeBody[api.Snapshot](t, rec)
	base := "/api/v1/snapshots/" + snap.ID

	rec = doJSON(t, router, http.MethodPost, base+"/import", api.ImportRequest{Files: []api.ImportFile{
		{
			Name:    "vcns.json",
			Content: `{"data": [{"id": "net-1", "display-name": "prod-vcn", "cidr-block": "10.0.0.0/16"}]}`,
		},
		{
			Name: "subnets.json",
			Content: `{"data": [{"id": "sub-1", "display-name": "app-subnet",
				"cidr-block": "10.0.1.0/24", "vcn-id": "net-1", "prohibit-internet-ingress": true}]}`,
		},
		{
			Name: "security-lists.json",
			Content: `{"data": [{"id": "sl-1", "display-name": "default-sl", "vcn-id": "net-1",
				"ingress-security-rules": [{"source": "0.0.0.0/0", "protocol": "6",
					"tcp-options": {"destination-port-range": {"min": 20, "max": 25}}}],
				"egress-security-rules": []}]}`,
		},
		{
			Name: "buckets.json",
			Content: `{"data": [{"id": "b-1", "name": "assets", "namespace": "tenancy-ns",
				"public-access-type": "ObjectRead"}]}`,
		},
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	imported := decodeBody[api.ImportResult](t, rec)
	assert.Equal(t, 4, imported.FilesProcessed)
	assert.Equal(t, 4, imported.RecordsImported)
	assert.Empty(t, imported.Warnings)

	rec = doJSON(t, router, http.MethodPost, base+"/graph/rebuild", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rebuilt := decodeBody[api.RebuildResult](t, rec)
	// vcn contains subnet, security list uses the vcn.
	assert.GreaterOrEqual(t, rebuilt.EdgeCount, 2)

	rec = doJSON(t, router, http.MethodGet, base+"/records?kind=network/subnet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[api.RecordList](t, rec)
	require.Len(t, list.Records, 1)
	assert.Equal(t, "sub-1", list.Records[0].GlobalID)
	assert.Equal(t, int64(1), list.Total)

	rec = doJSON(t, router, http.MethodGet, base+"/audit", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[api.AuditReport](t, rec)
	require.NotEmpty(t, report.Findings)
	assert.Equal(t, api.SeverityCritical, report.Findings[0].Severity)
	// open port 22 and the public bucket.
	assert.Equal(t, 2, report.Summary["CRITICAL"])
	// the private subnet stays quiet.
	for _, f := range report.Findings {
		assert.NotEqual(t, "sub-1", f.Resource.GlobalID)
	}

	rec = doJSON(t, router, http.MethodPost, base+"/compliance/tags",
		api.TagComplianceRequest{RequiredTags: []string{"environment"}})
	require.Equal(t, http.StatusOK, rec.Code)
	compliance := decodeBody[api.TagComplianceReport](t, rec)
	assert.Equal(t, 4, compliance.TotalRecords)
	assert.Equal(t, 4, compliance.NonCompliantRecords)
	assert.Equal(t, 0.0, compliance.PerTagCoverage["environment"].Percent)

	rec = doJSON(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]api.Snapshot](t, rec))
}

func TestTagComplianceValidation(t *testing.T) {
	router := setupRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/snapshots/snap-1/compliance/tags",
		map[string]any{"required_tags": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
