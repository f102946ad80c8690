package snapshot

import (
	"encoding/json"
	"net/http"

	"github.com/de-tools/cloud-atlas/pkg/adapters"
	"github.com/de-tools/cloud-atlas/pkg/metrics"
	"github.com/de-tools/cloud-atlas/pkg/models/api"
	"github.com/de-tools/cloud-atlas/pkg/models/store"
	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/graph"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type Handler struct {
	snapshots snapshot.Store
	records   record.Store
	importer  *ingest.Importer
	builder   *graph.Builder
	auditor   *audit.Auditor
	validate  *validator.Validate
}

func NewHandler(
	snapshots snapshot.Store,
	records record.Store,
	importer *ingest.Importer,
	builder *graph.Builder,
	auditor *audit.Auditor,
) *Handler {
	return &Handler{
		snapshots: snapshots,
		records:   records,
		importer:  importer,
		builder:   builder,
		auditor:   auditor,
		validate:  validator.New(),
	}
}

func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSnapshotRequest
	if !h.decode(w, r, &req) {
		return
	}

	snap, err := h.snapshots.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to create snapshot", err)
		return
	}
	h.respond(w, r, http.StatusCreated, adapters.MapSnapshotDomainToApi(adapters.MapSnapshotStoreToDomain(snap)))
}

func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.snapshots.List(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to list snapshots", err)
		return
	}
	response := make([]api.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		response = append(response, adapters.MapSnapshotDomainToApi(adapters.MapSnapshotStoreToDomain(s)))
	}
	h.respond(w, r, http.StatusOK, response)
}

func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	if err := h.snapshots.Delete(r.Context(), id); err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to delete snapshot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ImportRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	var req api.ImportRequest
	if !h.decode(w, r, &req) {
		return
	}

	payloads := make([]ingest.Payload, 0, len(req.Files))
	for _, f := range req.Files {
		payloads = append(payloads, ingest.Payload{Name: f.Name, Kind: f.Kind, Data: []byte(f.Content)})
	}

	result, err := h.importer.Import(r.Context(), id, payloads)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "import failed", err)
		return
	}
	metrics.RecordsImported.WithLabelValues(id).Add(float64(result.RecordsImported))
	h.respond(w, r, http.StatusOK, adapters.MapImportResultDomainToApi(result))
}

func (h *Handler) RebuildGraph(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	count, err := h.builder.Rebuild(r.Context(), id)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "graph rebuild failed", err)
		return
	}
	metrics.EdgesWritten.WithLabelValues(id).Add(float64(count))
	h.respond(w, r, http.StatusOK, api.RebuildResult{SnapshotID: id, EdgeCount: count})
}

func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	report, err := h.auditor.Run(r.Context(), id)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "audit failed", err)
		return
	}
	for severity, count := range report.Summary {
		metrics.FindingsEmitted.WithLabelValues(severity).Add(float64(count))
	}
	h.respond(w, r, http.StatusOK, adapters.MapAuditReportDomainToApi(report))
}

func (h *Handler) TagCompliance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	var req api.TagComplianceRequest
	if !h.decode(w, r, &req) {
		return
	}

	report, err := h.auditor.TagCompliance(r.Context(), id, req.RequiredTags)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "tag compliance failed", err)
		return
	}
	h.respond(w, r, http.StatusOK, adapters.MapTagComplianceDomainToApi(report))
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "snapshot")
	filter := store.RecordFilter{Kind: r.URL.Query().Get("kind")}

	rows, err := h.records.List(r.Context(), id, filter)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to list records", err)
		return
	}
	total, err := h.records.Count(r.Context(), id, filter)
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, "failed to count records", err)
		return
	}

	response := api.RecordList{SnapshotID: id, Total: total, Records: make([]api.ResourceRecord, 0, len(rows))}
	for _, row := range rows {
		response.Records = append(response.Records, adapters.MapRecordDomainToApi(adapters.MapRecordStoreToDomain(row)))
	}
	h.respond(w, r, http.StatusOK, response)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, r, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.fail(w, r, http.StatusBadRequest, "request validation failed", err)
		return false
	}
	return true
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
