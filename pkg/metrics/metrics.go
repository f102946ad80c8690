package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloud_atlas_records_imported_total",
		Help: "Canonical records upserted, by snapshot.",
	}, []string{"snapshot_id"})

	EdgesWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloud_atlas_edges_written_total",
		Help: "Relationship edges written during graph rebuilds, by snapshot.",
	}, []string{"snapshot_id"})

	FindingsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cloud_atlas_findings_emitted_total",
		Help: "Audit findings emitted, by severity.",
	}, []string{"severity"})
)
