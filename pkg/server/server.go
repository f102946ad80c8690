package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/cloud-atlas/pkg/handlers/snapshot"
	cloudatlasmiddleware "github.com/de-tools/cloud-atlas/pkg/server/middleware"
	"github.com/de-tools/cloud-atlas/pkg/services/audit"
	"github.com/de-tools/cloud-atlas/pkg/services/graph"
	"github.com/de-tools/cloud-atlas/pkg/services/ingest"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/record"
	"github.com/de-tools/cloud-atlas/pkg/store/duckdb/snapshot"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

type Dependencies struct {
	Snapshots snapshot.Store
	Records   record.Store
	Importer  *ingest.Importer
	Builder   *graph.Builder
	Auditor   *audit.Auditor
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := chi.NewRouter()
	router.Use(cloudatlasmiddleware.Logger(&logger))
	router.Use(middleware.Recoverer)

	router.Mount("/", ConfigureRouter(config.Dependencies))

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// ConfigureRouter wires the API routes without the outer middleware and
// server plumbing; tests mount it directly.
func ConfigureRouter(deps Dependencies) *chi.Mux {
	h := handlers.NewHandler(deps.Snapshots, deps.Records, deps.Importer, deps.Builder, deps.Auditor)

	router := chi.NewRouter()
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/snapshots", h.CreateSnapshot)
		r.Get("/snapshots", h.ListSnapshots)
		r.Delete("/snapshots/{snapshot}", h.DeleteSnapshot)
		r.Get("/snapshots/{snapshot}/records", h.ListRecords)
		r.Post("/snapshots/{snapshot}/import", h.ImportRecords)
		r.Post("/snapshots/{snapshot}/graph/rebuild", h.RebuildGraph)
		r.Get("/snapshots/{snapshot}/audit", h.RunAudit)
		r.Post("/snapshots/{snapshot}/compliance/tags", h.TagCompliance)
	})
	router.Handle("/metrics", promhttp.Handler())
	return router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		timeout := w.shutdownTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
