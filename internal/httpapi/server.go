// Package httpapi is the operator-facing read/resolve surface: ledger
// and alert listings, lane snapshots, and Prometheus metrics.  Lane
// decisions never flow through HTTP; the lanes own their serial devices
// directly.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kagabo-labs/parkgate/internal/parkgate/service"
	"github.com/kagabo-labs/parkgate/internal/parkgate/store"
	"github.com/kagabo-labs/parkgate/internal/parkgate/types"
)

// SnapshotSource exposes the latest decision cycle of a lane.
type SnapshotSource interface {
	Latest() types.Snapshot
}

type Dependencies struct {
	Logger   *log.Logger
	Addr     string
	Vehicles store.VehicleStore
	Alerts   *service.AlertManager
	Lanes    []SnapshotSource
}

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
	mux        *http.ServeMux
	vehicles   store.VehicleStore
	alerts     *service.AlertManager
	lanes      []SnapshotSource
}

func NewServer(d Dependencies) *Server {
	mux := http.NewServeMux()

	s := &Server{
		logger:   d.Logger,
		mux:      mux,
		vehicles: d.Vehicles,
		alerts:   d.Alerts,
		lanes:    d.Lanes,
	}

	mux.HandleFunc("GET /v1/vehicles", s.handleListVehicles)
	mux.HandleFunc("GET /v1/alerts", s.handleListAlerts)
	mux.HandleFunc("POST /v1/alerts/{id}/resolve", s.handleResolveAlert)
	mux.HandleFunc("GET /v1/lanes", s.handleLanes)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := loggingMiddleware(d.Logger, mux)

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	recs, err := s.vehicles.ListVehicles(r.Context())
	if err != nil {
		s.logger.Printf("list vehicles error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if recs == nil {
		recs = []types.VehicleRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"vehicles": recs})
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	recs, err := s.alerts.ListActive(r.Context())
	if err != nil {
		s.logger.Printf("list alerts error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}
	if recs == nil {
		recs = []types.AlertRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": recs})
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "alert id must be an integer")
		return
	}

	if err := s.alerts.Resolve(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "no such alert")
			return
		}
		s.logger.Printf("resolve alert error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": id})
}

func (s *Server) handleLanes(w http.ResponseWriter, _ *http.Request) {
	snaps := make([]types.Snapshot, 0, len(s.lanes))
	for _, l := range s.lanes {
		snaps = append(snaps, l.Latest())
	}
	writeJSON(w, http.StatusOK, map[string]any{"lanes": snaps})
}
