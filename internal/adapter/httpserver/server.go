// Package httpserver exposes the reading pipeline as a JSON API plus the
// usual health, readiness, and metrics endpoints.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/creekwatch/water-quality-service/internal/domain"
	"github.com/creekwatch/water-quality-service/internal/service"
	"github.com/creekwatch/water-quality-service/internal/store"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server routes dashboard API requests to the reading pipeline.
type Server struct {
	httpServer *http.Server
	svc        *service.Service
	logger     *slog.Logger
}

// NewServer creates the API server.
func NewServer(addr string, svc *service.Service, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	mux.HandleFunc("POST /api/v1/readings", s.handleSubmit)
	mux.HandleFunc("GET /api/v1/readings", s.handleListReadings)
	mux.HandleFunc("DELETE /api/v1/readings/{index}", s.handleDelete)
	mux.HandleFunc("GET /api/v1/summaries", s.handleSummaries)
	mux.HandleFunc("GET /api/v1/alerts", s.handleAlerts)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/resolve", s.handleResolve)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// submitRequest is the POST /readings body. Either zipcode or the lat/lon
// pair identifies the location; date defaults to today when omitted.
type submitRequest struct {
	Zipcode         string   `json:"zipcode"`
	Lat             *float64 `json:"lat"`
	Lon             *float64 `json:"lon"`
	Date            string   `json:"date"`
	PH              float64  `json:"ph"`
	Turbidity       float64  `json:"turbidity"`
	DissolvedOxygen float64  `json:"dissolved_oxygen"`
	Nitrate         float64  `json:"nitrate"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	sub := service.Submission{
		Zipcode:         req.Zipcode,
		Lat:             req.Lat,
		Lon:             req.Lon,
		PH:              req.PH,
		Turbidity:       req.Turbidity,
		DissolvedOxygen: req.DissolvedOxygen,
		Nitrate:         req.Nitrate,
	}
	if req.Date != "" {
		date, err := time.Parse(domain.DateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		sub.Date = date
	}

	result, err := s.svc.Submit(r.Context(), sub)
	switch {
	case errors.Is(err, service.ErrInvalidZipcode):
		writeError(w, http.StatusBadRequest, "please enter or confirm a valid zipcode")
		return
	case err != nil:
		var blocked *service.ErrBlockedByWarnings
		if errors.As(err, &blocked) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":    "reading rejected: values outside safe ranges",
				"warnings": blocked.Warnings,
			})
			return
		}
		s.logger.Error("submit failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store reading")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"reading":    readingDTO(result.Reading),
		"warnings":   result.Warnings,
		"zip_source": result.ZipSource,
	})
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	readings, err := s.svc.Readings(r.Context(), limit)
	if err != nil {
		s.logger.Error("list readings failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	out := make([]readingJSON, 0, len(readings))
	for _, rd := range readings {
		out = append(out, readingDTO(rd))
	}
	writeJSON(w, http.StatusOK, map[string]any{"readings": out, "count": len(out)})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	err = s.svc.Delete(r.Context(), index)
	switch {
	case errors.Is(err, store.ErrIndexOutOfRange):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.logger.Error("delete failed", "index", index, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete reading")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.svc.Summaries(r.Context())
	if err != nil {
		s.logger.Error("summaries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute summaries")
		return
	}

	out := make([]summaryJSON, 0, len(summaries))
	for i := range summaries {
		out = append(out, summaryDTO(&summaries[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"summaries": out})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.svc.Alerts(r.Context())
	if err != nil {
		s.logger.Error("alerts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute alerts")
		return
	}

	out := make([]alertGroupJSON, 0, len(domain.Parameters))
	for _, sr := range domain.SafeRanges {
		group := alertGroupJSON{
			Parameter: sr.Parameter,
			Low:       sr.Low,
			High:      sr.High,
			Readings:  []alertJSON{},
		}
		for _, ex := range alerts[sr.Parameter] {
			group.Readings = append(group.Readings, alertJSON{
				Zipcode: ex.Reading.Zipcode,
				Date:    ex.Reading.Date.Format(domain.DateLayout),
				Value:   ex.Value,
			})
		}
		out = append(out, group)
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": out})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	markers, err := s.svc.Markers(r.Context())
	if err != nil {
		s.logger.Error("map markers failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build map markers")
		return
	}

	out := make([]markerJSON, 0, len(markers))
	for _, m := range markers {
		mj := markerJSON{
			Zipcode: m.Zipcode,
			Lat:     m.Lat,
			Lon:     m.Lon,
			Color:   "green",
		}
		if !m.Safe {
			mj.Color = "red"
		}
		if m.Summary != nil {
			sj := summaryDTO(m.Summary)
			mj.Summary = &sj
		}
		out = append(out, mj)
	}
	writeJSON(w, http.StatusOK, map[string]any{"markers": out})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, http.StatusBadRequest, "lat and lon must be decimal coordinates")
		return
	}

	zip, source := s.svc.ResolveZip(r.Context(), lat, lon)
	writeJSON(w, http.StatusOK, map[string]string{"zipcode": zip, "source": source})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
