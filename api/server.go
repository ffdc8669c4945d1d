// Package api is the thin HTTP layer over the estimation engine. It parses
// and validates input, calls the finalization service, and serializes the
// outcome; no estimation logic lives here.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"effort-estimate/adapters/storage"
	"effort-estimate/core/catalog"
	"effort-estimate/core/finalize"
	"effort-estimate/internal/errors"
	"effort-estimate/internal/logging"
	"effort-estimate/internal/metrics"
)

// Server is the API server
type Server struct {
	catalogs *catalog.Set
	store    storage.Store
	mux      *http.ServeMux
	version  string
	log      *zap.Logger
}

// NewServer creates an API server. The store may be nil, which disables the
// snapshot endpoints.
func NewServer(version string, catalogs *catalog.Set, store storage.Store) *Server {
	s := &Server{
		catalogs: catalogs,
		store:    store,
		mux:      http.NewServeMux(),
		version:  version,
		log:      logging.Named("api"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.Handle("POST /v1/estimate", s.instrument("/v1/estimate", s.handleEstimate))
	s.mux.Handle("GET /v1/catalog", s.instrument("/v1/catalog", s.handleCatalog))
	s.mux.Handle("POST /v1/snapshots", s.instrument("/v1/snapshots", s.handleSaveSnapshot))
	s.mux.Handle("GET /v1/snapshots", s.instrument("/v1/snapshots", s.handleListSnapshots))
	s.mux.Handle("GET /v1/snapshots/{id}", s.instrument("/v1/snapshots/{id}", s.handleGetSnapshot))

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.Handle("GET /metrics", metrics.Handler())
}

// statusRecorder captures the response status for instrumentation
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) instrument(route string, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next(rec, r)

		metrics.RequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// handleEstimate handles POST /v1/estimate
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	if len(req.ActivityCodes) == 0 && req.TechPresetID == "" {
		s.writeError(w, string(errors.TypeValidation),
			"activity_codes or tech_preset_id is required", http.StatusBadRequest)
		return
	}

	finalized := finalize.Finalize(s.finalizeRequest(req), s.catalogs)

	metrics.EstimatesComputed.WithLabelValues(string(finalized.DriverSource)).Inc()
	s.writeJSON(w, estimateResponse(finalized), http.StatusOK)
}

// finalizeRequest maps an API estimate body onto a finalization request.
// Preset-only bodies take the preset's default activities.
func (s *Server) finalizeRequest(req EstimateRequest) finalize.Request {
	activityCodes := req.ActivityCodes
	if len(activityCodes) == 0 {
		if preset, ok := s.catalogs.PresetByID(req.TechPresetID); ok {
			activityCodes = preset.DefaultActivityCodes
		}
	}

	return finalize.Request{
		ActivityCodes:          activityCodes,
		SuggestedActivityCodes: req.SuggestedActivityCodes,
		ManualDriverValues:     req.ManualDriverValues,
		SuggestedDriverValues:  req.SuggestedDriverValues,
		ManualRiskCodes:        req.ManualRiskCodes,
		SuggestedRiskCodes:     req.SuggestedRiskCodes,
		PresetID:               req.TechPresetID,
	}
}

func estimateResponse(f finalize.Finalized) EstimateResponse {
	return EstimateResponse{
		Result:               f.Result,
		Input:                f.Input,
		DriverSource:         f.DriverSource,
		RiskSource:           f.RiskSource,
		DroppedActivityCodes: f.DroppedActivityCodes,
		DroppedRiskCodes:     f.DroppedRiskCodes,
	}
}

// handleCatalog handles GET /v1/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	resp := CatalogResponse{
		Activities: make([]ActivityInfo, 0, len(s.catalogs.Activities)),
		Drivers:    make([]DriverInfo, 0, len(s.catalogs.Drivers)),
		Risks:      make([]RiskInfo, 0, len(s.catalogs.Risks)),
		Presets:    make([]PresetInfo, 0, len(s.catalogs.Presets)),
	}

	for _, a := range s.catalogs.Activities {
		resp.Activities = append(resp.Activities, ActivityInfo{
			ID:           a.ID,
			Code:         a.Code,
			Name:         a.Name,
			BaseDays:     a.BaseDays,
			Group:        a.Group,
			TechCategory: string(a.TechCategory),
		})
	}
	for _, d := range s.catalogs.Drivers {
		info := DriverInfo{ID: d.ID, Code: d.Code, Name: d.Name}
		for _, opt := range d.Options {
			info.Options = append(info.Options, OptionInfo{
				Value:      opt.Value,
				Label:      opt.Label,
				Multiplier: opt.Multiplier,
			})
		}
		resp.Drivers = append(resp.Drivers, info)
	}
	for _, risk := range s.catalogs.Risks {
		resp.Risks = append(resp.Risks, RiskInfo{ID: risk.ID, Code: risk.Code, Name: risk.Name, Weight: risk.Weight})
	}
	for _, p := range s.catalogs.Presets {
		resp.Presets = append(resp.Presets, PresetInfo{
			ID:                   p.ID,
			Name:                 p.Name,
			TechCategory:         string(p.TechCategory),
			DefaultActivityCodes: p.DefaultActivityCodes,
			DefaultDriverValues:  p.DefaultDriverValues,
			DefaultRiskCodes:     p.DefaultRiskCodes,
		})
	}

	s.writeJSON(w, resp, http.StatusOK)
}

// handleSaveSnapshot handles POST /v1/snapshots
func (s *Server) handleSaveSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, "STORAGE_DISABLED", "no storage backend configured", http.StatusServiceUnavailable)
		return
	}

	var req SaveSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}
	if req.RequirementID == "" {
		s.writeError(w, string(errors.TypeValidation), "requirement_id is required", http.StatusBadRequest)
		return
	}

	finalized := finalize.Finalize(s.finalizeRequest(req.Estimate), s.catalogs)

	snap := &storage.Snapshot{
		RequirementID:        req.RequirementID,
		Title:                req.Title,
		Input:                finalized.Input,
		Result:               finalized.Result,
		DriverSource:         finalized.DriverSource,
		RiskSource:           finalized.RiskSource,
		DroppedActivityCodes: finalized.DroppedActivityCodes,
		DroppedRiskCodes:     finalized.DroppedRiskCodes,
		Metadata:             req.Metadata,
	}
	if err := s.store.SaveSnapshot(r.Context(), snap); err != nil {
		s.writeTypedError(w, err)
		return
	}

	metrics.EstimatesComputed.WithLabelValues(string(finalized.DriverSource)).Inc()
	s.writeJSON(w, SaveSnapshotResponse{ID: snap.ID, Estimate: estimateResponse(finalized)}, http.StatusCreated)
}

// handleListSnapshots handles GET /v1/snapshots
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, "STORAGE_DISABLED", "no storage backend configured", http.StatusServiceUnavailable)
		return
	}

	snaps, err := s.store.ListHistory(r.Context(), r.URL.Query().Get("requirement"))
	if err != nil {
		s.writeTypedError(w, err)
		return
	}
	if snaps == nil {
		snaps = []*storage.Snapshot{}
	}
	s.writeJSON(w, map[string]interface{}{
		"snapshots": snaps,
		"count":     len(snaps),
	}, http.StatusOK)
}

// handleGetSnapshot handles GET /v1/snapshots/{id}
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, "STORAGE_DISABLED", "no storage backend configured", http.StatusServiceUnavailable)
		return
	}

	snap, err := s.store.GetSnapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeTypedError(w, err)
		return
	}
	s.writeJSON(w, snap, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "effort-estimate",
		"api_version": "v1",
	}, http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	}, status)
}

// writeTypedError maps engine error types to HTTP statuses
func (s *Server) writeTypedError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := string(errors.TypeInternal)

	if typed, ok := err.(*errors.Error); ok {
		code = string(typed.Type)
		switch typed.Type {
		case errors.TypeValidation:
			status = http.StatusBadRequest
		case errors.TypeNotFound:
			status = http.StatusNotFound
		case errors.TypeCompatibility, errors.TypeCatalogGap:
			status = http.StatusUnprocessableEntity
		case errors.TypeBusy:
			status = http.StatusConflict
		}
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	s.writeError(w, code, err.Error(), status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the server
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}
