package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/sourceplane/pressplan/internal/loader"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
	"github.com/sourceplane/pressplan/internal/service"
	"github.com/sourceplane/pressplan/internal/store"
	"github.com/sourceplane/pressplan/internal/telemetry"
	"github.com/sourceplane/pressplan/internal/verify"
)

const maxBodyBytes = 4 << 20

// API exposes the planning service over HTTP
type API struct {
	svc     *service.Service
	loader  *loader.Loader
	metrics *telemetry.Metrics
	logger  zerolog.Logger
}

// New creates the HTTP API. metrics may be nil.
func New(svc *service.Service, ld *loader.Loader, metrics *telemetry.Metrics, logger zerolog.Logger) *API {
	return &API{
		svc:     svc,
		loader:  ld,
		metrics: metrics,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the chi router with middleware and all routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if a.metrics != nil {
		r.Use(a.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", a.metrics.Handler())
	}

	r.Get("/healthz", a.handleHealth)
	a.Routes(r)
	return r
}

// Routes registers the v1 planning routes.
func (a *API) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/report", a.handleReport)
		r.Post("/verify", a.handleVerify)
		r.Route("/plans", func(r chi.Router) {
			r.Post("/", a.handlePlanCreate)
			r.Get("/", a.handlePlanList)
			r.Route("/{planID}", func(r chi.Router) {
				r.Get("/", a.handlePlanGet)
				r.Get("/report", a.handlePlanReport)
				r.Get("/lineage", a.handlePlanLineage)
				r.Post("/replan", a.handlePlanReplan)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": a.svc.HasStore(),
	})
}

func (a *API) handlePlanCreate(w http.ResponseWriter, r *http.Request) {
	req, ok := a.readRequest(w, r)
	if !ok {
		return
	}

	res, err := a.svc.Plan(r.Context(), req)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Plan)
}

func (a *API) handlePlanList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := a.svc.History(r.Context(), limit)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": entries})
}

func (a *API) handlePlanGet(w http.ResponseWriter, r *http.Request) {
	stored, err := a.svc.Get(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored.Plan)
}

func (a *API) handlePlanLineage(w http.ResponseWriter, r *http.Request) {
	entries, err := a.svc.Lineage(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": entries})
}

func (a *API) handlePlanReport(w http.ResponseWriter, r *http.Request) {
	stored, err := a.svc.Get(r.Context(), chi.URLParam(r, "planID"))
	if err != nil {
		a.writeFailure(w, err)
		return
	}

	report, err := a.svc.Report(r.Context(), stored.Plan, stored.Request)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type replanBody struct {
	ElapsedMinutes   *int            `json:"elapsedMinutes"`
	EstimateProgress bool            `json:"estimateProgress"`
	Request          json.RawMessage `json:"request,omitempty"`
}

func (a *API) handlePlanReplan(w http.ResponseWriter, r *http.Request) {
	var body replanBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if body.ElapsedMinutes == nil {
		writeError(w, http.StatusBadRequest, "elapsed_minutes_required")
		return
	}

	var req *model.ProductionRequest
	if len(body.Request) > 0 && string(body.Request) != "null" {
		parsed, err := a.loader.ParseRequest(body.Request)
		if err != nil {
			writeFailureMessage(w, http.StatusBadRequest, "invalid_request", err)
			return
		}
		req = parsed
	}

	res, err := a.svc.ReplanStored(r.Context(), chi.URLParam(r, "planID"), req, *body.ElapsedMinutes, body.EstimateProgress)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res.Plan)
}

type planBody struct {
	Plan     *model.Plan     `json:"plan"`
	Request  json.RawMessage `json:"request"`
	Previous *model.Plan     `json:"previous,omitempty"`
	Elapsed  *int            `json:"elapsedMinutes,omitempty"`
}

func (a *API) readPlanBody(w http.ResponseWriter, r *http.Request) (*planBody, *model.ProductionRequest, bool) {
	var body planBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return nil, nil, false
	}
	if body.Plan == nil {
		writeError(w, http.StatusBadRequest, "plan_required")
		return nil, nil, false
	}
	if len(body.Request) == 0 {
		writeError(w, http.StatusBadRequest, "request_required")
		return nil, nil, false
	}
	req, err := a.loader.ParseRequest(body.Request)
	if err != nil {
		writeFailureMessage(w, http.StatusBadRequest, "invalid_request", err)
		return nil, nil, false
	}
	return &body, req, true
}

func (a *API) handleReport(w http.ResponseWriter, r *http.Request) {
	body, req, ok := a.readPlanBody(w, r)
	if !ok {
		return
	}
	report, err := a.svc.Report(r.Context(), body.Plan, req)
	if err != nil {
		a.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleVerify(w http.ResponseWriter, r *http.Request) {
	body, req, ok := a.readPlanBody(w, r)
	if !ok {
		return
	}

	res := a.svc.Verify(body.Plan, req)
	if body.Previous != nil && body.Elapsed != nil {
		lock := a.svc.VerifyLockIn(body.Previous, body.Plan, *body.Elapsed)
		res.Violations = append(res.Violations, lock.Violations...)
	}
	if res.Violations == nil {
		res.Violations = []verify.Violation{}
	}

	status := http.StatusOK
	if !res.OK() {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (a *API) readRequest(w http.ResponseWriter, r *http.Request) (*model.ProductionRequest, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable_body")
		return nil, false
	}
	req, err := a.loader.ParseRequest(data)
	if err != nil {
		writeFailureMessage(w, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	return req, true
}

// writeFailure maps service errors onto HTTP statuses.
func (a *API) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		writeFailureMessage(w, http.StatusBadRequest, string(planner.KindInvalidInput), err)
	case errors.Is(err, planner.ErrReplanPrecondition):
		writeFailureMessage(w, http.StatusUnprocessableEntity, string(planner.KindReplanPrecondition), err)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, service.ErrNoStore):
		writeError(w, http.StatusServiceUnavailable, "history_disabled")
	default:
		a.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

func writeFailureMessage(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, map[string]string{"error": code, "message": err.Error()})
}
