package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/pressplan/internal/model"
)

func TestObservePlan(t *testing.T) {
	m := NewMetrics()
	plan := &model.Plan{
		Tasks: make([]model.Task, 6),
		Parts: []model.PartOutcome{
			{Status: model.OutcomeComplete},
			{Status: model.OutcomePartial},
			{Status: model.OutcomeUnscheduled},
			{Status: model.OutcomeDone},
		},
	}

	m.ObservePlan(ModeFresh, plan, 3*time.Millisecond)
	m.ObservePlan(ModeReplan, plan, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScheduleRuns.WithLabelValues(ModeFresh)))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.TasksScheduled.WithLabelValues(ModeReplan)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PartsPartial.WithLabelValues(ModeFresh)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.ScheduleDuration))

	m.ObserveFailure(ModeFresh, "InvalidInput")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ScheduleFailures.WithLabelValues(ModeFresh, "InvalidInput")))

	m.ObserveReport(&model.Report{Discrepancies: []model.Discrepancy{
		{Severity: model.SeverityHigh}, {Severity: model.SeverityHigh}, {Severity: model.SeverityLow},
	}})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Discrepancies.WithLabelValues("High")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePlan(ModeFresh, &model.Plan{}, time.Second)
		m.ObserveFailure(ModeFresh, "internal")
		m.ObserveReport(&model.Report{})
	})
}

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := NewMetrics()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/v1/plans/{planID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/plans/abc", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `route="/v1/plans/{planID}"`), body)
	assert.Contains(t, body, `status="404"`)
	assert.Contains(t, body, "go_goroutines")
}
