package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sourceplane/pressplan/internal/model"
)

// Run modes label scheduling metrics.
const (
	ModeFresh  = "fresh"
	ModeReplan = "replan"
)

// Metrics holds the planner's collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	ScheduleRuns     *prometheus.CounterVec
	ScheduleFailures *prometheus.CounterVec
	ScheduleDuration *prometheus.HistogramVec
	TasksScheduled   *prometheus.CounterVec
	PartsPartial     *prometheus.CounterVec
	Discrepancies    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
}

// NewMetrics registers the collectors on a new registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ScheduleRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressplan_schedule_runs_total",
			Help: "Scheduling runs by mode.",
		}, []string{"mode"}),
		ScheduleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressplan_schedule_failures_total",
			Help: "Scheduling runs rejected before planning, by mode and error kind.",
		}, []string{"mode", "kind"}),
		ScheduleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pressplan_schedule_duration_seconds",
			Help:    "Wall time of a scheduling run.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"mode"}),
		TasksScheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressplan_tasks_scheduled_total",
			Help: "Tasks emitted by scheduling runs.",
		}, []string{"mode"}),
		PartsPartial: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressplan_parts_partial_total",
			Help: "Parts left partial or unscheduled by a run.",
		}, []string{"mode"}),
		Discrepancies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pressplan_discrepancies_total",
			Help: "Oversized machine assignments found in reports, by severity.",
		}, []string{"severity"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pressplan_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ScheduleRuns,
		m.ScheduleFailures,
		m.ScheduleDuration,
		m.TasksScheduled,
		m.PartsPartial,
		m.Discrepancies,
		m.RequestDuration,
	)
	return m
}

// Registry exposes the registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObservePlan records a finished scheduling run.
func (m *Metrics) ObservePlan(mode string, plan *model.Plan, took time.Duration) {
	if m == nil {
		return
	}
	m.ScheduleRuns.WithLabelValues(mode).Inc()
	m.ScheduleDuration.WithLabelValues(mode).Observe(took.Seconds())
	m.TasksScheduled.WithLabelValues(mode).Add(float64(len(plan.Tasks)))

	partial := 0
	for _, o := range plan.Parts {
		if o.Status == model.OutcomePartial || o.Status == model.OutcomeUnscheduled {
			partial++
		}
	}
	m.PartsPartial.WithLabelValues(mode).Add(float64(partial))
}

// ObserveFailure records a rejected run.
func (m *Metrics) ObserveFailure(mode, kind string) {
	if m == nil {
		return
	}
	m.ScheduleFailures.WithLabelValues(mode, kind).Inc()
}

// ObserveReport records discrepancy counts of a report.
func (m *Metrics) ObserveReport(report *model.Report) {
	if m == nil {
		return
	}
	for _, d := range report.Discrepancies {
		m.Discrepancies.WithLabelValues(string(d.Severity)).Inc()
	}
}
