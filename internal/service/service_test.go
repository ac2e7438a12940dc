package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/pressplan/internal/analysis"
	"github.com/sourceplane/pressplan/internal/config"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
	"github.com/sourceplane/pressplan/internal/sample"
	"github.com/sourceplane/pressplan/internal/store"
	"github.com/sourceplane/pressplan/internal/telemetry"
)

func newTestService(t *testing.T, persist bool) (*Service, *telemetry.Metrics) {
	t.Helper()
	metrics := telemetry.NewMetrics()
	opts := Options{
		Rules:               planner.DefaultRules(),
		Thresholds:          analysis.DefaultThresholds(),
		DefaultShiftMinutes: model.DefaultShiftLength,
		Metrics:             metrics,
		Logger:              zerolog.Nop(),
	}
	if persist {
		db, err := store.Connect(&config.Config{DBBackend: config.DatabaseSQLite, DBDSN: ":memory:"})
		require.NoError(t, err)
		require.NoError(t, store.Migrate(db))
		t.Cleanup(func() { _ = store.Close(db) })
		opts.Store = store.New(db, zerolog.Nop())
	}
	return New(opts), metrics
}

func TestPlanPersists(t *testing.T) {
	svc, metrics := newTestService(t, true)
	ctx := context.Background()

	res, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Plan.Metadata.ID)
	assert.Equal(t, "day-shift", res.Plan.Metadata.Name)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScheduleRuns.WithLabelValues(telemetry.ModeFresh)))

	stored, err := svc.Get(ctx, "latest")
	require.NoError(t, err)
	assert.Equal(t, res.Plan.Tasks, stored.Plan.Tasks)
	assert.Equal(t, res.Request.Parts, stored.Request.Parts)

	res2, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)
	assert.Equal(t, res.Plan.Tasks, res2.Plan.Tasks)
	assert.NotEqual(t, res.Plan.Metadata.ID, res2.Plan.Metadata.ID)

	entries, err := svc.History(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestPlanRejectsMissingQuantity(t *testing.T) {
	svc, metrics := newTestService(t, false)

	req := sample.Request()
	req.Parts[4].TargetQuantity = 0
	res, err := svc.Plan(context.Background(), req)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.Equal(t, "Error: Please fill in the necessary quantity for all parts in the planner.", err.Error())
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScheduleFailures.WithLabelValues(telemetry.ModeFresh, "InvalidInput")))
}

func TestReplanStored(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	first, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)

	next, err := svc.ReplanStored(ctx, first.Plan.Metadata.ID, nil, 120, false)
	require.NoError(t, err)
	assert.Equal(t, first.Plan.Metadata.ID, next.Plan.Metadata.ParentID)
	require.NotNil(t, next.Plan.Spec.ReplannedAt)
	assert.Equal(t, 120, *next.Plan.Spec.ReplannedAt)
	assert.True(t, svc.VerifyLockIn(first.Plan, next.Plan, 120).OK())
	assert.True(t, svc.Verify(next.Plan, next.Request).OK())

	chain, err := svc.Lineage(ctx, next.Plan.Metadata.ID)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, "replan", chain[0].Mode)
	assert.Equal(t, "fresh", chain[1].Mode)

	_, err = svc.ReplanStored(ctx, "latest", nil, 900, false)
	assert.ErrorIs(t, err, planner.ErrReplanPrecondition)

	_, err = svc.ReplanStored(ctx, "no-such-plan", nil, 10, false)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReplanEstimatesProgress(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	first, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)

	next, err := svc.Replan(ctx, ReplanInput{
		Previous:         first.Plan,
		Request:          sample.Request(),
		Elapsed:          540,
		EstimateProgress: true,
	})
	require.NoError(t, err)

	part, ok := next.Request.PartByName("Engine Mount Bracket")
	require.True(t, ok)
	assert.Equal(t, 200, part.AlreadyProduced)
	assert.Contains(t, next.Plan.Summary, "Engine Mount Bracket has reached its target quantity.")

	_, err = svc.Replan(ctx, ReplanInput{Previous: first.Plan, Elapsed: 10})
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
}

func partlyProducedRequest() *model.ProductionRequest {
	return &model.ProductionRequest{
		Kind:     model.KindRequest,
		Metadata: model.Metadata{Name: "carry-over"},
		Shift:    model.ShiftSpec{DurationMinutes: 540},
		Machines: []model.Machine{{Name: "Press-50T", Capacity: 50, Available: true}},
		Parts: []model.Part{{
			Name:            "A",
			Priority:        1,
			TargetQuantity:  100,
			AlreadyProduced: 60,
			Operations: []model.Operation{
				{StepName: "Blank", LowestPress: model.Tonnage{Capacity: 50}, DieSettingTime: 5, TimeFor50Pcs: 10},
			},
		}},
	}
}

func TestReplanEstimateKeepsEarlierOutput(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()

	first, err := svc.Plan(ctx, partlyProducedRequest())
	require.NoError(t, err)
	require.Len(t, first.Plan.Tasks, 2)
	assert.Equal(t, 5, first.Plan.Tasks[1].StartTime)
	assert.Equal(t, 13, first.Plan.Tasks[1].EndTime)
	assert.Equal(t, 40, first.Plan.Tasks[1].Quantity)

	next, err := svc.Replan(ctx, ReplanInput{
		Previous:         first.Plan,
		Request:          partlyProducedRequest(),
		Elapsed:          200,
		EstimateProgress: true,
	})
	require.NoError(t, err)

	part, ok := next.Request.PartByName("A")
	require.True(t, ok)
	assert.Equal(t, 100, part.AlreadyProduced)
	require.Len(t, next.Plan.Parts, 1)
	assert.Equal(t, model.OutcomeDone, next.Plan.Parts[0].Status)
	assert.Equal(t, 0, next.Plan.Parts[0].RemainingQuantity)
}

func TestReplanStoredEstimateAcrossReplans(t *testing.T) {
	svc, _ := newTestService(t, true)
	ctx := context.Background()

	first, err := svc.Plan(ctx, partlyProducedRequest())
	require.NoError(t, err)

	// 20 of the 40 planned units are out by minute 9
	mid, err := svc.ReplanStored(ctx, first.Plan.Metadata.ID, nil, 9, true)
	require.NoError(t, err)
	part, _ := mid.Request.PartByName("A")
	assert.Equal(t, 80, part.AlreadyProduced)

	// only output after minute 9 adds to the stored count
	last, err := svc.ReplanStored(ctx, mid.Plan.Metadata.ID, nil, 200, true)
	require.NoError(t, err)
	part, _ = last.Request.PartByName("A")
	assert.Equal(t, 100, part.AlreadyProduced)
}

func TestReplanChecksPreviousPlanFirst(t *testing.T) {
	svc, metrics := newTestService(t, false)

	_, err := svc.Replan(context.Background(), ReplanInput{Elapsed: 10})
	assert.ErrorIs(t, err, planner.ErrReplanPrecondition)
	assert.NotErrorIs(t, err, planner.ErrInvalidInput)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScheduleFailures.WithLabelValues(telemetry.ModeReplan, "ReplanPrecondition")))

	req := sample.Request()
	req.Parts[0].Operations = nil
	_, err = svc.Replan(context.Background(), ReplanInput{Request: req, Elapsed: 10})
	assert.ErrorIs(t, err, planner.ErrReplanPrecondition)
}

func TestWithoutStore(t *testing.T) {
	svc, _ := newTestService(t, false)
	ctx := context.Background()
	assert.False(t, svc.HasStore())

	res, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)
	assert.Empty(t, res.Plan.Metadata.ID)

	_, err = svc.Get(ctx, "latest")
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = svc.History(ctx, 10)
	assert.ErrorIs(t, err, ErrNoStore)
	_, err = svc.Lineage(ctx, "x")
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestReport(t *testing.T) {
	svc, metrics := newTestService(t, false)
	ctx := context.Background()

	res, err := svc.Plan(ctx, sample.Request())
	require.NoError(t, err)

	report, err := svc.Report(ctx, res.Plan, res.Request)
	require.NoError(t, err)
	assert.Len(t, report.MachineUtilization, 13)
	assert.Len(t, report.PartProduction, 11)
	for _, d := range report.Discrepancies {
		assert.Greater(t, d.ActualMachineCapacity, d.IdealMachineCapacity)
	}
	total := 0.0
	for _, sev := range []model.Severity{model.SeverityLow, model.SeverityMedium, model.SeverityHigh} {
		total += testutil.ToFloat64(metrics.Discrepancies.WithLabelValues(string(sev)))
	}
	assert.Equal(t, float64(len(report.Discrepancies)), total)

	_, err = svc.Report(ctx, res.Plan, nil)
	assert.Error(t, err)
	_, err = svc.Report(ctx, nil, res.Request)
	assert.Error(t, err)
}
