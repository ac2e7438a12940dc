package analysis

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
)

var removal = planner.DefaultRules().RemovalBuffer

func task(part, op, machine string, kind model.TaskKind, start, end, qty int) model.Task {
	return model.Task{PartName: part, OperationName: op, MachineName: machine, Kind: kind, StartTime: start, EndTime: end, Quantity: qty}
}

func blankPart(name string, capacity int) model.Part {
	return model.Part{
		Name:           name,
		TargetQuantity: 100,
		Operations: []model.Operation{{
			StepName:       "Blank",
			LowestPress:    model.Tonnage{Capacity: capacity},
			DieSettingTime: 5,
			TimeFor50Pcs:   10,
		}},
	}
}

func testPlan(tasks ...model.Task) *model.Plan {
	return &model.Plan{
		Spec:  model.PlanSpec{ShiftDurationMinutes: 540, BreakStart: 255, BreakEnd: 285},
		Tasks: tasks,
	}
}

func TestSeverity(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		ideal, actual int
		want          model.Severity
	}{
		{10, 75, model.SeverityHigh},
		{10, 60, model.SeverityHigh},
		{100, 160, model.SeverityHigh},
		{50, 100, model.SeverityMedium},
		{20, 60, model.SeverityMedium},
		{10, 35, model.SeverityMedium},
		{50, 75, model.SeverityLow},
		{20, 30, model.SeverityLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, th.Severity(tt.ideal, tt.actual), "%dT on %dT", tt.ideal, tt.actual)
	}

	require.NoError(t, th.Validate())
	th.HighGap = 10
	assert.Error(t, th.Validate())
}

func TestFindDiscrepancies(t *testing.T) {
	tests := []struct {
		name         string
		machines     []model.Machine
		parts        []model.Part
		tasks        []model.Task
		wantSeverity model.Severity
		wantReason   string
	}{
		{
			name:     "no smaller press on the floor",
			machines: []model.Machine{{Name: "Press-75T", Capacity: 75, Available: true}},
			parts:    []model.Part{blankPart("A", 10)},
			tasks: []model.Task{
				task("A", "Blank", "Press-75T", model.KindDieSetting, 0, 5, 0),
				task("A", "Blank", "Press-75T", model.KindProduction, 5, 25, 100),
			},
			wantSeverity: model.SeverityHigh,
			wantReason:   "No press between 10T and 75T exists; Press-75T was the smallest suitable press.",
		},
		{
			name: "ideal press busy",
			machines: []model.Machine{
				{Name: "Press-30T", Capacity: 30, Available: true},
				{Name: "Press-75T", Capacity: 75, Available: true},
			},
			parts: []model.Part{blankPart("A", 30), blankPart("B", 30)},
			tasks: []model.Task{
				task("A", "Blank", "Press-30T", model.KindDieSetting, 0, 5, 0),
				task("A", "Blank", "Press-30T", model.KindProduction, 5, 25, 100),
				task("B", "Blank", "Press-75T", model.KindDieSetting, 0, 5, 0),
				task("B", "Blank", "Press-75T", model.KindProduction, 5, 25, 100),
			},
			wantSeverity: model.SeverityMedium,
			wantReason:   "Ideal machine Press-30T was busy performing A - Blank.",
		},
		{
			name: "ideal press removing its die",
			machines: []model.Machine{
				{Name: "Press-30T", Capacity: 30, Available: true},
				{Name: "Press-50T", Capacity: 50, Available: true},
			},
			parts: []model.Part{blankPart("A", 30), blankPart("B", 30)},
			tasks: []model.Task{
				task("A", "Blank", "Press-30T", model.KindDieSetting, 0, 5, 0),
				task("A", "Blank", "Press-30T", model.KindProduction, 5, 25, 100),
				task("B", "Blank", "Press-50T", model.KindDieSetting, 28, 33, 0),
				task("B", "Blank", "Press-50T", model.KindProduction, 33, 53, 100),
			},
			wantSeverity: model.SeverityLow,
			wantReason:   "Ideal machine Press-30T was removing the die after A - Blank.",
		},
		{
			name: "ideal press down for the shift",
			machines: []model.Machine{
				{Name: "Press-30T", Capacity: 30, Available: false},
				{Name: "Press-75T", Capacity: 75, Available: true},
			},
			parts: []model.Part{blankPart("A", 30)},
			tasks: []model.Task{
				task("A", "Blank", "Press-75T", model.KindDieSetting, 0, 5, 0),
				task("A", "Blank", "Press-75T", model.KindProduction, 5, 25, 100),
			},
			wantSeverity: model.SeverityMedium,
			wantReason:   "Press-30T is unavailable for the shift.",
		},
		{
			name: "ideal press in planned downtime",
			machines: []model.Machine{
				{Name: "Press-30T", Capacity: 30, Available: true, PlannedDowntimeMinutes: 60},
				{Name: "Press-75T", Capacity: 75, Available: true},
			},
			parts: []model.Part{blankPart("A", 30)},
			tasks: []model.Task{
				task("A", "Blank", "Press-75T", model.KindDieSetting, 0, 5, 0),
				task("A", "Blank", "Press-75T", model.KindProduction, 5, 25, 100),
			},
			wantSeverity: model.SeverityMedium,
			wantReason:   "Ideal machine Press-30T was in planned downtime until minute 60.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDiscrepancies(testPlan(tt.tasks...), tt.parts, tt.machines, DefaultThresholds(), removal)
			require.Len(t, got, 1)
			d := got[len(got)-1]
			assert.Equal(t, tt.wantSeverity, d.Severity)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, "Blank", d.OperationName)
			assert.Greater(t, d.ActualMachineCapacity, d.IdealMachineCapacity)
		})
	}
}

func TestFindDiscrepanciesIgnoresRightSizedTasks(t *testing.T) {
	machines := []model.Machine{{Name: "Press-30T", Capacity: 30, Available: true}}
	plan := testPlan(
		task("A", "Blank", "Press-30T", model.KindDieSetting, 0, 5, 0),
		task("A", "Blank", "Press-30T", model.KindProduction, 5, 25, 100),
		task("Ghost", "Blank", "Press-30T", model.KindProduction, 35, 45, 10),
	)

	got := FindDiscrepancies(plan, []model.Part{blankPart("A", 30)}, machines, DefaultThresholds(), removal)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFindDiscrepanciesUsesRemovalRule(t *testing.T) {
	machines := []model.Machine{
		{Name: "Press-30T", Capacity: 30, Available: true},
		{Name: "Press-50T", Capacity: 50, Available: true},
	}
	parts := []model.Part{blankPart("A", 30), blankPart("B", 30)}
	plan := testPlan(
		task("A", "Blank", "Press-30T", model.KindDieSetting, 0, 5, 0),
		task("A", "Blank", "Press-30T", model.KindProduction, 5, 25, 100),
		task("B", "Blank", "Press-50T", model.KindDieSetting, 40, 45, 0),
		task("B", "Blank", "Press-50T", model.KindProduction, 45, 65, 100),
	)

	tests := []struct {
		name    string
		removal RemovalFunc
		want    string
	}{
		{
			name:    "standard buffer has elapsed",
			removal: removal,
			want:    "Ideal machine Press-30T had no free slot long enough for the operation.",
		},
		{
			name:    "longer buffer still running",
			removal: func(int) int { return 20 },
			want:    "Ideal machine Press-30T was removing the die after A - Blank.",
		},
		{
			name:    "no buffer",
			removal: nil,
			want:    "Ideal machine Press-30T had no free slot long enough for the operation.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindDiscrepancies(plan, parts, machines, DefaultThresholds(), tt.removal)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Reason)
		})
	}
}

func TestIdealMachineName(t *testing.T) {
	machines := []model.Machine{{Name: "Press-30T-2", Capacity: 30}}
	assert.Equal(t, "Press-30T", idealMachineName(model.Tonnage{Capacity: 30, Press: "Press-30T"}, machines))
	assert.Equal(t, "Press-30T-2", idealMachineName(model.Tonnage{Capacity: 30}, machines))
	assert.Equal(t, "45T", idealMachineName(model.Tonnage{Capacity: 45}, machines))
}

func TestMachineUtilization(t *testing.T) {
	machines := []model.Machine{
		{Name: "M1", Capacity: 30},
		{Name: "M2", Capacity: 50},
		{Name: "M3", Capacity: 75},
	}
	plan := testPlan(
		task("A", "Blank", "M1", model.KindDieSetting, 0, 15, 0),
		task("A", "Blank", "M1", model.KindProduction, 15, 135, 100),
		task("B", "Blank", "M2", model.KindDieSetting, 0, 60, 0),
		task("B", "Blank", "M2", model.KindProduction, 60, 120, 100),
	)

	got := MachineUtilization(plan, machines, 540)
	require.Len(t, got, 3)
	assert.Equal(t, model.MachineUtilization{MachineName: "M1", Capacity: 30, TotalTime: 540, BusyTime: 135, IdleTime: 405, UtilizationPct: 25}, got[0])
	assert.Equal(t, 22.22, got[1].UtilizationPct)
	assert.Equal(t, 0, got[2].BusyTime)
	assert.Equal(t, 540, got[2].IdleTime)

	zero := MachineUtilization(plan, machines, 0)
	assert.Zero(t, zero[0].UtilizationPct)
}

func TestPartProduction(t *testing.T) {
	twoStep := model.Part{
		Name:           "Bracket",
		TargetQuantity: 100,
		Operations: []model.Operation{
			{StepName: "Blank", LowestPress: model.Tonnage{Capacity: 30}},
			{StepName: "Pierce", LowestPress: model.Tonnage{Capacity: 30}},
		},
	}
	blankOnly := twoStep
	blankOnly.Name = "Cover"
	blankOnly.SelectedOperations = []string{"Blank"}

	plan := testPlan(
		task("Bracket", "Blank", "M1", model.KindProduction, 5, 25, 100),
		task("Bracket", "Pierce", "M1", model.KindProduction, 40, 52, 60),
		task("Cover", "Blank", "M2", model.KindProduction, 5, 25, 80),
	)

	got := PartProduction(plan, []model.Part{twoStep, blankOnly, blankPart("Idle", 30)})
	require.Len(t, got, 3)
	assert.Equal(t, 160, got[0].QuantityProduced)
	assert.Equal(t, 60, got[0].CompletedUnits)
	assert.Equal(t, 80, got[1].CompletedUnits)
	assert.Equal(t, 0, got[2].QuantityProduced)
	assert.Equal(t, 0, got[2].CompletedUnits)
	assert.Equal(t, 100, got[2].TargetQuantity)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 33.33, round2(100.0/3))
	assert.Equal(t, 66.67, round2(200.0/3))
	assert.Equal(t, 0.0, round2(0))
}

func TestAnalyzerReport(t *testing.T) {
	machines := []model.Machine{{Name: "Press-75T", Capacity: 75, Available: true}}
	plan := testPlan(
		task("A", "Blank", "Press-75T", model.KindDieSetting, 0, 5, 0),
		task("A", "Blank", "Press-75T", model.KindProduction, 5, 25, 100),
	)
	plan.Metadata.ID = "plan-1"

	a := NewAnalyzer(DefaultThresholds(), removal, zerolog.Nop())
	report, err := a.Report(context.Background(), plan, []model.Part{blankPart("A", 10)}, machines)
	require.NoError(t, err)

	assert.Equal(t, "plan-1", report.PlanID)
	assert.Equal(t, model.KindReport, report.Kind)
	require.Len(t, report.MachineUtilization, 1)
	assert.Equal(t, 25, report.MachineUtilization[0].BusyTime)
	require.Len(t, report.PartProduction, 1)
	assert.Equal(t, 100, report.PartProduction[0].CompletedUnits)
	require.Len(t, report.Discrepancies, 1)
	assert.Equal(t, model.SeverityHigh, report.Discrepancies[0].Severity)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Report(ctx, plan, nil, machines)
	assert.ErrorIs(t, err, context.Canceled)
}
