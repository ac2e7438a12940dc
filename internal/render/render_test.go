package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sourceplane/pressplan/internal/model"
)

func viewPlan() *model.Plan {
	return &model.Plan{
		Kind:     model.KindPlan,
		Metadata: model.PlanMetadata{ID: "p-1", Name: "day-shift"},
		Spec:     model.PlanSpec{ShiftDurationMinutes: 540, StartTime: "06:00", BreakStart: 255, BreakEnd: 285},
		Tasks: []model.Task{
			{PartName: "A", OperationName: "Blank", MachineName: "Press-50T", StartTime: 0, EndTime: 5, Kind: model.KindDieSetting},
			{PartName: "A", OperationName: "Blank", MachineName: "Press-50T", StartTime: 5, EndTime: 25, Kind: model.KindProduction, Quantity: 100},
			{PartName: "B", OperationName: "Draw", MachineName: "Press-75T", StartTime: 285, EndTime: 295, Kind: model.KindDieSetting},
			{PartName: "B", OperationName: "Draw", MachineName: "Press-75T", StartTime: 295, EndTime: 320, Kind: model.KindProduction, Quantity: 40},
		},
		Parts: []model.PartOutcome{
			{PartName: "A", Status: model.OutcomeComplete, ScheduledOperations: 1, TotalOperations: 1},
			{PartName: "B", Status: model.OutcomePartial, ScheduledOperations: 1, TotalOperations: 2, Reason: "Trim does not fit before the end of the shift"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"json": FormatJSON, "YAML": FormatYAML, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatYAML, FormatForPath("out/plan.yml"))
	assert.Equal(t, FormatJSON, FormatForPath("plan.json"))
	assert.Equal(t, FormatJSON, FormatForPath("plan"))
}

func TestWriteFile(t *testing.T) {
	r := NewRenderer()
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "nested", "plan.json")
	require.NoError(t, r.WriteFile(viewPlan(), jsonPath))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var fromJSON model.Plan
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, viewPlan().Tasks, fromJSON.Tasks)
	assert.Contains(t, string(data), `"taskType": "Die Setting"`)

	yamlPath := filepath.Join(dir, "plan.yaml")
	require.NoError(t, r.WriteFile(viewPlan(), yamlPath))
	data, err = os.ReadFile(yamlPath)
	require.NoError(t, err)
	var fromYAML model.Plan
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, viewPlan().Tasks, fromYAML.Tasks)
}

func TestWrite(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, NewRenderer().Write(&sb, map[string]int{"tasks": 4}, FormatJSON))
	assert.Equal(t, "{\n  \"tasks\": 4\n}\n", sb.String())
}

func TestViews(t *testing.T) {
	machines := []model.Machine{
		{Name: "Press-50T", Capacity: 50},
		{Name: "Press-75T", Capacity: 75},
		{Name: "Press-100T", Capacity: 100},
	}
	pv := NewPlanViewer(viewPlan(), machines)

	out, err := pv.View("machines")
	require.NoError(t, err)
	assert.Contains(t, out, "├─ Press-50T [50T]")
	assert.Contains(t, out, "└─ Press-100T [100T] (idle)")
	assert.Contains(t, out, "06:05-06:25 A / Blank ×100")
	assert.Contains(t, out, "Summary: 3 machines, 4 tasks")

	out, err = pv.View("parts")
	require.NoError(t, err)
	assert.Contains(t, out, "B [partial 1/2]")
	assert.Contains(t, out, "(Trim does not fit before the end of the shift)")

	out, err = pv.View("timeline")
	require.NoError(t, err)
	breakAt := strings.Index(out, "10:15-10:45 ── break ──")
	require.GreaterOrEqual(t, breakAt, 0)
	assert.Less(t, strings.Index(out, "A / Blank"), breakAt)
	assert.Greater(t, strings.Index(out, "B / Draw"), breakAt)
	assert.Contains(t, out, "Shift: 06:00-15:00, 4 tasks")

	_, err = pv.View("gantt")
	assert.Error(t, err)

	empty := NewPlanViewer(&model.Plan{}, nil)
	assert.Equal(t, "No machines in plan", empty.ViewMachines())
	assert.Equal(t, "No tasks in plan", empty.ViewTimeline())
}

func TestViewReport(t *testing.T) {
	report := &model.Report{
		MachineUtilization: []model.MachineUtilization{{MachineName: "Press-75T", BusyTime: 135, IdleTime: 405, UtilizationPct: 25}},
		PartProduction:     []model.PartProduction{{PartName: "A", QuantityProduced: 100, TargetQuantity: 100, CompletedUnits: 100}},
	}
	out := ViewReport(report)
	assert.Contains(t, out, " 25.00%")
	assert.Contains(t, out, "(completed 100)")
	assert.True(t, strings.HasSuffix(out, "none\n"))

	report.Discrepancies = []model.Discrepancy{{
		PartName: "A", OperationName: "Blank", Severity: model.SeverityHigh,
		ActualMachineName: "Press-75T", ActualMachineCapacity: 75,
		IdealMachineName: "Press-10T", IdealMachineCapacity: 10,
		Reason: "No press between 10T and 75T exists; Press-75T was the smallest suitable press.",
	}}
	out = ViewReport(report)
	assert.Contains(t, out, "[High] A / Blank: Press-75T (75T) instead of Press-10T (10T)")
	assert.Contains(t, out, "smallest suitable press")
}

func TestDebugDump(t *testing.T) {
	plan := viewPlan()
	at, until := 30, 75
	plan.Spec.ReplannedAt = &at
	plan.Spec.LockedUntil = &until
	plan.Metadata.ParentID = "p-0"

	out := NewRenderer().DebugDump(plan)
	assert.Contains(t, out, "Plan: day-shift (p-1)")
	assert.Contains(t, out, "Replanned at: 30 (parent p-0)")
	assert.Contains(t, out, "Locked until: 75")
	assert.Contains(t, out, "  Quantity: 100")
}
