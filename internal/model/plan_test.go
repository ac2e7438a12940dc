package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortTasks(t *testing.T) {
	tasks := []Task{
		{PartName: "B", OperationName: "op", MachineName: "M2", StartTime: 10, EndTime: 20, Kind: KindProduction},
		{PartName: "A", OperationName: "op", MachineName: "M1", StartTime: 10, EndTime: 15, Kind: KindProduction},
		{PartName: "A", OperationName: "op", MachineName: "M1", StartTime: 10, EndTime: 10, Kind: KindDieSetting},
		{PartName: "C", OperationName: "op", MachineName: "M1", StartTime: 0, EndTime: 5, Kind: KindDieSetting},
	}
	SortTasks(tasks)

	require.Len(t, tasks, 4)
	assert.Equal(t, "C", tasks[0].PartName)
	assert.Equal(t, KindDieSetting, tasks[1].Kind)
	assert.Equal(t, "M1", tasks[2].MachineName)
	assert.Equal(t, KindProduction, tasks[2].Kind)
	assert.Equal(t, "M2", tasks[3].MachineName)
}

func TestPlanLookups(t *testing.T) {
	plan := &Plan{Tasks: []Task{
		{PartName: "A", MachineName: "M1", StartTime: 30, EndTime: 40, Kind: KindProduction},
		{PartName: "B", MachineName: "M2", StartTime: 0, EndTime: 10, Kind: KindDieSetting},
		{PartName: "A", MachineName: "M1", StartTime: 20, EndTime: 30, Kind: KindDieSetting},
	}}

	on := plan.TasksOn("M1")
	require.Len(t, on, 2)
	assert.Equal(t, 20, on[0].StartTime)

	assert.Len(t, plan.TasksFor("B"), 1)
	assert.Empty(t, plan.TasksOn("M9"))
	assert.Equal(t, 10, on[1].Duration())
}

func TestClock(t *testing.T) {
	tests := []struct {
		start  string
		minute int
		want   string
	}{
		{"06:00", 0, "06:00"},
		{"06:00", 285, "10:45"},
		{"22:00", 180, "01:00"},
		{"", 45, "+45"},
		{"bogus", 45, "+45"},
	}

	for _, tt := range tests {
		t.Run(tt.start+"/"+tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ClockAt(tt.start, tt.minute))
		})
	}

	plan := &Plan{Spec: PlanSpec{StartTime: "07:30"}}
	assert.Equal(t, "08:00", plan.Clock(30))
}

func TestParseClock(t *testing.T) {
	got, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 545, got)

	for _, bad := range []string{"9", "24:00", "09:60", "09:5", "ab:cd"} {
		_, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestRequestLookups(t *testing.T) {
	req := &ProductionRequest{
		Machines: []Machine{{Name: "Press-30T", Capacity: 30}},
		Parts:    []Part{{Name: "Bracket"}},
	}
	_, ok := req.PartByName("Bracket")
	assert.True(t, ok)
	_, ok = req.PartByName("Nope")
	assert.False(t, ok)
	m, ok := req.MachineByName("Press-30T")
	require.True(t, ok)
	assert.Equal(t, 30, m.Capacity)

	c := Constraint{MachineName: "Press-30T", Start: 5, End: 9}
	assert.Equal(t, Window{Start: 5, End: 9}, c.Window())
}
