package planner

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/sample"
)

func singlePressFloor() ([]model.Part, []model.Machine) {
	machines := []model.Machine{{Name: "Press-50T", Capacity: 50, Available: true}}
	parts := []model.Part{
		{Name: "A", Priority: 1, TargetQuantity: 100, Operations: []model.Operation{op("Blank", 50, 5, 10)}},
		{Name: "B", Priority: 2, TargetQuantity: 200, Operations: []model.Operation{op("Blank", 50, 5, 10)}},
		{Name: "C", Priority: 3, TargetQuantity: 100, Operations: []model.Operation{op("Blank", 50, 5, 10)}},
	}
	return parts, machines
}

func TestReplanKeepsLockedTasks(t *testing.T) {
	parts, machines := singlePressFloor()
	previous, err := newTestScheduler().Schedule(parts, machines, shift540(), nil)
	require.NoError(t, err)
	previous.Metadata.ID = "prev-1"
	require.Len(t, previous.Tasks, 6)

	urgent := model.Part{Name: "D", Priority: 0, TargetQuantity: 50, Operations: []model.Operation{op("Blank", 50, 5, 10)}}
	next, err := NewReplanner(DefaultRules(), zerolog.Nop()).Replan(previous, append(parts, urgent), machines, shift540(), nil, 30)
	require.NoError(t, err)

	// A and B start before minute 75 and must not move
	assert.Equal(t, previous.Tasks[:4], next.Tasks[:4])
	assert.Equal(t, 4, next.Spec.LockedTasks)
	require.NotNil(t, next.Spec.ReplannedAt)
	assert.Equal(t, 30, *next.Spec.ReplannedAt)
	require.NotNil(t, next.Spec.LockedUntil)
	assert.Equal(t, 75, *next.Spec.LockedUntil)
	assert.Equal(t, "prev-1", next.Metadata.ParentID)

	d := next.TasksFor("D")
	require.Len(t, d, 2)
	assert.Equal(t, 90, d[0].StartTime)
	c := next.TasksFor("C")
	require.Len(t, c, 2)
	assert.Equal(t, 115, c[0].StartTime)
	assert.Equal(t, 140, c[1].EndTime)

	for _, task := range next.Tasks[4:] {
		assert.GreaterOrEqual(t, task.StartTime, 30)
	}
	assert.Contains(t, next.Summary, "- Plan adjusted at 30 minutes into the shift.")
	assert.Contains(t, next.Summary, "- Added new part D with 50 units.")
	assert.Contains(t, next.Summary, "- A continues on locked tasks only.")
}

func TestReplanPartReachedTarget(t *testing.T) {
	parts, machines := singlePressFloor()
	previous, err := newTestScheduler().Schedule(parts, machines, shift540(), nil)
	require.NoError(t, err)

	parts[2].AlreadyProduced = 100
	next, err := NewReplanner(DefaultRules(), zerolog.Nop()).Replan(previous, parts, machines, shift540(), nil, 30)
	require.NoError(t, err)

	assert.Empty(t, next.TasksFor("C"))
	assert.Len(t, next.Tasks, 4)
	assert.Contains(t, next.Summary, "- C has reached its target quantity.")

	var statuses []model.OutcomeStatus
	for _, o := range next.Parts {
		statuses = append(statuses, o.Status)
	}
	assert.Equal(t, []model.OutcomeStatus{model.OutcomeComplete, model.OutcomeComplete, model.OutcomeDone}, statuses)
}

func TestReplanAtShiftStartMatchesFreshPlan(t *testing.T) {
	req := sample.Request()
	shift := DefaultRules().Shift(req.Shift.DurationMinutes, req.Shift.StartTime)

	fresh, err := newTestScheduler().Schedule(req.Parts, req.Machines, shift, nil)
	require.NoError(t, err)

	// lock nothing so every task is rescheduled from minute 0
	rules := DefaultRules()
	rules.LockInMinutes = 0
	empty := &model.Plan{Tasks: []model.Task{}}
	again, err := NewReplanner(rules, zerolog.Nop()).Replan(empty, req.Parts, req.Machines, shift, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, fresh.Tasks, again.Tasks)
	assert.Zero(t, again.Spec.LockedTasks)
}

func TestReplanFreshPlanAtShiftStartIsUnchanged(t *testing.T) {
	req := sample.Request()
	shift := DefaultRules().Shift(req.Shift.DurationMinutes, req.Shift.StartTime)

	fresh, err := newTestScheduler().Schedule(req.Parts, req.Machines, shift, nil)
	require.NoError(t, err)

	again, err := NewReplanner(DefaultRules(), zerolog.Nop()).Replan(fresh, req.Parts, req.Machines, shift, nil, 0)
	require.NoError(t, err)

	assert.Positive(t, again.Spec.LockedTasks)
	assert.Less(t, again.Spec.LockedTasks, len(fresh.Tasks))
	assert.Equal(t, fresh.Tasks, again.Tasks)
}

func TestReplanPreconditions(t *testing.T) {
	parts, machines := singlePressFloor()
	previous, err := newTestScheduler().Schedule(parts, machines, shift540(), nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		previous *model.Plan
		elapsed  int
	}{
		{name: "no previous plan", previous: nil, elapsed: 10},
		{name: "before shift start", previous: previous, elapsed: -1},
		{name: "after shift end", previous: previous, elapsed: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := NewReplanner(DefaultRules(), zerolog.Nop()).Replan(tt.previous, parts, machines, shift540(), nil, tt.elapsed)
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, ErrReplanPrecondition)
		})
	}
}

func TestLockTasks(t *testing.T) {
	tasks := []model.Task{
		{PartName: "A", OperationName: "Blank", MachineName: "M", StartTime: 0, EndTime: 5, Kind: model.KindDieSetting},
		{PartName: "A", OperationName: "Blank", MachineName: "M", StartTime: 5, EndTime: 25, Kind: model.KindProduction, Quantity: 100},
		{PartName: "B", OperationName: "Blank", MachineName: "M", StartTime: 70, EndTime: 75, Kind: model.KindDieSetting},
		{PartName: "B", OperationName: "Blank", MachineName: "M", StartTime: 75, EndTime: 95, Kind: model.KindProduction, Quantity: 100},
		{PartName: "C", OperationName: "Blank", MachineName: "M", StartTime: 105, EndTime: 110, Kind: model.KindDieSetting},
		{PartName: "C", OperationName: "Blank", MachineName: "M", StartTime: 110, EndTime: 130, Kind: model.KindProduction, Quantity: 100},
	}

	lock := LockTasks(tasks, 30, 45)
	assert.Equal(t, 75, lock.Until)
	assert.Equal(t, tasks[:4], lock.Locked)
	assert.Equal(t, tasks[4:], lock.Open)

	lock = LockTasks(tasks, 0, 0)
	assert.Empty(t, lock.Locked)
	assert.Len(t, lock.Open, 6)
}
