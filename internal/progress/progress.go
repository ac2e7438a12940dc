package progress

import (
	"fmt"
	"io"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
)

// Snapshot is the estimated floor state at a shift minute
type Snapshot struct {
	At        int
	Completed map[string]int
	Running   []model.Task
	Finished  int
	Pending   int
}

// Simulator replays a plan up to a shift minute
type Simulator struct {
	Stdout  io.Writer
	Verbose bool
}

func NewSimulator(stdout io.Writer, verbose bool) *Simulator {
	return &Simulator{
		Stdout:  stdout,
		Verbose: verbose,
	}
}

// Run walks the plan's tasks in start order up to minute at.
func (s *Simulator) Run(plan *model.Plan, parts []model.Part, at int) (*Snapshot, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan cannot be nil")
	}
	if at < 0 || at > plan.Spec.ShiftDurationMinutes {
		return nil, fmt.Errorf("minute %d is outside the %d-minute shift", at, plan.Spec.ShiftDurationMinutes)
	}

	snap := &Snapshot{
		At:        at,
		Completed: Estimate(plan, parts, at),
	}

	tasks := append([]model.Task(nil), plan.Tasks...)
	model.SortTasks(tasks)

	for _, t := range tasks {
		switch {
		case t.EndTime <= at:
			snap.Finished++
			s.logf("→ %s %-11s %s/%s on %s done\n", plan.Clock(t.StartTime), t.Kind, t.PartName, t.OperationName, t.MachineName)
		case t.StartTime < at:
			snap.Running = append(snap.Running, t)
			if t.Kind == model.KindProduction {
				s.logf("→ %s %-11s %s/%s on %s running (%d/%d)\n", plan.Clock(t.StartTime), t.Kind, t.PartName, t.OperationName,
					t.MachineName, unitsBy(t, at), t.Quantity)
			} else {
				s.logf("→ %s %-11s %s/%s on %s running\n", plan.Clock(t.StartTime), t.Kind, t.PartName, t.OperationName, t.MachineName)
			}
		default:
			snap.Pending++
		}
	}

	return snap, nil
}

func (s *Simulator) logf(format string, args ...any) {
	if s.Verbose && s.Stdout != nil {
		fmt.Fprintf(s.Stdout, format, args...)
	}
}

// Estimate returns, per part, the units that have passed the part's last
// selected operation by minute at. Output grows linearly inside a
// production task.
func Estimate(plan *model.Plan, parts []model.Part, at int) map[string]int {
	final := make(map[string]string, len(parts))
	for _, p := range parts {
		ops := expand.SelectOperations(p)
		if len(ops) > 0 {
			final[p.Name] = ops[len(ops)-1].StepName
		}
	}

	completed := make(map[string]int, len(parts))
	for _, p := range parts {
		completed[p.Name] = 0
	}
	for _, t := range plan.Tasks {
		if t.Kind != model.KindProduction {
			continue
		}
		if last, ok := final[t.PartName]; !ok || last != t.OperationName {
			continue
		}
		completed[t.PartName] += unitsBy(t, at)
	}
	return completed
}

// Since returns, per part, the units completed between minute from and
// minute to.
func Since(plan *model.Plan, parts []model.Part, from, to int) map[string]int {
	before := Estimate(plan, parts, from)
	after := Estimate(plan, parts, to)
	for name, n := range after {
		after[name] = max(0, n-before[name])
	}
	return after
}

// Start is the minute a plan's own production counts from: its replan
// point, or the start of the shift.
func Start(plan *model.Plan) int {
	if plan.Spec.ReplannedAt != nil {
		return *plan.Spec.ReplannedAt
	}
	return 0
}

// Apply adds produced units to the counts in base, capped at each part's
// target. Parts missing from base count from their own alreadyProduced. A
// supplied count higher than the estimate is kept.
func Apply(parts, base []model.Part, produced map[string]int) []model.Part {
	counts := make(map[string]int, len(base))
	for _, p := range base {
		counts[p.Name] = p.AlreadyProduced
	}

	out := make([]model.Part, len(parts))
	for i, p := range parts {
		n, ok := counts[p.Name]
		if !ok {
			n = p.AlreadyProduced
		}
		n += produced[p.Name]
		if p.TargetQuantity > 0 {
			n = min(n, p.TargetQuantity)
		}
		p.AlreadyProduced = max(p.AlreadyProduced, n)
		out[i] = p
	}
	return out
}

func unitsBy(t model.Task, at int) int {
	switch {
	case at <= t.StartTime:
		return 0
	case at >= t.EndTime:
		return t.Quantity
	}
	return t.Quantity * (at - t.StartTime) / t.Duration()
}
