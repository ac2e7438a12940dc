package planner

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
)

// Replanner revises a plan mid-shift while freezing the work about to start
type Replanner struct {
	rules  Rules
	logger zerolog.Logger
}

// NewReplanner creates a new replanner
func NewReplanner(rules Rules, logger zerolog.Logger) *Replanner {
	return &Replanner{
		rules:  rules,
		logger: logger.With().Str("component", "replanner").Logger(),
	}
}

// Lock is the split of a previous plan at a replan point
type Lock struct {
	Until  int
	Locked []model.Task
	Open   []model.Task
}

// LockTasks splits tasks at elapsed+lockIn. A task starting before that
// minute is locked, and a die setting drags its production partner along.
func LockTasks(tasks []model.Task, elapsed, lockIn int) Lock {
	lock := Lock{Until: elapsed + lockIn}

	type opKey struct{ part, op, machine string }
	lockedSetups := make(map[opKey]int)
	for _, t := range tasks {
		if t.Kind == model.KindDieSetting && t.StartTime < lock.Until {
			lockedSetups[opKey{t.PartName, t.OperationName, t.MachineName}] = t.EndTime
		}
	}

	for _, t := range tasks {
		locked := t.StartTime < lock.Until
		if !locked && t.Kind == model.KindProduction {
			end, ok := lockedSetups[opKey{t.PartName, t.OperationName, t.MachineName}]
			locked = ok && end == t.StartTime
		}
		if locked {
			lock.Locked = append(lock.Locked, t)
		} else {
			lock.Open = append(lock.Open, t)
		}
	}
	return lock
}

// Replan keeps every locked task of previous unchanged and reschedules the
// remaining quantities of parts over the rest of the shift.
func (r *Replanner) Replan(previous *model.Plan, parts []model.Part, machines []model.Machine, shift model.Shift, constraints []model.Constraint, elapsed int) (*model.Plan, error) {
	started := time.Now()

	if previous == nil {
		return nil, ReplanPrecondition("cannot replan without a previous plan")
	}
	if elapsed < 0 {
		return nil, ReplanPrecondition("replan time %d is before the start of the shift", elapsed)
	}
	if shift.DurationMinutes <= 0 {
		return nil, InvalidInput("shift duration must be greater than 0")
	}
	if elapsed > shift.DurationMinutes {
		return nil, ReplanPrecondition("replan time %d is after the end of the %d-minute shift", elapsed, shift.DurationMinutes)
	}

	lock := LockTasks(previous.Tasks, elapsed, r.rules.LockInMinutes)

	p := newPass(r.rules, r.logger, machines, shift, constraints)
	for _, t := range lock.Locked {
		line, ok := p.lines[t.MachineName]
		if !ok {
			continue
		}
		holdOff := 0
		if t.Kind == model.KindProduction {
			holdOff = r.rules.RemovalBuffer(line.Machine().Capacity)
		}
		if err := line.Reserve(t.StartTime, t.EndTime, holdOff); err != nil {
			r.logger.Warn().Err(err).Msg("locked task overlaps another locked task")
		}
	}
	for _, line := range p.lines {
		line.Seed(elapsed)
	}

	// end of the last locked production per part and operation
	type partOp struct{ part, op string }
	lockedEnd := make(map[partOp]int)
	for _, t := range lock.Locked {
		if t.Kind != model.KindProduction {
			continue
		}
		k := partOp{t.PartName, t.OperationName}
		lockedEnd[k] = max(lockedEnd[k], t.EndTime)
	}

	work := expand.NewExpander(parts).Expand()
	outcomes := make([]model.PartOutcome, 0, len(parts))
	for _, job := range work.Jobs {
		ready := elapsed
		next := 0
		for i, op := range job.Operations {
			if end, ok := lockedEnd[partOp{job.Part.Name, op.StepName}]; ok {
				next = i + 1
				ready = max(ready, end)
			}
		}
		outcomes = append(outcomes, p.scheduleJob(job, job.Operations[next:], ready))
	}
	for _, part := range work.Done {
		outcomes = append(outcomes, doneOutcome(part))
	}

	tasks := append(append([]model.Task{}, lock.Locked...), p.tasks...)
	plan := newPlan(shift, tasks, outcomes)
	plan.Metadata.ParentID = previous.Metadata.ID
	plan.Metadata.Name = previous.Metadata.Name
	plan.Spec.ReplannedAt = &elapsed
	until := lock.Until
	plan.Spec.LockedUntil = &until
	plan.Spec.LockedTasks = len(lock.Locked)
	plan.Summary = replanSummary(plan, previous, work, lock, p.tasks, elapsed)

	r.logger.Info().
		Int("elapsed", elapsed).
		Int("locked", len(lock.Locked)).
		Int("rescheduled", len(p.tasks)).
		Int("partial", countPartial(outcomes)).
		Dur("took", time.Since(started)).
		Msg("replan complete")

	return plan, nil
}
