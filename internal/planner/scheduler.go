package planner

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/timeline"
)

// Scheduler assigns operations to presses with priority-ordered list scheduling
type Scheduler struct {
	rules  Rules
	logger zerolog.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(rules Rules, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		rules:  rules,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Schedule builds a fresh plan for the shift. Parts with nothing left to
// produce are left out; an operation that cannot be placed stops its part
// and is reported in the summary.
func (s *Scheduler) Schedule(parts []model.Part, machines []model.Machine, shift model.Shift, constraints []model.Constraint) (*model.Plan, error) {
	started := time.Now()

	for _, p := range parts {
		if p.TargetQuantity <= 0 {
			return nil, InvalidInput(MissingQuantityMessage)
		}
	}
	if shift.DurationMinutes <= 0 {
		return nil, InvalidInput(fmt.Sprintf("shift duration must be greater than 0, got %d", shift.DurationMinutes))
	}

	p := newPass(s.rules, s.logger, machines, shift, constraints)
	work := expand.NewExpander(parts).Expand()

	outcomes := make([]model.PartOutcome, 0, len(parts))
	for _, job := range work.Jobs {
		outcomes = append(outcomes, p.scheduleJob(job, job.Operations, 0))
	}
	for _, part := range work.Done {
		outcomes = append(outcomes, doneOutcome(part))
	}

	plan := newPlan(shift, p.tasks, outcomes)
	plan.Summary = freshSummary(plan, len(machines))

	s.logger.Info().
		Int("tasks", len(plan.Tasks)).
		Int("parts", len(work.Jobs)).
		Int("partial", countPartial(outcomes)).
		Dur("took", time.Since(started)).
		Msg("schedule complete")

	return plan, nil
}

// candidate is a feasible start for an operation on one press
type candidate struct {
	line  *timeline.Timeline
	start int
}

// pass owns the machine timelines for one scheduling run
type pass struct {
	rules  Rules
	logger zerolog.Logger
	lines  map[string]*timeline.Timeline
	floor  []model.Machine
	tasks  []model.Task
}

func newPass(rules Rules, logger zerolog.Logger, machines []model.Machine, shift model.Shift, constraints []model.Constraint) *pass {
	extra := make(map[string][]model.Window)
	for _, c := range constraints {
		extra[c.MachineName] = append(extra[c.MachineName], c.Window())
	}

	p := &pass{
		rules:  rules,
		logger: logger,
		lines:  make(map[string]*timeline.Timeline, len(machines)),
	}
	for _, m := range machines {
		if _, dup := p.lines[m.Name]; dup {
			continue
		}
		p.lines[m.Name] = timeline.New(m, shift, extra[m.Name])
		p.floor = append(p.floor, m)
	}
	return p
}

// pool returns the timelines able to run an operation, tightest press first.
func (p *pass) pool(capacity int) []*timeline.Timeline {
	eligible := model.EligibleMachines(p.floor, capacity)
	lines := make([]*timeline.Timeline, 0, len(eligible))
	for _, m := range eligible {
		lines = append(lines, p.lines[m.Name])
	}
	return lines
}

// pick returns the first candidate in pool order whose start is within the
// size tolerance of the earliest start. With zero tolerance this is the
// globally earliest start, ties going to the smaller press.
func pick(cands []candidate, tolerance int) (candidate, bool) {
	if len(cands) == 0 {
		return candidate{}, false
	}
	best := cands[0].start
	for _, c := range cands[1:] {
		best = min(best, c.start)
	}
	for _, c := range cands {
		if c.start <= best+tolerance {
			return c, true
		}
	}
	return candidate{}, false
}

// scheduleJob places ops in sequence starting no earlier than ready.
// lockedOps counts operations of the part already covered by locked tasks.
func (p *pass) scheduleJob(job expand.Job, ops []model.Operation, ready int) model.PartOutcome {
	total := len(job.Operations)
	lockedOps := total - len(ops)

	outcome := model.PartOutcome{
		PartName:            job.Part.Name,
		RemainingQuantity:   job.Quantity,
		TotalOperations:     total,
		ScheduledOperations: lockedOps,
	}
	if total == 0 {
		outcome.Status = model.OutcomeUnscheduled
		outcome.Reason = "no operations selected"
		return outcome
	}

	for _, op := range ops {
		end, reason := p.place(job.Part.Name, op, job.Quantity, ready)
		if reason != "" {
			outcome.Reason = reason
			p.logger.Debug().
				Str("part", job.Part.Name).
				Str("operation", op.StepName).
				Str("reason", reason).
				Msg("operation skipped")
			break
		}
		outcome.ScheduledOperations++
		ready = end
	}

	switch {
	case outcome.ScheduledOperations == total:
		outcome.Status = model.OutcomeComplete
		outcome.UnitsCompleted = job.Quantity
	case outcome.ScheduledOperations == 0:
		outcome.Status = model.OutcomeUnscheduled
	default:
		outcome.Status = model.OutcomePartial
	}
	return outcome
}

// place schedules one operation and returns the end of its production task,
// or a reason when it cannot be placed.
func (p *pass) place(part string, op model.Operation, quantity, ready int) (int, string) {
	pool := p.pool(op.LowestPress.Capacity)
	if len(pool) == 0 {
		return 0, fmt.Sprintf("no available press of at least %s for %s", op.LowestPress.Label(), op.StepName)
	}

	setup := op.DieSettingTime
	run := op.ProductionMinutes(quantity)

	cands := make([]candidate, 0, len(pool))
	for _, line := range pool {
		if start, ok := line.EarliestStart(ready, setup+run); ok {
			cands = append(cands, candidate{line: line, start: start})
		}
	}

	chosen, ok := pick(cands, p.rules.SizeToleranceMinutes)
	if !ok {
		return 0, fmt.Sprintf("%s does not fit before the end of the shift", op.StepName)
	}

	machine := chosen.line.Machine()
	setupEnd := chosen.start + setup
	end := setupEnd + run
	if err := chosen.line.Reserve(chosen.start, end, p.rules.RemovalBuffer(machine.Capacity)); err != nil {
		return 0, err.Error()
	}

	p.tasks = append(p.tasks,
		model.Task{
			PartName:      part,
			OperationName: op.StepName,
			MachineName:   machine.Name,
			Quantity:      0,
			StartTime:     chosen.start,
			EndTime:       setupEnd,
			Kind:          model.KindDieSetting,
		},
		model.Task{
			PartName:      part,
			OperationName: op.StepName,
			MachineName:   machine.Name,
			Quantity:      quantity,
			StartTime:     setupEnd,
			EndTime:       end,
			Kind:          model.KindProduction,
		},
	)

	p.logger.Debug().
		Str("part", part).
		Str("operation", op.StepName).
		Str("machine", machine.Name).
		Int("start", chosen.start).
		Int("end", end).
		Msg("operation placed")

	return end, ""
}

func doneOutcome(part model.Part) model.PartOutcome {
	return model.PartOutcome{
		PartName:        part.Name,
		Status:          model.OutcomeDone,
		TotalOperations: len(expand.SelectOperations(part)),
		Reason:          "target quantity already produced",
	}
}

func newPlan(shift model.Shift, tasks []model.Task, outcomes []model.PartOutcome) *model.Plan {
	brk := shift.BreakWindow()
	model.SortTasks(tasks)
	if tasks == nil {
		tasks = []model.Task{}
	}
	return &model.Plan{
		APIVersion: model.APIVersion,
		Kind:       model.KindPlan,
		Spec: model.PlanSpec{
			ShiftDurationMinutes: shift.DurationMinutes,
			StartTime:            shift.StartTime,
			BreakStart:           brk.Start,
			BreakEnd:             brk.End,
		},
		Tasks: tasks,
		Parts: outcomes,
	}
}

func countPartial(outcomes []model.PartOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == model.OutcomePartial || o.Status == model.OutcomeUnscheduled {
			n++
		}
	}
	return n
}
