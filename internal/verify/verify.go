package verify

import (
	"fmt"
	"strings"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
)

// Rule names a plan property
type Rule string

const (
	RuleShiftBoundary Rule = "shift-boundary"
	RuleBreak         Rule = "break-window"
	RuleDowntime      Rule = "downtime"
	RuleUnavailable   Rule = "unavailable"
	RuleOverlap       Rule = "double-booking"
	RuleAdjacency     Rule = "setup-adjacency"
	RuleRemoval       Rule = "die-removal"
	RuleSequencing    Rule = "sequencing"
	RuleCapacity      Rule = "capacity"
	RuleReference     Rule = "unknown-reference"
	RuleLockIn        Rule = "lock-in"
)

// Violation is one broken property
type Violation struct {
	Rule    Rule   `yaml:"rule" json:"rule"`
	Message string `yaml:"message" json:"message"`
}

// Result is the outcome of checking a plan
type Result struct {
	Tasks      int         `yaml:"tasks" json:"tasks"`
	Violations []Violation `yaml:"violations" json:"violations"`
}

// OK reports whether no property was violated.
func (r *Result) OK() bool {
	return len(r.Violations) == 0
}

// Count returns the number of violations of a rule.
func (r *Result) Count(rule Rule) int {
	n := 0
	for _, v := range r.Violations {
		if v.Rule == rule {
			n++
		}
	}
	return n
}

func (r *Result) Error() string {
	lines := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		lines = append(lines, fmt.Sprintf("  - [%s] %s", v.Rule, v.Message))
	}
	return fmt.Sprintf("plan has %d violation(s):\n%s", len(r.Violations), strings.Join(lines, "\n"))
}

func (r *Result) add(rule Rule, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

// Verifier checks plans against the floor they were built for
type Verifier struct {
	rules planner.Rules
}

// NewVerifier creates a new verifier
func NewVerifier(rules planner.Rules) *Verifier {
	return &Verifier{rules: rules}
}

// Verify checks every task of plan. Parts and machines are the request the
// plan was built from; constraints are the caller's extra unavailability.
func (v *Verifier) Verify(plan *model.Plan, parts []model.Part, machines []model.Machine, constraints []model.Constraint) *Result {
	res := &Result{Tasks: len(plan.Tasks), Violations: make([]Violation, 0)}

	machinesByName := make(map[string]model.Machine, len(machines))
	for _, m := range machines {
		machinesByName[m.Name] = m
	}
	partsByName := make(map[string]model.Part, len(parts))
	for _, p := range parts {
		partsByName[p.Name] = p
	}

	shiftLen := plan.Spec.ShiftDurationMinutes
	brk := model.Window{Start: plan.Spec.BreakStart, End: plan.Spec.BreakEnd}

	for _, t := range plan.Tasks {
		if t.EndTime <= t.StartTime || t.StartTime < 0 || t.EndTime > shiftLen {
			res.add(RuleShiftBoundary, "%s outside [0,%d)", describe(t), shiftLen)
		}
		if brk.Length() > 0 && brk.Overlaps(t.StartTime, t.EndTime) {
			res.add(RuleBreak, "%s overlaps break %s", describe(t), brk)
		}

		m, ok := machinesByName[t.MachineName]
		if !ok {
			res.add(RuleReference, "%s uses unknown machine", describe(t))
			continue
		}
		v.checkMachine(res, t, m, constraints)

		p, ok := partsByName[t.PartName]
		if !ok {
			res.add(RuleReference, "%s belongs to unknown part", describe(t))
			continue
		}
		op, idx := operationIndex(p, t.OperationName)
		if idx < 0 {
			res.add(RuleReference, "%s uses unknown operation", describe(t))
			continue
		}
		if m.Capacity < op.LowestPress.Capacity {
			res.add(RuleCapacity, "%s needs %s but %s has %dT", describe(t), op.LowestPress.Label(), m.Name, m.Capacity)
		}
	}

	for _, m := range machines {
		v.checkSequence(res, plan.TasksOn(m.Name), m)
	}
	for _, p := range parts {
		checkPartOrder(res, plan.TasksFor(p.Name), p)
	}

	return res
}

func (v *Verifier) checkMachine(res *Result, t model.Task, m model.Machine, constraints []model.Constraint) {
	if m.DownForShift() {
		res.add(RuleDowntime, "%s on %s which is down for the shift", describe(t), m.Name)
	}
	if w, ok := m.DowntimeWindow(); ok && w.Overlaps(t.StartTime, t.EndTime) {
		res.add(RuleDowntime, "%s starts before downtime on %s ends at %d", describe(t), m.Name, w.End)
	}
	for _, w := range m.Unavailability {
		if w.Overlaps(t.StartTime, t.EndTime) {
			res.add(RuleUnavailable, "%s overlaps unavailability %s on %s", describe(t), w, m.Name)
		}
	}
	for _, c := range constraints {
		if c.MachineName == m.Name && c.Window().Overlaps(t.StartTime, t.EndTime) {
			res.add(RuleUnavailable, "%s overlaps constraint %s on %s", describe(t), c.Window(), m.Name)
		}
	}
}

// checkSequence walks one machine's tasks in start order.
func (v *Verifier) checkSequence(res *Result, tasks []model.Task, m model.Machine) {
	for i := 1; i < len(tasks); i++ {
		prev, cur := tasks[i-1], tasks[i]
		if cur.StartTime < prev.EndTime {
			res.add(RuleOverlap, "%s overlaps %s", describe(cur), describe(prev))
			continue
		}
		if prev.Kind == model.KindProduction {
			if gap := v.rules.RemovalBuffer(m.Capacity); cur.StartTime < prev.EndTime+gap {
				res.add(RuleRemoval, "%s starts %d min after %s, needs %d", describe(cur), cur.StartTime-prev.EndTime, describe(prev), gap)
			}
		}
	}

	for i, t := range tasks {
		if t.Kind != model.KindDieSetting {
			continue
		}
		if i+1 >= len(tasks) || !partners(t, tasks[i+1]) {
			res.add(RuleAdjacency, "%s is not followed immediately by its production", describe(t))
		}
	}
}

func partners(setup, prod model.Task) bool {
	return prod.Kind == model.KindProduction &&
		prod.PartName == setup.PartName &&
		prod.OperationName == setup.OperationName &&
		prod.StartTime == setup.EndTime
}

// checkPartOrder verifies that operation k+1 starts after operation k produced.
func checkPartOrder(res *Result, tasks []model.Task, p model.Part) {
	prodEnd := make(map[int]int)
	setupStart := make(map[int]int)
	for _, t := range tasks {
		_, idx := operationIndex(p, t.OperationName)
		if idx < 0 {
			continue
		}
		switch t.Kind {
		case model.KindProduction:
			prodEnd[idx] = max(prodEnd[idx], t.EndTime)
		case model.KindDieSetting:
			if s, ok := setupStart[idx]; !ok || t.StartTime < s {
				setupStart[idx] = t.StartTime
			}
		}
	}

	prev := -1
	for idx := range p.Operations {
		start, ok := setupStart[idx]
		if !ok {
			continue
		}
		if prev >= 0 && start < prodEnd[prev] {
			res.add(RuleSequencing, "%s %s starts at %d before %s ends at %d",
				p.Name, p.Operations[idx].StepName, start, p.Operations[prev].StepName, prodEnd[prev])
		}
		prev = idx
	}
}

func operationIndex(p model.Part, name string) (model.Operation, int) {
	for i, op := range p.Operations {
		if op.StepName == name {
			return op, i
		}
	}
	return model.Operation{}, -1
}

func describe(t model.Task) string {
	return fmt.Sprintf("%s %s/%s on %s [%d,%d)", t.Kind, t.PartName, t.OperationName, t.MachineName, t.StartTime, t.EndTime)
}
