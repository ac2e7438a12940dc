package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sourceplane/pressplan/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════\n"

// PlanViewer provides human-readable views of a plan
type PlanViewer struct {
	plan     *model.Plan
	machines []model.Machine
}

// NewPlanViewer creates a new plan viewer; machines adds idle presses and capacities
func NewPlanViewer(plan *model.Plan, machines []model.Machine) *PlanViewer {
	return &PlanViewer{plan: plan, machines: machines}
}

// View renders one of the named views: machines, parts or timeline
func (pv *PlanViewer) View(name string) (string, error) {
	switch name {
	case "machines", "machine":
		return pv.ViewMachines(), nil
	case "parts", "part":
		return pv.ViewParts(), nil
	case "timeline":
		return pv.ViewTimeline(), nil
	}
	return "", fmt.Errorf("unknown view %q (want machines, parts or timeline)", name)
}

// ViewMachines returns a tree of tasks per machine
func (pv *PlanViewer) ViewMachines() string {
	names := pv.machineNames()
	if len(names) == 0 {
		return "No machines in plan"
	}

	capacity := make(map[string]int, len(pv.machines))
	for _, m := range pv.machines {
		capacity[m.Name] = m.Capacity
	}

	var sb strings.Builder
	for i, name := range names {
		last := i == len(names)-1
		prefix, connector := "├─ ", "│  "
		if last {
			prefix, connector = "└─ ", "   "
		}

		header := name
		if c, ok := capacity[name]; ok {
			header = fmt.Sprintf("%s [%dT]", name, c)
		}
		tasks := pv.plan.TasksOn(name)
		if len(tasks) == 0 {
			fmt.Fprintf(&sb, "%s%s (idle)\n", prefix, header)
			continue
		}
		fmt.Fprintf(&sb, "%s%s\n", prefix, header)

		for j, t := range tasks {
			taskPrefix := connector + "├─ "
			if j == len(tasks)-1 {
				taskPrefix = connector + "└─ "
			}
			fmt.Fprintf(&sb, "%s%s %s / %s%s\n", taskPrefix, pv.span(t), t.PartName, t.OperationName, quantity(t))
		}
	}

	sb.WriteString(rule)
	fmt.Fprintf(&sb, "Summary: %d machines, %d tasks\n", len(names), len(pv.plan.Tasks))
	return sb.String()
}

// ViewParts returns each part's operations in process order
func (pv *PlanViewer) ViewParts() string {
	if len(pv.plan.Parts) == 0 && len(pv.plan.Tasks) == 0 {
		return "No parts in plan"
	}

	var names []string
	seen := make(map[string]bool)
	for _, o := range pv.plan.Parts {
		if !seen[o.PartName] {
			seen[o.PartName] = true
			names = append(names, o.PartName)
		}
	}
	for _, t := range pv.plan.Tasks {
		if !seen[t.PartName] {
			seen[t.PartName] = true
			names = append(names, t.PartName)
		}
	}

	outcomes := make(map[string]model.PartOutcome, len(pv.plan.Parts))
	for _, o := range pv.plan.Parts {
		outcomes[o.PartName] = o
	}

	var sb strings.Builder
	for i, name := range names {
		last := i == len(names)-1
		prefix, connector := "├─ ", "│  "
		if last {
			prefix, connector = "└─ ", "   "
		}

		header := name
		if o, ok := outcomes[name]; ok {
			header = fmt.Sprintf("%s [%s %d/%d]", name, o.Status, o.ScheduledOperations, o.TotalOperations)
		}
		fmt.Fprintf(&sb, "%s%s\n", prefix, header)

		tasks := pv.plan.TasksFor(name)
		for j, t := range tasks {
			taskPrefix := connector + "├─ "
			if j == len(tasks)-1 {
				taskPrefix = connector + "└─ "
			}
			fmt.Fprintf(&sb, "%s%s %s on %s%s\n", taskPrefix, pv.span(t), t.OperationName, t.MachineName, quantity(t))
		}
		if o, ok := outcomes[name]; ok && o.Reason != "" && o.Status != model.OutcomeComplete {
			fmt.Fprintf(&sb, "%s(%s)\n", connector+"   ", o.Reason)
		}
	}

	sb.WriteString(rule)
	fmt.Fprintf(&sb, "Summary: %d parts, %d tasks\n", len(names), len(pv.plan.Tasks))
	return sb.String()
}

// ViewTimeline lists every task in start order with the break marked
func (pv *PlanViewer) ViewTimeline() string {
	if len(pv.plan.Tasks) == 0 {
		return "No tasks in plan"
	}

	tasks := append([]model.Task(nil), pv.plan.Tasks...)
	model.SortTasks(tasks)

	var sb strings.Builder
	brk := model.Window{Start: pv.plan.Spec.BreakStart, End: pv.plan.Spec.BreakEnd}
	breakShown := brk.Length() == 0
	for _, t := range tasks {
		if !breakShown && t.StartTime >= brk.Start {
			fmt.Fprintf(&sb, "%s-%s ── break ──\n", pv.plan.Clock(brk.Start), pv.plan.Clock(brk.End))
			breakShown = true
		}
		fmt.Fprintf(&sb, "%s %-12s %-11s %s / %s%s\n", pv.span(t), t.MachineName, t.Kind, t.PartName, t.OperationName, quantity(t))
	}
	if !breakShown {
		fmt.Fprintf(&sb, "%s-%s ── break ──\n", pv.plan.Clock(brk.Start), pv.plan.Clock(brk.End))
	}

	sb.WriteString(rule)
	fmt.Fprintf(&sb, "Shift: %s-%s, %d tasks\n", pv.plan.Clock(0), pv.plan.Clock(pv.plan.Spec.ShiftDurationMinutes), len(tasks))
	return sb.String()
}

func (pv *PlanViewer) machineNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range pv.machines {
		if !seen[m.Name] {
			seen[m.Name] = true
			names = append(names, m.Name)
		}
	}

	var extra []string
	for _, t := range pv.plan.Tasks {
		if !seen[t.MachineName] {
			seen[t.MachineName] = true
			extra = append(extra, t.MachineName)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (pv *PlanViewer) span(t model.Task) string {
	return fmt.Sprintf("%s-%s", pv.plan.Clock(t.StartTime), pv.plan.Clock(t.EndTime))
}

func quantity(t model.Task) string {
	if t.Kind == model.KindProduction {
		return fmt.Sprintf(" ×%d", t.Quantity)
	}
	return " (die setting)"
}
