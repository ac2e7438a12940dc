package planner

import (
	"fmt"
	"strings"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
)

func freshSummary(plan *model.Plan, machineCount int) string {
	if len(plan.Tasks) == 0 && allDone(plan.Parts) {
		return "No parts with remaining quantity to schedule."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Scheduled %d tasks for %d parts on %d machines in a %d-minute shift.\n",
		len(plan.Tasks), scheduledParts(plan.Parts), machineCount, plan.Spec.ShiftDurationMinutes)

	completed := 0
	for _, o := range plan.Parts {
		b.WriteString("- ")
		b.WriteString(outcomeLine(o))
		b.WriteString("\n")
		if o.Status == model.OutcomeComplete {
			completed++
		}
	}
	fmt.Fprintf(&b, "%d of %d parts fully completed.", completed, len(plan.Parts))
	return b.String()
}

func outcomeLine(o model.PartOutcome) string {
	switch o.Status {
	case model.OutcomeComplete:
		return fmt.Sprintf("%s: %d units completed through %d operations.", o.PartName, o.UnitsCompleted, o.TotalOperations)
	case model.OutcomePartial:
		return fmt.Sprintf("%s: partial, %d of %d operations scheduled for %d units (%s).",
			o.PartName, o.ScheduledOperations, o.TotalOperations, o.RemainingQuantity, o.Reason)
	case model.OutcomeUnscheduled:
		return fmt.Sprintf("%s: unscheduled (%s).", o.PartName, o.Reason)
	case model.OutcomeDone:
		return fmt.Sprintf("%s: target already produced, nothing scheduled.", o.PartName)
	}
	return o.PartName
}

func replanSummary(plan, previous *model.Plan, work expand.WorkList, lock Lock, placed []model.Task, elapsed int) string {
	known := make(map[string]bool)
	for _, t := range previous.Tasks {
		known[t.PartName] = true
	}
	for _, o := range previous.Parts {
		known[o.PartName] = true
	}

	rescheduled := make(map[string]bool)
	for _, t := range placed {
		rescheduled[t.PartName] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Plan adjusted at %d minutes into the shift.\n", elapsed)
	fmt.Fprintf(&b, "- Tasks before minute %d were locked and remain unchanged (%d tasks).\n", lock.Until, len(lock.Locked))

	byName := make(map[string]model.PartOutcome, len(plan.Parts))
	for _, o := range plan.Parts {
		byName[o.PartName] = o
	}

	for _, job := range work.Jobs {
		o := byName[job.Part.Name]
		if !known[job.Part.Name] {
			fmt.Fprintf(&b, "- Added new part %s with %d units.\n", job.Part.Name, job.Quantity)
		}
		switch {
		case rescheduled[job.Part.Name] && o.Status == model.OutcomeComplete:
			fmt.Fprintf(&b, "- Rescheduled %s to produce the remaining %d units.\n", job.Part.Name, job.Quantity)
		case rescheduled[job.Part.Name]:
			fmt.Fprintf(&b, "- Rescheduled %s to produce the remaining %d units, %d of %d operations fit (%s).\n",
				job.Part.Name, job.Quantity, o.ScheduledOperations, o.TotalOperations, o.Reason)
		case o.Status == model.OutcomeComplete:
			fmt.Fprintf(&b, "- %s continues on locked tasks only.\n", job.Part.Name)
		default:
			fmt.Fprintf(&b, "- %s could not be rescheduled (%s).\n", job.Part.Name, o.Reason)
		}
	}
	for _, part := range work.Done {
		fmt.Fprintf(&b, "- %s has reached its target quantity.\n", part.Name)
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func allDone(outcomes []model.PartOutcome) bool {
	for _, o := range outcomes {
		if o.Status != model.OutcomeDone {
			return false
		}
	}
	return true
}

func scheduledParts(outcomes []model.PartOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.ScheduledOperations > 0 && o.Status != model.OutcomeDone {
			n++
		}
	}
	return n
}
