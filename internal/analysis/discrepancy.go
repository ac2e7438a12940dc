package analysis

import (
	"fmt"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/timeline"
)

// Thresholds rate a capacity jump. A rule fires when either the absolute gap
// in tons or the actual/ideal ratio reaches it.
type Thresholds struct {
	HighGap     int
	HighRatio   float64
	MediumGap   int
	MediumRatio float64
}

// DefaultThresholds returns the standard severity cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighGap:     60,
		HighRatio:   6,
		MediumGap:   30,
		MediumRatio: 3,
	}
}

// Validate checks that High cutoffs are not below Medium ones
func (t Thresholds) Validate() error {
	if t.MediumGap <= 0 || t.MediumRatio <= 1 {
		return fmt.Errorf("medium thresholds must be positive (gap %d, ratio %.2f)", t.MediumGap, t.MediumRatio)
	}
	if t.HighGap < t.MediumGap || t.HighRatio < t.MediumRatio {
		return fmt.Errorf("high thresholds must not be below medium thresholds")
	}
	return nil
}

// Severity rates running an ideal-capacity operation on an actual-capacity press.
func (t Thresholds) Severity(ideal, actual int) model.Severity {
	gap := actual - ideal
	ratio := float64(actual) / float64(max(ideal, 1))
	switch {
	case gap >= t.HighGap || ratio >= t.HighRatio:
		return model.SeverityHigh
	case gap >= t.MediumGap || ratio >= t.MediumRatio:
		return model.SeverityMedium
	}
	return model.SeverityLow
}

// RemovalFunc returns the die removal minutes after production on a press
// of the given capacity.
type RemovalFunc func(capacity int) int

// FindDiscrepancies flags every production task that runs on a press larger
// than its operation requires. removal may be nil when no removal time is
// kept between runs.
func FindDiscrepancies(plan *model.Plan, parts []model.Part, machines []model.Machine, thresholds Thresholds, removal RemovalFunc) []model.Discrepancy {
	partsByName := make(map[string]model.Part, len(parts))
	for _, p := range parts {
		partsByName[p.Name] = p
	}
	machinesByName := make(map[string]model.Machine, len(machines))
	for _, m := range machines {
		if _, dup := machinesByName[m.Name]; !dup {
			machinesByName[m.Name] = m
		}
	}

	n := newNarrator(plan, machines, removal)
	result := make([]model.Discrepancy, 0)
	for _, t := range plan.Tasks {
		if t.Kind != model.KindProduction {
			continue
		}
		part, ok := partsByName[t.PartName]
		if !ok {
			continue
		}
		op, ok := findOperation(part, t.OperationName)
		if !ok {
			continue
		}
		actual, ok := machinesByName[t.MachineName]
		if !ok {
			continue
		}
		ideal := op.LowestPress.Capacity
		if actual.Capacity <= ideal {
			continue
		}

		result = append(result, model.Discrepancy{
			PartName:              t.PartName,
			OperationName:         t.OperationName,
			IdealMachineName:      idealMachineName(op.LowestPress, machines),
			IdealMachineCapacity:  ideal,
			ActualMachineName:     actual.Name,
			ActualMachineCapacity: actual.Capacity,
			StartTime:             t.StartTime,
			Reason:                n.reason(t, ideal, actual),
			Severity:              thresholds.Severity(ideal, actual.Capacity),
		})
	}
	return result
}

func findOperation(p model.Part, name string) (model.Operation, bool) {
	for _, op := range p.Operations {
		if op.StepName == name {
			return op, true
		}
	}
	return model.Operation{}, false
}

// idealMachineName prefers the press named by the operation, then a press of
// exactly the required capacity.
func idealMachineName(req model.Tonnage, machines []model.Machine) string {
	if req.Press != "" {
		return req.Press
	}
	for _, m := range machines {
		if m.Capacity == req.Capacity {
			return m.Name
		}
	}
	return req.Label()
}

// narrator explains, best effort, why a smaller press was not used
type narrator struct {
	plan     *model.Plan
	machines []model.Machine
	shift    model.Shift
	removal  RemovalFunc
}

func newNarrator(plan *model.Plan, machines []model.Machine, removal RemovalFunc) *narrator {
	if removal == nil {
		removal = func(int) int { return 0 }
	}
	return &narrator{
		plan:     plan,
		machines: machines,
		removal:  removal,
		shift: model.Shift{
			DurationMinutes: plan.Spec.ShiftDurationMinutes,
			BreakMinutes:    plan.Spec.BreakEnd - plan.Spec.BreakStart,
		},
	}
}

func (n *narrator) reason(prod model.Task, ideal int, actual model.Machine) string {
	at := prod.StartTime
	for _, t := range n.plan.Tasks {
		if t.Kind == model.KindDieSetting && t.PartName == prod.PartName &&
			t.OperationName == prod.OperationName && t.MachineName == prod.MachineName && t.EndTime == prod.StartTime {
			at = t.StartTime
			break
		}
	}

	var smaller []model.Machine
	for _, m := range n.machines {
		if m.Capacity >= ideal && m.Capacity < actual.Capacity {
			smaller = append(smaller, m)
		}
	}
	if len(smaller) == 0 {
		return fmt.Sprintf("No press between %dT and %dT exists; %s was the smallest suitable press.", ideal, actual.Capacity, actual.Name)
	}

	eligible := model.EligibleMachines(smaller, ideal)
	if len(eligible) == 0 {
		return fmt.Sprintf("%s is unavailable for the shift.", smaller[0].Name)
	}

	m := eligible[0]
	for _, t := range n.plan.TasksOn(m.Name) {
		if t.StartTime <= at && at < t.EndTime {
			return fmt.Sprintf("Ideal machine %s was busy performing %s - %s.", m.Name, t.PartName, t.OperationName)
		}
		if t.Kind == model.KindProduction && t.EndTime <= at && at < t.EndTime+n.removal(m.Capacity) {
			return fmt.Sprintf("Ideal machine %s was removing the die after %s - %s.", m.Name, t.PartName, t.OperationName)
		}
	}

	if b, ok := timeline.New(m, n.shift, nil).BlockedAt(at); ok {
		switch b.Kind {
		case timeline.BlockDowntime:
			return fmt.Sprintf("Ideal machine %s was in planned downtime until minute %d.", m.Name, b.End)
		case timeline.BlockBreak:
			return fmt.Sprintf("The shift break ran until minute %d.", b.End)
		default:
			return fmt.Sprintf("Ideal machine %s was unavailable until minute %d.", m.Name, b.End)
		}
	}

	if len(eligible) > 1 {
		return "All ideal capacity machines were occupied."
	}
	return fmt.Sprintf("Ideal machine %s had no free slot long enough for the operation.", m.Name)
}
