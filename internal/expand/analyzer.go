package expand

import (
	"slices"

	"github.com/sourceplane/pressplan/internal/model"
)

// PartAnalyzer provides a read-only view of parts against the machine floor
type PartAnalyzer struct {
	parts    []model.Part
	machines []model.Machine
}

// PartSummary is a part with its resolved operations and workload
type PartSummary struct {
	Name            string
	ID              string
	Description     string
	Priority        int
	TargetQuantity  int
	AlreadyProduced int
	Remaining       int
	Operations      []OperationSummary
	MachineMinutes  int
}

// OperationSummary describes one operation of a part
type OperationSummary struct {
	Operation         model.Operation
	Selected          bool
	ProductionMinutes int
	Eligible          []string
}

// NewPartAnalyzer creates a new part analyzer
func NewPartAnalyzer(parts []model.Part, machines []model.Machine) *PartAnalyzer {
	return &PartAnalyzer{parts: parts, machines: machines}
}

// ListAll returns every part in scheduling order
func (pa *PartAnalyzer) ListAll() []*PartSummary {
	ordered := slices.Clone(pa.parts)
	slices.SortStableFunc(ordered, func(a, b model.Part) int {
		return a.Priority - b.Priority
	})

	result := make([]*PartSummary, 0, len(ordered))
	for _, p := range ordered {
		result = append(result, pa.Summarize(p))
	}
	return result
}

// Summarize resolves operations and sums the die setting plus production
// minutes the selected operations need for the remaining quantity.
func (pa *PartAnalyzer) Summarize(p model.Part) *PartSummary {
	s := &PartSummary{
		Name:            p.Name,
		ID:              p.ID,
		Description:     p.Description,
		Priority:        p.Priority,
		TargetQuantity:  p.TargetQuantity,
		AlreadyProduced: p.AlreadyProduced,
		Remaining:       p.RemainingQuantity(),
	}

	selected := make(map[string]bool)
	for _, op := range SelectOperations(p) {
		selected[op.StepName] = true
	}

	for _, op := range p.Operations {
		opSum := OperationSummary{
			Operation:         op,
			Selected:          selected[op.StepName],
			ProductionMinutes: op.ProductionMinutes(s.Remaining),
		}
		for _, m := range model.EligibleMachines(pa.machines, op.LowestPress.Capacity) {
			opSum.Eligible = append(opSum.Eligible, m.Name)
		}
		if opSum.Selected && s.Remaining > 0 {
			s.MachineMinutes += op.DieSettingTime + opSum.ProductionMinutes
		}
		s.Operations = append(s.Operations, opSum)
	}

	return s
}
