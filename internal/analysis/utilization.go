package analysis

import (
	"math"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
)

// MachineUtilization reports busy and idle minutes for every machine, including
// machines with no tasks.
func MachineUtilization(plan *model.Plan, machines []model.Machine, shiftDuration int) []model.MachineUtilization {
	busy := make(map[string]int)
	for _, t := range plan.Tasks {
		busy[t.MachineName] += t.Duration()
	}

	result := make([]model.MachineUtilization, 0, len(machines))
	for _, m := range machines {
		b := busy[m.Name]
		u := model.MachineUtilization{
			MachineName: m.Name,
			Capacity:    m.Capacity,
			TotalTime:   shiftDuration,
			BusyTime:    b,
			IdleTime:    shiftDuration - b,
		}
		if shiftDuration > 0 {
			u.UtilizationPct = round2(100 * float64(b) / float64(shiftDuration))
		}
		result = append(result, u)
	}
	return result
}

// PartProduction sums the production quantity of each part's tasks against its target.
func PartProduction(plan *model.Plan, parts []model.Part) []model.PartProduction {
	produced := make(map[string]int)
	perOp := make(map[string]map[string]int)
	for _, t := range plan.Tasks {
		if t.Kind != model.KindProduction {
			continue
		}
		produced[t.PartName] += t.Quantity
		if perOp[t.PartName] == nil {
			perOp[t.PartName] = make(map[string]int)
		}
		perOp[t.PartName][t.OperationName] += t.Quantity
	}

	result := make([]model.PartProduction, 0, len(parts))
	for _, p := range parts {
		result = append(result, model.PartProduction{
			PartName:         p.Name,
			QuantityProduced: produced[p.Name],
			CompletedUnits:   completedUnits(p, perOp[p.Name]),
			TargetQuantity:   p.TargetQuantity,
			Operations:       p.Operations,
		})
	}
	return result
}

// completedUnits is the quantity that passes every selected operation.
func completedUnits(p model.Part, perOp map[string]int) int {
	ops := expand.SelectOperations(p)
	if len(ops) == 0 {
		return 0
	}
	units := math.MaxInt
	for _, op := range ops {
		units = min(units, perOp[op.StepName])
	}
	return units
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
