package expand

import (
	"github.com/sourceplane/pressplan/internal/model"
)

// SelectOperations returns the part's operations restricted to its selected
// step names, in process order. An empty selection keeps every operation.
func SelectOperations(part model.Part) []model.Operation {
	if len(part.SelectedOperations) == 0 {
		return part.Operations
	}

	selected := make(map[string]bool, len(part.SelectedOperations))
	for _, name := range part.SelectedOperations {
		selected[name] = true
	}

	ops := make([]model.Operation, 0, len(part.SelectedOperations))
	for _, op := range part.Operations {
		if selected[op.StepName] {
			ops = append(ops, op)
		}
	}
	return ops
}

// UnknownSelections lists selected names that match no operation of the part.
func UnknownSelections(part model.Part) []string {
	known := make(map[string]bool, len(part.Operations))
	for _, op := range part.Operations {
		known[op.StepName] = true
	}

	var unknown []string
	for _, name := range part.SelectedOperations {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
