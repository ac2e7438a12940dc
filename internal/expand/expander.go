package expand

import (
	"sort"

	"github.com/sourceplane/pressplan/internal/model"
)

// Job is one part's pending work: the operations to run and the quantity to press
type Job struct {
	Part       model.Part
	Operations []model.Operation
	Quantity   int
	Position   int
}

// WorkList is the priority-ordered set of jobs plus the parts that need no work
type WorkList struct {
	Jobs []Job
	Done []model.Part
}

// Expander turns parts into scheduling jobs
type Expander struct {
	parts []model.Part
}

// NewExpander creates a new expander
func NewExpander(parts []model.Part) *Expander {
	return &Expander{parts: parts}
}

// Expand orders parts by priority, keeping input order on ties, and drops
// every part with nothing left to produce.
func (e *Expander) Expand() WorkList {
	var list WorkList

	for i, part := range e.parts {
		remaining := part.RemainingQuantity()
		if remaining <= 0 {
			list.Done = append(list.Done, part)
			continue
		}

		list.Jobs = append(list.Jobs, Job{
			Part:       part,
			Operations: SelectOperations(part),
			Quantity:   remaining,
			Position:   i,
		})
	}

	sort.SliceStable(list.Jobs, func(i, j int) bool {
		return list.Jobs[i].Part.Priority < list.Jobs[j].Part.Priority
	})

	return list
}
