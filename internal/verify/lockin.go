package verify

import (
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
)

// VerifyLockIn checks that every task of previous locked at elapsed appears
// unchanged in next.
func VerifyLockIn(previous, next *model.Plan, elapsed, lockIn int) *Result {
	res := &Result{Tasks: len(next.Tasks), Violations: make([]Violation, 0)}

	present := make(map[model.Task]int, len(next.Tasks))
	for _, t := range next.Tasks {
		present[t]++
	}

	for _, t := range planner.LockTasks(previous.Tasks, elapsed, lockIn).Locked {
		if present[t] == 0 {
			res.add(RuleLockIn, "locked %s is missing or changed", describe(t))
			continue
		}
		present[t]--
	}
	return res
}
