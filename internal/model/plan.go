package model

import (
	"cmp"
	"slices"
)

// TaskKind distinguishes die setting from production
type TaskKind string

const (
	KindDieSetting TaskKind = "Die Setting"
	KindProduction TaskKind = "Production"
)

// Task is one machine occupation in a plan
type Task struct {
	PartName      string   `yaml:"partName" json:"partName"`
	OperationName string   `yaml:"operationName" json:"operationName"`
	MachineName   string   `yaml:"machineName" json:"machineName"`
	Quantity      int      `yaml:"quantity" json:"quantity"`
	StartTime     int      `yaml:"startTime" json:"startTime"`
	EndTime       int      `yaml:"endTime" json:"endTime"`
	Kind          TaskKind `yaml:"taskType" json:"taskType"`
}

// Duration returns EndTime - StartTime.
func (t Task) Duration() int {
	return t.EndTime - t.StartTime
}

// Plan is the scheduling result for one shift
type Plan struct {
	APIVersion string        `yaml:"apiVersion" json:"apiVersion"`
	Kind       string        `yaml:"kind" json:"kind"`
	Metadata   PlanMetadata  `yaml:"metadata" json:"metadata"`
	Spec       PlanSpec      `yaml:"spec" json:"spec"`
	Tasks      []Task        `yaml:"tasks" json:"tasks"`
	Parts      []PartOutcome `yaml:"parts" json:"parts"`
	Summary    string        `yaml:"summary" json:"summary"`
}

// PlanMetadata identifies a stored plan. The engine leaves ID empty.
type PlanMetadata struct {
	ID       string `yaml:"id,omitempty" json:"id,omitempty"`
	ParentID string `yaml:"parentId,omitempty" json:"parentId,omitempty"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
}

// PlanSpec records the shift the plan was built for
type PlanSpec struct {
	ShiftDurationMinutes int    `yaml:"shiftDurationMinutes" json:"shiftDurationMinutes"`
	StartTime            string `yaml:"startTime,omitempty" json:"startTime,omitempty"`
	BreakStart           int    `yaml:"breakStart" json:"breakStart"`
	BreakEnd             int    `yaml:"breakEnd" json:"breakEnd"`
	ReplannedAt          *int   `yaml:"replannedAt,omitempty" json:"replannedAt,omitempty"`
	LockedUntil          *int   `yaml:"lockedUntil,omitempty" json:"lockedUntil,omitempty"`
	LockedTasks          int    `yaml:"lockedTasks,omitempty" json:"lockedTasks,omitempty"`
}

// OutcomeStatus describes how much of a part made it into the plan
type OutcomeStatus string

const (
	OutcomeComplete    OutcomeStatus = "complete"
	OutcomePartial     OutcomeStatus = "partial"
	OutcomeUnscheduled OutcomeStatus = "unscheduled"
	OutcomeDone        OutcomeStatus = "done"
)

// PartOutcome summarises one part's scheduling result
type PartOutcome struct {
	PartName            string        `yaml:"partName" json:"partName"`
	Status              OutcomeStatus `yaml:"status" json:"status"`
	RemainingQuantity   int           `yaml:"remainingQuantity" json:"remainingQuantity"`
	UnitsCompleted      int           `yaml:"unitsCompleted" json:"unitsCompleted"`
	ScheduledOperations int           `yaml:"scheduledOperations" json:"scheduledOperations"`
	TotalOperations     int           `yaml:"totalOperations" json:"totalOperations"`
	Reason              string        `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// TasksOn returns the tasks assigned to a machine in start order.
func (p *Plan) TasksOn(machine string) []Task {
	var out []Task
	for _, t := range p.Tasks {
		if t.MachineName == machine {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return out
}

// TasksFor returns the tasks of a part in start order.
func (p *Plan) TasksFor(part string) []Task {
	var out []Task
	for _, t := range p.Tasks {
		if t.PartName == part {
			out = append(out, t)
		}
	}
	SortTasks(out)
	return out
}

// SortTasks orders by start time, machine, then die setting before production.
func SortTasks(tasks []Task) {
	slices.SortStableFunc(tasks, CompareTasks)
}

// CompareTasks is the canonical task ordering.
func CompareTasks(a, b Task) int {
	if c := cmp.Compare(a.StartTime, b.StartTime); c != 0 {
		return c
	}
	if c := cmp.Compare(a.MachineName, b.MachineName); c != 0 {
		return c
	}
	if a.Kind != b.Kind {
		if a.Kind == KindDieSetting {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(a.PartName, b.PartName); c != 0 {
		return c
	}
	return cmp.Compare(a.OperationName, b.OperationName)
}
