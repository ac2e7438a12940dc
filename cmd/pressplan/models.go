package main

import (
	"fmt"
	"strings"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/timeline"
)

func printPartDetails(p *expand.PartSummary) {
	fmt.Printf("\n[Part] %s\n", p.Name)
	if p.ID != "" {
		fmt.Printf("  ID:          %s\n", p.ID)
	}
	if p.Description != "" {
		fmt.Printf("  Description: %s\n", p.Description)
	}
	fmt.Printf("  Priority:    %d\n", p.Priority)
	fmt.Printf("  Quantity:    %d remaining (%d target, %d produced)\n", p.Remaining, p.TargetQuantity, p.AlreadyProduced)
	fmt.Printf("  Workload:    %d machine minutes\n", p.MachineMinutes)

	fmt.Printf("  Operations (%d):\n", len(p.Operations))
	for i, op := range p.Operations {
		marker := " "
		if op.Selected {
			marker = "✓"
		}
		fmt.Printf("    %s %d. %s\n", marker, i+1, op.Operation.StepName)
		fmt.Printf("        lowest press: %s, die setting: %d min, per 50: %g min, production: %d min\n",
			op.Operation.LowestPress.Label(), op.Operation.DieSettingTime, op.Operation.TimeFor50Pcs, op.ProductionMinutes)
		if len(op.Eligible) == 0 {
			fmt.Printf("        eligible: none\n")
		} else {
			fmt.Printf("        eligible: %s\n", strings.Join(op.Eligible, ", "))
		}
	}
}

func printMachineDetails(line *timeline.Timeline, removal int, shift model.Shift) {
	m := line.Machine()
	fmt.Printf("\n[Machine] %s\n", m.Name)
	fmt.Printf("  Capacity:  %d\n", m.Capacity)
	fmt.Printf("  Available: %v\n", !m.DownForShift())
	fmt.Printf("  Removal:   %d min after each production run\n", removal)

	blocked := line.Blocked()
	if m.DownForShift() || len(blocked) == 0 {
		return
	}
	fmt.Printf("  Blocked (%d min):\n", line.BlockedMinutes())
	for _, b := range blocked {
		fmt.Printf("    [%s] %s-%s %s\n", b.Kind, model.ClockAt(shift.StartTime, b.Start), model.ClockAt(shift.StartTime, b.End), b.Window)
	}
}
