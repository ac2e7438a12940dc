package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/timeline"
)

var machinesCmd = &cobra.Command{
	Use:     "machines [machine-name]",
	Aliases: []string{"machine", "presses"},
	Short:   "List presses with their removal buffer and blocked windows",
	Long:    "List all presses of a request by capacity. Use 'pressplan machines <name>' for details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listMachines(args)
	},
}

func registerMachinesCommand(root *cobra.Command) {
	root.AddCommand(machinesCmd)

	machinesCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request file path")
	machinesCmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Show detailed information")
}

func listMachines(args []string) error {
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	r := rules()
	duration := req.Shift.DurationMinutes
	if duration == 0 {
		duration = cfg.ShiftMinutes
	}
	shift := r.Shift(duration, req.Shift.StartTime)

	extra := make(map[string][]model.Window)
	for _, c := range req.Constraints {
		extra[c.MachineName] = append(extra[c.MachineName], c.Window())
	}
	lineOf := func(m model.Machine) *timeline.Timeline {
		return timeline.New(m, shift, extra[m.Name])
	}

	if len(args) > 0 {
		m, ok := req.MachineByName(args[0])
		if !ok {
			return fmt.Errorf("machine not found: %s", args[0])
		}
		printMachineDetails(lineOf(m), r.RemovalBuffer(m.Capacity), shift)
		return nil
	}

	if len(req.Machines) == 0 {
		fmt.Println("No machines found")
		return nil
	}

	fmt.Println("Machines:")
	for _, m := range model.EligibleMachines(req.Machines, 0) {
		line := lineOf(m)
		if longFormat {
			printMachineDetails(line, r.RemovalBuffer(m.Capacity), shift)
			continue
		}
		fmt.Printf("  %s (capacity: %d, removal: %d min, blocked: %d min)\n",
			m.Name, m.Capacity, r.RemovalBuffer(m.Capacity), line.BlockedMinutes())
	}
	for _, m := range req.Machines {
		if m.DownForShift() {
			fmt.Printf("  %s (capacity: %d, down for the shift)\n", m.Name, m.Capacity)
		}
	}

	if !longFormat {
		fmt.Println("\nRun 'pressplan machines <name>' for detailed information")
	}
	return nil
}
