package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/normalize"
	"github.com/sourceplane/pressplan/internal/render"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug request processing and plan contents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return debugRequest(cmd)
	},
}

func registerDebugCommand(root *cobra.Command) {
	root.AddCommand(debugCmd)

	debugCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request file path")
	debugCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Also dump this plan")
}

func debugRequest(cmd *cobra.Command) error {
	fmt.Println("□ Loading and normalizing...")
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	normalized, err := normalize.NormalizeRequest(req, normalize.Options{
		Mode:                normalize.ModeReplan,
		DefaultShiftMinutes: cfg.ShiftMinutes,
	})
	if err != nil {
		return err
	}

	r := rules()
	shift := r.Shift(normalized.Shift.DurationMinutes, normalized.Shift.StartTime)
	fmt.Printf("\nMetadata: %+v\n", normalized.Metadata)
	fmt.Printf("Shift: %d min, break %s, start %q\n", shift.DurationMinutes, shift.BreakWindow(), shift.StartTime)
	fmt.Printf("Rules: lock-in=%d, tolerance=%d, removal=%d/%d (capacity <= %d)\n",
		r.LockInMinutes, r.SizeToleranceMinutes, r.SmallPressRemoval, r.LargePressRemoval, r.SmallPressCapacity)

	fmt.Printf("Machines: %d\n", len(normalized.Machines))
	for _, m := range normalized.Machines {
		fmt.Printf("  - %s: capacity=%d, available=%v, downtime=%d, unavailability=%d\n",
			m.Name, m.Capacity, m.Available, m.PlannedDowntimeMinutes, len(m.Unavailability))
	}

	work := expand.NewExpander(normalized.Parts).Expand()
	fmt.Printf("Work list: %d jobs, %d done\n", len(work.Jobs), len(work.Done))
	for i, job := range work.Jobs {
		fmt.Printf("  %d. %s: priority=%d, input=#%d, quantity=%d, operations=%d\n",
			i+1, job.Part.Name, job.Part.Priority, job.Position+1, job.Quantity, len(job.Operations))
		if unknown := expand.UnknownSelections(job.Part); len(unknown) > 0 {
			fmt.Printf("     unknown selections ignored: %v\n", unknown)
		}
	}
	fmt.Printf("Constraints: %d\n", len(normalized.Constraints))
	for _, c := range normalized.Constraints {
		fmt.Printf("  - %s %s\n", c.MachineName, c.Window())
	}

	if cmd.Flags().Changed("plan") {
		plan, err := loadPlan(planFile)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(render.NewRenderer().DebugDump(plan))
	}

	return nil
}
