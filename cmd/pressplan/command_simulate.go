package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/progress"
)

var (
	simulateAt    int
	simulateQuiet bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a plan up to a shift minute and estimate produced units",
	RunE: func(cmd *cobra.Command, args []string) error {
		return simulatePlan()
	},
}

func registerSimulateCommand(root *cobra.Command) {
	root.AddCommand(simulateCmd)

	simulateCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Plan file")
	simulateCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request the plan was built from")
	simulateCmd.Flags().IntVarP(&simulateAt, "at", "t", 0, "Shift minute to simulate to")
	simulateCmd.Flags().BoolVarP(&simulateQuiet, "quiet", "q", false, "Only print the estimate")
	simulateCmd.MarkFlagRequired("at")
}

func simulatePlan() error {
	plan, err := loadPlan(planFile)
	if err != nil {
		return err
	}
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	fmt.Printf("□ Simulating to %s...\n", plan.Clock(simulateAt))
	sim := progress.NewSimulator(os.Stdout, !simulateQuiet)
	snap, err := sim.Run(plan, req.Parts, simulateAt)
	if err != nil {
		return err
	}

	fmt.Printf("✓ %d tasks finished, %d running, %d pending\n", snap.Finished, len(snap.Running), snap.Pending)
	fmt.Println("\nEstimated units produced:")
	for _, p := range req.Parts {
		fmt.Printf("  %-30s %d/%d\n", p.Name, p.AlreadyProduced+snap.Completed[p.Name], p.TargetQuantity)
	}
	return nil
}
