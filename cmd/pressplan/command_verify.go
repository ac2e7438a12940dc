package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/model"
)

var (
	verifyPrevious string
	verifyElapsed  int
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a plan against every scheduling rule",
	Long: "Verify audits a plan for shift boundaries, breaks, downtime, double booking, " +
		"die removal gaps, operation order and press capacity. With --previous it also " +
		"checks that a replan kept the locked tasks of its parent.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return verifyPlan(cmd)
	},
}

func registerVerifyCommand(root *cobra.Command) {
	root.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Plan file")
	verifyCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request the plan was built from")
	verifyCmd.Flags().StringVar(&verifyPrevious, "previous", "", "Parent plan of a replan")
	verifyCmd.Flags().IntVarP(&verifyElapsed, "elapsed", "t", 0, "Replan minute (with --previous)")
	verifyCmd.Flags().IntVar(&lockInOverride, "lock-in", -1, "Lock-in window in minutes (default from config)")
	verifyCmd.MarkFlagsRequiredTogether("previous", "elapsed")
}

func verifyPlan(cmd *cobra.Command) error {
	svc, cleanup, err := newService(false, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	fmt.Println("□ Loading plan...")
	plan, err := loadPlan(planFile)
	if err != nil {
		return err
	}
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	fmt.Println("□ Verifying...")
	res := svc.Verify(plan, req)

	if verifyPrevious != "" {
		var previous *model.Plan
		if previous, err = loadPlan(verifyPrevious); err != nil {
			return err
		}
		lock := svc.VerifyLockIn(previous, plan, verifyElapsed)
		res.Violations = append(res.Violations, lock.Violations...)
	}

	if !res.OK() {
		return res
	}
	fmt.Printf("✓ Plan satisfies all rules (%d tasks)\n", res.Tasks)
	return nil
}
