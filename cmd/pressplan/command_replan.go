package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/service"
)

var (
	replanOutput   string
	replanElapsed  int
	replanEstimate bool
)

var replanCmd = &cobra.Command{
	Use:   "replan",
	Short: "Revise a plan mid-shift, keeping the next lock-in window unchanged",
	Long: "Replan reschedules the remaining quantities from minute --elapsed onward. " +
		"Tasks starting before elapsed + lock-in are kept exactly as they were. " +
		"The previous plan comes from --plan or, with --plan-id, from plan history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return replan(cmd)
	},
}

func registerReplanCommand(root *cobra.Command) {
	root.AddCommand(replanCmd)

	replanCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Updated production request (defaults to the stored request with --plan-id)")
	replanCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Previous plan file")
	replanCmd.Flags().StringVar(&planID, "plan-id", "", "Previous plan from history (ID or 'latest')")
	replanCmd.Flags().IntVarP(&replanElapsed, "elapsed", "t", 0, "Minutes elapsed since the start of the shift")
	replanCmd.Flags().BoolVar(&replanEstimate, "estimate-progress", false, "Estimate produced units from the previous plan at --elapsed")
	replanCmd.Flags().StringVarP(&replanOutput, "output", "o", "replan.json", "Output plan file path (- for stdout)")
	replanCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/yaml)")
	replanCmd.Flags().StringVarP(&viewPlan, "view", "v", "", "View plan (machines/parts/timeline)")
	replanCmd.Flags().BoolVar(&savePlan, "save", false, "Save the plan to plan history")
	replanCmd.Flags().IntVar(&lockInOverride, "lock-in", -1, "Lock-in window in minutes (default from config)")
	replanCmd.Flags().IntVar(&toleranceOverride, "size-tolerance", -1, "Minutes a smaller press may start later and still win (default from config)")
	replanCmd.MarkFlagRequired("elapsed")
	replanCmd.MarkFlagsMutuallyExclusive("plan", "plan-id")
	replanCmd.MarkFlagsOneRequired("plan", "plan-id")
}

func replan(cmd *cobra.Command) error {
	ctx := cmd.Context()
	fromHistory := planID != ""

	svc, cleanup, err := newService(fromHistory || savePlan, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	var req *model.ProductionRequest
	if !fromHistory || cmd.Flags().Changed("request") {
		fmt.Println("□ Loading request...")
		if req, err = loadRequest(requestFile); err != nil {
			return err
		}
	}

	var res *service.Result
	var previous *model.Plan
	var base *model.ProductionRequest
	if fromHistory {
		fmt.Printf("□ Loading plan %s from history...\n", planID)
		stored, err := svc.Get(ctx, planID)
		if err != nil {
			return fmt.Errorf("failed to load previous plan: %w", err)
		}
		previous = stored.Plan
		base = stored.Request
		if req == nil {
			req = stored.Request
		}
	} else {
		fmt.Println("□ Loading previous plan...")
		if previous, err = loadPlan(planFile); err != nil {
			return err
		}
	}

	fmt.Printf("□ Replanning at minute %d...\n", replanElapsed)
	res, err = svc.Replan(ctx, service.ReplanInput{
		Previous:         previous,
		Request:          req,
		Base:             base,
		Elapsed:          replanElapsed,
		EstimateProgress: replanEstimate,
	})
	if err != nil {
		return fmt.Errorf("failed to replan: %w", err)
	}
	plan := res.Plan

	if check := svc.VerifyLockIn(previous, plan, replanElapsed); !check.OK() {
		return fmt.Errorf("replan changed locked tasks: %w", check)
	}

	if err := writeDocument(cmd, plan, replanOutput); err != nil {
		return err
	}
	if replanOutput != "-" {
		fmt.Printf("✓ Plan written to %s (%d tasks, %d locked)\n", replanOutput, len(plan.Tasks), plan.Spec.LockedTasks)
	}
	if plan.Metadata.ID != "" {
		fmt.Printf("✓ Saved as %s (parent %s)\n", plan.Metadata.ID, plan.Metadata.ParentID)
	}

	fmt.Println()
	fmt.Println(plan.Summary)

	if viewPlan != "" {
		fmt.Println()
		return printView(plan, res.Request.Machines, viewPlan)
	}
	return nil
}
