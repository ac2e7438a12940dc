package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/render"
	"github.com/sourceplane/pressplan/internal/service"
	"github.com/sourceplane/pressplan/internal/watch"
)

var (
	planOutput string
	planWatch  bool
	planReport bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate a shift plan from a production request",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, cleanup, err := newService(savePlan, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		if !planWatch {
			return generatePlan(cmd.Context(), cmd, svc)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		debounce := time.Duration(cfg.WatchDebounceMillis) * time.Millisecond
		fmt.Printf("□ Watching %s (Ctrl-C to stop)\n", requestFile)
		w := watch.New(requestFile, debounce, func(ctx context.Context) error {
			return generatePlan(ctx, cmd, svc)
		}, logger)
		return w.Run(ctx)
	},
}

func registerPlanCommand(root *cobra.Command) {
	root.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request file path (- for stdin)")
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "plan.json", "Output plan file path (- for stdout)")
	planCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/yaml)")
	planCmd.Flags().StringVarP(&viewPlan, "view", "v", "", "View plan (machines/parts/timeline)")
	planCmd.Flags().BoolVar(&savePlan, "save", false, "Save the plan to plan history")
	planCmd.Flags().BoolVar(&planReport, "report", false, "Print the utilization and discrepancy report")
	planCmd.Flags().BoolVarP(&planWatch, "watch", "w", false, "Re-plan whenever the request file changes")
	planCmd.Flags().IntVar(&toleranceOverride, "size-tolerance", -1, "Minutes a smaller press may start later and still win (default from config)")
}

func generatePlan(ctx context.Context, cmd *cobra.Command, svc *service.Service) error {
	fmt.Println("□ Loading request...")
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	fmt.Println("□ Scheduling...")
	res, err := svc.Plan(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to schedule: %w", err)
	}
	plan := res.Plan

	if err := writeDocument(cmd, plan, planOutput); err != nil {
		return err
	}
	if planOutput != "-" {
		fmt.Printf("✓ Plan written to %s (%d tasks)\n", planOutput, len(plan.Tasks))
	}
	if plan.Metadata.ID != "" {
		fmt.Printf("✓ Saved as %s\n", plan.Metadata.ID)
	}

	fmt.Println()
	fmt.Println(plan.Summary)

	if viewPlan != "" {
		fmt.Println()
		if err := printView(plan, res.Request.Machines, viewPlan); err != nil {
			return err
		}
	}

	if planReport {
		report, err := svc.Report(ctx, plan, res.Request)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Print(render.ViewReport(report))
	}

	return nil
}
