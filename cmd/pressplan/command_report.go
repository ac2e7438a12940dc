package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/render"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:     "report",
	Aliases: []string{"analyze"},
	Short:   "Report machine utilization, part production and oversized press assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportPlan(cmd)
	},
}

func registerReportCommand(root *cobra.Command) {
	root.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Plan file")
	reportCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request the plan was built from")
	reportCmd.Flags().StringVar(&planID, "plan-id", "", "Plan from history (ID or 'latest')")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Write the report document to a file (- for stdout) instead of the text view")
	reportCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/yaml)")
	reportCmd.MarkFlagsMutuallyExclusive("plan", "plan-id")
}

func reportPlan(cmd *cobra.Command) error {
	ctx := cmd.Context()
	fromHistory := planID != ""

	svc, cleanup, err := newService(fromHistory, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	var plan *model.Plan
	var req *model.ProductionRequest
	if fromHistory {
		stored, err := svc.Get(ctx, planID)
		if err != nil {
			return fmt.Errorf("failed to load plan: %w", err)
		}
		plan, req = stored.Plan, stored.Request
	}
	if plan == nil {
		if plan, err = loadPlan(planFile); err != nil {
			return err
		}
	}
	if req == nil || cmd.Flags().Changed("request") {
		if req, err = loadRequest(requestFile); err != nil {
			return err
		}
	}

	report, err := svc.Report(ctx, plan, req)
	if err != nil {
		return err
	}

	if reportOutput == "" {
		fmt.Print(render.ViewReport(report))
		return nil
	}
	if err := writeDocument(cmd, report, reportOutput); err != nil {
		return err
	}
	if reportOutput != "-" {
		fmt.Printf("✓ Report written to %s (%d discrepancies)\n", reportOutput, len(report.Discrepancies))
	}
	return nil
}
