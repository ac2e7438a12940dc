package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/normalize"
)

var validateReplan bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a production request (and optionally a plan document)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateFiles(cmd)
	},
}

func registerValidateCommand(root *cobra.Command) {
	root.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request file path")
	validateCmd.Flags().StringVarP(&planFile, "plan", "p", "plan.json", "Also validate this plan document against the plan schema")
	validateCmd.Flags().BoolVar(&validateReplan, "replan", false, "Apply replan rules (zero target quantities allowed)")
}

func validateFiles(cmd *cobra.Command) error {
	fmt.Println("□ Validating request against schema...")
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	fmt.Println("□ Checking request...")
	mode := normalize.ModeFresh
	if validateReplan {
		mode = normalize.ModeReplan
	}
	normalized, err := normalize.NormalizeRequest(req, normalize.Options{
		Mode:                mode,
		DefaultShiftMinutes: cfg.ShiftMinutes,
	})
	if err != nil {
		var ve *normalize.ValidationErrors
		if errors.As(err, &ve) {
			fmt.Fprint(os.Stderr, ve.FormatStderr())
		}
		return err
	}
	fmt.Printf("✓ Request is valid (%d parts, %d machines, %d-minute shift)\n",
		len(normalized.Parts), len(normalized.Machines), normalized.Shift.DurationMinutes)

	if cmd.Flags().Changed("plan") {
		fmt.Println("□ Validating plan against schema...")
		plan, err := loadPlan(planFile)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Plan is valid (%d tasks)\n", len(plan.Tasks))
	}

	return nil
}
