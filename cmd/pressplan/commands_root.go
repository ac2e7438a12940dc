package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/config"
	"github.com/sourceplane/pressplan/internal/logging"
)

var (
	requestFile  string
	planFile     string
	outputFormat string
	debugMode    bool
	viewPlan     string
	longFormat   bool
	savePlan     bool
	planID       string
)

var (
	cfg    *config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:          "pressplan",
	Short:        "Stamping press scheduler: Request → Shift Plan",
	Long:         "pressplan schedules stamping operations onto presses for one shift, replans mid-shift and reports utilization and oversized press assignments",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
		logger = logging.Setup(cfg.Environment, debugMode)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	registerInitCommand(rootCmd)
	registerPlanCommand(rootCmd)
	registerReplanCommand(rootCmd)
	registerReportCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerVerifyCommand(rootCmd)
	registerSimulateCommand(rootCmd)
	registerDebugCommand(rootCmd)
	registerPartsCommand(rootCmd)
	registerMachinesCommand(rootCmd)
	registerHistoryCommand(rootCmd)
	registerServeCommand(rootCmd)
}
