package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/sample"
)

var (
	initOutput string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter production request for the reference stamping line",
	RunE: func(cmd *cobra.Command, args []string) error {
		if initOutput != "-" && !initForce {
			if _, err := os.Stat(initOutput); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", initOutput)
			}
		}
		if err := writeDocument(cmd, sample.Request(), initOutput); err != nil {
			return err
		}
		if initOutput != "-" {
			fmt.Printf("✓ Request written to %s\n", initOutput)
		}
		return nil
	},
}

func registerInitCommand(root *cobra.Command) {
	root.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initOutput, "output", "o", "request.yaml", "Output request file path (- for stdout)")
	initCmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json/yaml)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}
