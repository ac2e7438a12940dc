package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/expand"
)

var partsCmd = &cobra.Command{
	Use:     "parts [part-name]",
	Aliases: []string{"part"},
	Short:   "List parts with their operations and eligible presses",
	Long:    "List all parts of a request in scheduling order. Use 'pressplan parts <name>' for details.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listParts(args)
	},
}

func registerPartsCommand(root *cobra.Command) {
	root.AddCommand(partsCmd)

	partsCmd.Flags().StringVarP(&requestFile, "request", "r", "request.yaml", "Production request file path")
	partsCmd.Flags().BoolVarP(&longFormat, "long", "l", false, "Show detailed information")
}

func listParts(args []string) error {
	req, err := loadRequest(requestFile)
	if err != nil {
		return err
	}

	analyzer := expand.NewPartAnalyzer(req.Parts, req.Machines)

	if len(args) > 0 {
		part, ok := req.PartByName(args[0])
		if !ok {
			return fmt.Errorf("part not found: %s", args[0])
		}
		printPartDetails(analyzer.Summarize(part))
		return nil
	}

	parts := analyzer.ListAll()
	if len(parts) == 0 {
		fmt.Println("No parts found")
		return nil
	}

	fmt.Println("Parts:")
	for _, p := range parts {
		if longFormat {
			printPartDetails(p)
			continue
		}
		fmt.Printf("  %s (priority: %d, remaining: %d/%d, operations: %d, machine minutes: %d)\n",
			p.Name, p.Priority, p.Remaining, p.TargetQuantity, len(p.Operations), p.MachineMinutes)
	}

	if !longFormat {
		fmt.Println("\nRun 'pressplan parts <name>' for detailed information")
	}
	return nil
}
