package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/store"
)

var (
	historyLimit   int
	historyLineage string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listHistory(cmd)
	},
}

func registerHistoryCommand(root *cobra.Command) {
	root.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of plans to list (0 for all)")
	historyCmd.Flags().StringVar(&historyLineage, "lineage", "", "Show a plan and its ancestors")
}

func listHistory(cmd *cobra.Command) error {
	svc, cleanup, err := newService(true, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	var entries []store.Entry
	if historyLineage != "" {
		entries, err = svc.Lineage(cmd.Context(), historyLineage)
	} else {
		entries, err = svc.History(cmd.Context(), historyLimit)
	}
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No saved plans")
		return nil
	}

	for _, e := range entries {
		at := "fresh"
		if e.ReplannedAt != nil {
			at = fmt.Sprintf("replan@%d", *e.ReplannedAt)
		}
		fmt.Printf("%s  %s  %-12s %-20s tasks=%d partial=%d",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), at, e.Name, e.TaskCount, e.PartialParts)
		if e.ParentID != "" {
			fmt.Printf(" parent=%s", e.ParentID)
		}
		fmt.Println()
	}
	return nil
}
