package render

import (
	"fmt"
	"strings"

	"github.com/sourceplane/pressplan/internal/model"
)

// ViewReport renders utilization, production and discrepancies as text
func ViewReport(report *model.Report) string {
	var sb strings.Builder

	sb.WriteString("Machine Utilization\n")
	sb.WriteString(rule)
	for _, u := range report.MachineUtilization {
		fmt.Fprintf(&sb, "%-14s %6.2f%%  busy %4d  idle %4d\n", u.MachineName, u.UtilizationPct, u.BusyTime, u.IdleTime)
	}

	sb.WriteString("\nPart Production\n")
	sb.WriteString(rule)
	for _, p := range report.PartProduction {
		fmt.Fprintf(&sb, "%-28s %5d / %-5d (completed %d)\n", p.PartName, p.QuantityProduced, p.TargetQuantity, p.CompletedUnits)
	}

	sb.WriteString("\nDiscrepancies\n")
	sb.WriteString(rule)
	if len(report.Discrepancies) == 0 {
		sb.WriteString("none\n")
		return sb.String()
	}
	for _, d := range report.Discrepancies {
		fmt.Fprintf(&sb, "[%s] %s / %s: %s (%dT) instead of %s (%dT)\n",
			d.Severity, d.PartName, d.OperationName, d.ActualMachineName, d.ActualMachineCapacity, d.IdealMachineName, d.IdealMachineCapacity)
		if d.Reason != "" {
			fmt.Fprintf(&sb, "       %s\n", d.Reason)
		}
	}
	return sb.String()
}
