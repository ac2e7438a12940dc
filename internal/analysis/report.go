package analysis

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sourceplane/pressplan/internal/model"
)

// Analyzer builds reports from finished plans
type Analyzer struct {
	thresholds Thresholds
	removal    RemovalFunc
	logger     zerolog.Logger
}

// NewAnalyzer creates a new analyzer. removal should be the scheduler's die
// removal rule so discrepancy reasons match the plan.
func NewAnalyzer(thresholds Thresholds, removal RemovalFunc, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		thresholds: thresholds,
		removal:    removal,
		logger:     logger.With().Str("component", "analyzer").Logger(),
	}
}

// Report computes utilization, part production and discrepancies for a plan.
// The three analyses only read the plan, so they run concurrently.
func (a *Analyzer) Report(ctx context.Context, plan *model.Plan, parts []model.Part, machines []model.Machine) (*model.Report, error) {
	report := &model.Report{
		APIVersion: model.APIVersion,
		Kind:       model.KindReport,
		PlanID:     plan.Metadata.ID,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.MachineUtilization = MachineUtilization(plan, machines, plan.Spec.ShiftDurationMinutes)
		return ctx.Err()
	})
	g.Go(func() error {
		report.PartProduction = PartProduction(plan, parts)
		return ctx.Err()
	})
	g.Go(func() error {
		report.Discrepancies = FindDiscrepancies(plan, parts, machines, a.thresholds, a.removal)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.Debug().
		Str("plan", plan.Metadata.ID).
		Int("discrepancies", len(report.Discrepancies)).
		Msg("report computed")

	return report, nil
}
