package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sourceplane/pressplan/internal/loader"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/planner"
	"github.com/sourceplane/pressplan/internal/render"
	"github.com/sourceplane/pressplan/internal/schema"
	"github.com/sourceplane/pressplan/internal/service"
	"github.com/sourceplane/pressplan/internal/store"
	"github.com/sourceplane/pressplan/internal/telemetry"
)

// flag overrides of configured policy; negative means unset
var (
	lockInOverride    = -1
	toleranceOverride = -1
)

func newLoader() (*loader.Loader, error) {
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}
	return loader.New(validator), nil
}

func loadRequest(path string) (*model.ProductionRequest, error) {
	ld, err := newLoader()
	if err != nil {
		return nil, err
	}
	req, err := ld.LoadRequest(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load request: %w", err)
	}
	return req, nil
}

func loadPlan(path string) (*model.Plan, error) {
	ld, err := newLoader()
	if err != nil {
		return nil, err
	}
	plan, err := ld.LoadPlan(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", path, err)
	}
	return plan, nil
}

func rules() planner.Rules {
	r := cfg.Rules()
	if lockInOverride >= 0 {
		r.LockInMinutes = lockInOverride
	}
	if toleranceOverride >= 0 {
		r.SizeToleranceMinutes = toleranceOverride
	}
	return r
}

// newService builds the planning service. With persist set, plans are
// saved to the configured database; the returned func closes it.
func newService(persist bool, metrics *telemetry.Metrics) (*service.Service, func(), error) {
	r := rules()
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}

	opts := service.Options{
		Rules:               r,
		Thresholds:          cfg.Thresholds(),
		DefaultShiftMinutes: cfg.ShiftMinutes,
		Metrics:             metrics,
		Logger:              logger,
	}
	cleanup := func() {}

	if persist {
		db, err := store.Connect(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBBackend, err)
		}
		if err := store.Migrate(db); err != nil {
			_ = store.Close(db)
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		opts.Store = store.New(db, logger)
		cleanup = func() {
			if err := store.Close(db); err != nil {
				logger.Warn().Err(err).Msg("failed to close database")
			}
		}
	}

	return service.New(opts), cleanup, nil
}

// writeDocument writes doc to path, or to stdout when path is "-".
// The format comes from --format when set, else from the file extension.
func writeDocument(cmd *cobra.Command, doc interface{}, path string) error {
	renderer := render.NewRenderer()

	if path != "-" && !cmd.Flags().Changed("format") {
		return renderer.WriteFile(doc, path)
	}

	format, err := render.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	if path == "-" {
		return renderer.Write(os.Stdout, doc, format)
	}
	data, err := renderer.Render(doc, format)
	if err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func printView(plan *model.Plan, machines []model.Machine, view string) error {
	out, err := render.NewPlanViewer(plan, machines).View(view)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
