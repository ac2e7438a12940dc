package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sourceplane/pressplan/internal/analysis"
	"github.com/sourceplane/pressplan/internal/model"
	"github.com/sourceplane/pressplan/internal/normalize"
	"github.com/sourceplane/pressplan/internal/planner"
	"github.com/sourceplane/pressplan/internal/progress"
	"github.com/sourceplane/pressplan/internal/store"
	"github.com/sourceplane/pressplan/internal/telemetry"
	"github.com/sourceplane/pressplan/internal/verify"
)

// Options wires a planning service. Store and Metrics are optional.
type Options struct {
	Rules               planner.Rules
	Thresholds          analysis.Thresholds
	DefaultShiftMinutes int
	Store               *store.Store
	Metrics             *telemetry.Metrics
	Logger              zerolog.Logger
}

// Service runs planning operations end to end: normalize, schedule,
// record metrics and persist.
type Service struct {
	rules        planner.Rules
	defaultShift int
	scheduler    *planner.Scheduler
	replanner    *planner.Replanner
	analyzer     *analysis.Analyzer
	verifier     *verify.Verifier
	store        *store.Store
	metrics      *telemetry.Metrics
	logger       zerolog.Logger
}

// New creates a new planning service
func New(opts Options) *Service {
	return &Service{
		rules:        opts.Rules,
		defaultShift: opts.DefaultShiftMinutes,
		scheduler:    planner.NewScheduler(opts.Rules, opts.Logger),
		replanner:    planner.NewReplanner(opts.Rules, opts.Logger),
		analyzer:     analysis.NewAnalyzer(opts.Thresholds, opts.Rules.RemovalBuffer, opts.Logger),
		verifier:     verify.NewVerifier(opts.Rules),
		store:        opts.Store,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With().Str("component", "service").Logger(),
	}
}

// Result is a plan together with the normalized request it was built from
type Result struct {
	Plan    *model.Plan
	Request *model.ProductionRequest
}

// ReplanInput describes a mid-shift revision. Base is the request the
// previous plan was built from; progress estimates add to its produced
// counts. It defaults to Request.
type ReplanInput struct {
	Previous         *model.Plan
	Request          *model.ProductionRequest
	Base             *model.ProductionRequest
	Elapsed          int
	EstimateProgress bool
}

// HasStore reports whether plans are persisted.
func (s *Service) HasStore() bool {
	return s.store != nil
}

// Plan normalizes a request and schedules a fresh plan.
func (s *Service) Plan(ctx context.Context, req *model.ProductionRequest) (*Result, error) {
	started := time.Now()

	norm, err := normalize.NormalizeRequest(req, normalize.Options{
		Mode:                normalize.ModeFresh,
		DefaultShiftMinutes: s.defaultShift,
	})
	if err != nil {
		s.fail(telemetry.ModeFresh, err)
		return nil, err
	}

	plan, err := s.scheduler.Schedule(norm.Parts, norm.Machines, s.shift(norm), norm.Constraints)
	if err != nil {
		s.fail(telemetry.ModeFresh, err)
		return nil, err
	}
	plan.Metadata.Name = norm.Metadata.Name
	s.metrics.ObservePlan(telemetry.ModeFresh, plan, time.Since(started))

	if err := s.save(ctx, plan, norm, telemetry.ModeFresh); err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Request: norm}, nil
}

// Replan revises a previous plan at in.Elapsed minutes into the shift.
func (s *Service) Replan(ctx context.Context, in ReplanInput) (*Result, error) {
	started := time.Now()

	if in.Previous == nil {
		err := planner.ReplanPrecondition("cannot replan without a previous plan")
		s.fail(telemetry.ModeReplan, err)
		return nil, err
	}
	if in.Request == nil {
		err := planner.InvalidInput("replan requires a production request")
		s.fail(telemetry.ModeReplan, err)
		return nil, err
	}

	req := in.Request
	if in.EstimateProgress {
		base := in.Base
		if base == nil {
			base = req
		}
		produced := progress.Since(in.Previous, req.Parts, progress.Start(in.Previous), in.Elapsed)
		estimated := *req
		estimated.Parts = progress.Apply(req.Parts, base.Parts, produced)
		req = &estimated
	}

	norm, err := normalize.NormalizeRequest(req, normalize.Options{
		Mode:                normalize.ModeReplan,
		DefaultShiftMinutes: s.defaultShift,
	})
	if err != nil {
		s.fail(telemetry.ModeReplan, err)
		return nil, err
	}

	plan, err := s.replanner.Replan(in.Previous, norm.Parts, norm.Machines, s.shift(norm), norm.Constraints, in.Elapsed)
	if err != nil {
		s.fail(telemetry.ModeReplan, err)
		return nil, err
	}
	if plan.Metadata.Name == "" {
		plan.Metadata.Name = norm.Metadata.Name
	}
	s.metrics.ObservePlan(telemetry.ModeReplan, plan, time.Since(started))

	if err := s.save(ctx, plan, norm, telemetry.ModeReplan); err != nil {
		return nil, err
	}
	return &Result{Plan: plan, Request: norm}, nil
}

// ReplanStored revises a stored plan, referenced by ID or "latest".
func (s *Service) ReplanStored(ctx context.Context, ref string, req *model.ProductionRequest, elapsed int, estimate bool) (*Result, error) {
	stored, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if req == nil {
		req = stored.Request
	}
	return s.Replan(ctx, ReplanInput{
		Previous:         stored.Plan,
		Request:          req,
		Base:             stored.Request,
		Elapsed:          elapsed,
		EstimateProgress: estimate,
	})
}

// Report analyzes a plan against the floor it was scheduled on.
func (s *Service) Report(ctx context.Context, plan *model.Plan, req *model.ProductionRequest) (*model.Report, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan cannot be nil")
	}
	if req == nil {
		return nil, fmt.Errorf("report requires the production request of plan %s", plan.Metadata.ID)
	}
	report, err := s.analyzer.Report(ctx, plan, req.Parts, req.Machines)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze plan: %w", err)
	}
	s.metrics.ObserveReport(report)
	return report, nil
}

// Verify checks a plan against every scheduling rule.
func (s *Service) Verify(plan *model.Plan, req *model.ProductionRequest) *verify.Result {
	return s.verifier.Verify(plan, req.Parts, req.Machines, req.Constraints)
}

// VerifyLockIn checks that a replan kept the locked tasks of its parent.
func (s *Service) VerifyLockIn(previous, next *model.Plan, elapsed int) *verify.Result {
	return verify.VerifyLockIn(previous, next, elapsed, s.rules.LockInMinutes)
}

// Get loads a stored plan by ID or "latest".
func (s *Service) Get(ctx context.Context, ref string) (*store.Stored, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Resolve(ctx, ref)
}

// History lists stored plans, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.Entry, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List(ctx, limit)
}

// Lineage lists a stored plan and its ancestors.
func (s *Service) Lineage(ctx context.Context, id string) ([]store.Entry, error) {
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.Lineage(ctx, id)
}

// ErrNoStore is returned by history operations when persistence is off.
var ErrNoStore = errors.New("plan history is not enabled")

func (s *Service) shift(req *model.ProductionRequest) model.Shift {
	return s.rules.Shift(req.Shift.DurationMinutes, req.Shift.StartTime)
}

func (s *Service) save(ctx context.Context, plan *model.Plan, req *model.ProductionRequest, mode string) error {
	if s.store == nil {
		return nil
	}
	if _, err := s.store.Save(ctx, plan, req, mode); err != nil {
		return err
	}
	return nil
}

func (s *Service) fail(mode string, err error) {
	kind := "internal"
	var perr *planner.Error
	if errors.As(err, &perr) {
		kind = string(perr.Kind)
	}
	s.metrics.ObserveFailure(mode, kind)
	s.logger.Warn().Err(err).Str("mode", mode).Str("kind", kind).Msg("planning rejected")
}
