package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/sourceplane/pressplan/internal/model"
)

// ErrNotFound is returned when no stored plan matches.
var ErrNotFound = errors.New("plan not found")

// Stored is a plan read back with its request
type Stored struct {
	Plan      *model.Plan
	Request   *model.ProductionRequest
	Mode      string
	CreatedAt time.Time
}

// Entry is one line of plan history
type Entry struct {
	ID           string    `json:"id" yaml:"id"`
	ParentID     string    `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	Name         string    `json:"name" yaml:"name"`
	Mode         string    `json:"mode" yaml:"mode"`
	ReplannedAt  *int      `json:"replannedAt,omitempty" yaml:"replannedAt,omitempty"`
	TaskCount    int       `json:"taskCount" yaml:"taskCount"`
	PartialParts int       `json:"partialParts" yaml:"partialParts"`
	CreatedAt    time.Time `json:"createdAt" yaml:"createdAt"`
}

// Store persists plans and their lineage
type Store struct {
	db     *gorm.DB
	logger zerolog.Logger
	now    func() time.Time
}

// New wraps an open database; call Migrate first.
func New(db *gorm.DB, logger zerolog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger.With().Str("component", "store").Logger(),
		now:    time.Now,
	}
}

// Save assigns the plan a new ID, writes it with its request and returns the ID.
func (s *Store) Save(ctx context.Context, plan *model.Plan, req *model.ProductionRequest, mode string) (string, error) {
	id := uuid.NewString()

	spec, err := json.Marshal(plan.Spec)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan spec: %w", err)
	}
	parts, err := json.Marshal(plan.Parts)
	if err != nil {
		return "", fmt.Errorf("failed to encode part outcomes: %w", err)
	}
	var request []byte
	if req != nil {
		if request, err = json.Marshal(req); err != nil {
			return "", fmt.Errorf("failed to encode request: %w", err)
		}
	}

	partial := 0
	for _, o := range plan.Parts {
		if o.Status == model.OutcomePartial || o.Status == model.OutcomeUnscheduled {
			partial++
		}
	}

	rec := PlanRecord{
		ID:                   id,
		ParentID:             plan.Metadata.ParentID,
		Name:                 plan.Metadata.Name,
		Mode:                 mode,
		ShiftDurationMinutes: plan.Spec.ShiftDurationMinutes,
		ReplannedAt:          plan.Spec.ReplannedAt,
		TaskCount:            len(plan.Tasks),
		PartialParts:         partial,
		Spec:                 string(spec),
		Parts:                string(parts),
		Summary:              plan.Summary,
		Request:              string(request),
		CreatedAt:            s.now().UTC(),
	}
	for i, t := range plan.Tasks {
		rec.Tasks = append(rec.Tasks, taskRecord(id, i, t))
	}

	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return "", fmt.Errorf("failed to save plan: %w", err)
	}

	plan.Metadata.ID = id
	s.logger.Debug().Str("plan", id).Str("parent", rec.ParentID).Int("tasks", rec.TaskCount).Msg("plan saved")
	return id, nil
}

// Get loads a plan by ID.
func (s *Store) Get(ctx context.Context, id string) (*Stored, error) {
	var rec PlanRecord
	err := s.db.WithContext(ctx).
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("seq ASC") }).
		First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", id, err)
	}
	return rec.decode()
}

// Latest loads the most recently saved plan.
func (s *Store) Latest(ctx context.Context) (*Stored, error) {
	var rec PlanRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest plan: %w", err)
	}
	return s.Get(ctx, rec.ID)
}

// Resolve loads "latest" or a plan ID.
func (s *Store) Resolve(ctx context.Context, ref string) (*Stored, error) {
	if ref == "" || ref == "latest" {
		return s.Latest(ctx)
	}
	return s.Get(ctx, ref)
}

// List returns plan history, newest first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	var recs []PlanRecord
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	entries := make([]Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, Entry{
			ID:           r.ID,
			ParentID:     r.ParentID,
			Name:         r.Name,
			Mode:         r.Mode,
			ReplannedAt:  r.ReplannedAt,
			TaskCount:    r.TaskCount,
			PartialParts: r.PartialParts,
			CreatedAt:    r.CreatedAt,
		})
	}
	return entries, nil
}

// Lineage walks parent links from id back to the first plan of the shift.
func (s *Store) Lineage(ctx context.Context, id string) ([]Entry, error) {
	var chain []Entry
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		var r PlanRecord
		err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if len(chain) == 0 {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load plan %s: %w", id, err)
		}
		chain = append(chain, Entry{
			ID:           r.ID,
			ParentID:     r.ParentID,
			Name:         r.Name,
			Mode:         r.Mode,
			ReplannedAt:  r.ReplannedAt,
			TaskCount:    r.TaskCount,
			PartialParts: r.PartialParts,
			CreatedAt:    r.CreatedAt,
		})
		id = r.ParentID
	}
	return chain, nil
}

func (r *PlanRecord) decode() (*Stored, error) {
	plan := &model.Plan{
		APIVersion: model.APIVersion,
		Kind:       model.KindPlan,
		Metadata: model.PlanMetadata{
			ID:       r.ID,
			ParentID: r.ParentID,
			Name:     r.Name,
		},
		Summary: r.Summary,
		Tasks:   make([]model.Task, 0, len(r.Tasks)),
	}
	if err := json.Unmarshal([]byte(r.Spec), &plan.Spec); err != nil {
		return nil, fmt.Errorf("failed to decode plan spec: %w", err)
	}
	if r.Parts != "" {
		if err := json.Unmarshal([]byte(r.Parts), &plan.Parts); err != nil {
			return nil, fmt.Errorf("failed to decode part outcomes: %w", err)
		}
	}
	for _, t := range r.Tasks {
		plan.Tasks = append(plan.Tasks, t.toTask())
	}

	stored := &Stored{Plan: plan, Mode: r.Mode, CreatedAt: r.CreatedAt}
	if r.Request != "" {
		var req model.ProductionRequest
		if err := json.Unmarshal([]byte(r.Request), &req); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		stored.Request = &req
	}
	return stored, nil
}
