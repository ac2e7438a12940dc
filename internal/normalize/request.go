package normalize

import (
	"fmt"

	"github.com/sourceplane/pressplan/internal/expand"
	"github.com/sourceplane/pressplan/internal/model"
)

// Mode selects which quantity rules apply
type Mode int

const (
	ModeFresh Mode = iota
	ModeReplan
)

// Options controls defaulting
type Options struct {
	Mode                Mode
	DefaultShiftMinutes int
}

// NormalizeRequest fills defaults and validates a request. The returned
// request is a copy; the input is not modified.
func NormalizeRequest(req *model.ProductionRequest, opts Options) (*model.ProductionRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("request cannot be nil")
	}

	out := *req
	out.Machines = append([]model.Machine(nil), req.Machines...)
	out.Parts = append([]model.Part(nil), req.Parts...)
	out.Constraints = append([]model.Constraint(nil), req.Constraints...)

	if out.APIVersion == "" {
		out.APIVersion = model.APIVersion
	}
	if out.Kind == "" {
		out.Kind = model.KindRequest
	}
	if out.Metadata.Name == "" {
		out.Metadata.Name = "production-plan"
	}
	if out.Shift.DurationMinutes == 0 {
		out.Shift.DurationMinutes = opts.DefaultShiftMinutes
	}
	if out.Shift.DurationMinutes == 0 {
		out.Shift.DurationMinutes = model.DefaultShiftLength
	}

	ve := &ValidationErrors{}
	validateRequest(&out, opts.Mode, ve)
	if ve.HasErrors() {
		return nil, ve
	}
	return &out, nil
}

func validateRequest(req *model.ProductionRequest, mode Mode, ve *ValidationErrors) {
	if req.Kind != model.KindRequest {
		ve.Add("kind", "must be %s, got %q", model.KindRequest, req.Kind)
	}
	if req.Shift.DurationMinutes < 0 {
		ve.Add("shift.durationMinutes", "must be greater than 0")
	}
	if req.Shift.StartTime != "" {
		if _, err := model.ParseClock(req.Shift.StartTime); err != nil {
			ve.Add("shift.startTime", "%v", err)
		}
	}

	machines := make(map[string]bool, len(req.Machines))
	for i, m := range req.Machines {
		path := fmt.Sprintf("machines[%d]", i)
		switch {
		case m.Name == "":
			ve.Add(path+".name", "must not be empty")
		case machines[m.Name]:
			ve.Add(path+".name", "duplicate machine %q", m.Name)
		}
		machines[m.Name] = true

		if m.Capacity <= 0 {
			ve.Add(path+".capacity", "must be greater than 0")
		}
		if m.PlannedDowntimeMinutes < 0 {
			ve.Add(path+".plannedDowntimeMinutes", "must not be negative")
		}
		for j, w := range m.Unavailability {
			if w.End <= w.Start || w.Start < 0 {
				ve.Add(fmt.Sprintf("%s.unavailability[%d]", path, j), "window %s is empty or negative", w)
			}
		}
	}

	parts := make(map[string]bool, len(req.Parts))
	for i, p := range req.Parts {
		path := fmt.Sprintf("parts[%d]", i)
		switch {
		case p.Name == "":
			ve.Add(path+".name", "must not be empty")
		case parts[p.Name]:
			ve.Add(path+".name", "duplicate part %q", p.Name)
		}
		parts[p.Name] = true

		if p.TargetQuantity <= 0 && mode == ModeFresh {
			ve.Add(path+".targetQuantity", "must be greater than 0")
			ve.missingQuantity = true
		}
		if p.AlreadyProduced < 0 {
			ve.Add(path+".alreadyProduced", "must not be negative")
		}
		if len(p.Operations) == 0 {
			ve.Add(path+".operations", "at least one operation is required")
		}

		steps := make(map[string]bool, len(p.Operations))
		for j, op := range p.Operations {
			opPath := fmt.Sprintf("%s.operations[%d]", path, j)
			switch {
			case op.StepName == "":
				ve.Add(opPath+".stepName", "must not be empty")
			case steps[op.StepName]:
				ve.Add(opPath+".stepName", "duplicate step %q", op.StepName)
			}
			steps[op.StepName] = true

			if op.LowestPress.Capacity <= 0 {
				ve.Add(opPath+".lowestPress", "must be greater than 0")
			}
			if op.DieSettingTime <= 0 {
				ve.Add(opPath+".dieSettingTime", "must be greater than 0")
			}
			if op.TimeFor50Pcs <= 0 {
				ve.Add(opPath+".timeFor50Pcs", "must be greater than 0")
			}
		}

		for _, name := range expand.UnknownSelections(p) {
			ve.Add(path+".selectedOperations", "unknown operation %q", name)
		}
	}

	for i, c := range req.Constraints {
		path := fmt.Sprintf("constraints[%d]", i)
		if !machines[c.MachineName] {
			ve.Add(path+".machineName", "unknown machine %q", c.MachineName)
		}
		if c.End <= c.Start || c.Start < 0 {
			ve.Add(path, "window %s is empty or negative", c.Window())
		}
	}
}
