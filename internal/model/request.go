package model

const (
	APIVersion         = "pressplan.io/v1"
	KindRequest        = "ProductionRequest"
	KindPlan           = "ProductionPlan"
	KindReport         = "PlanReport"
	DefaultShiftLength = 540
)

// ProductionRequest is the top-level input document
type ProductionRequest struct {
	APIVersion  string       `yaml:"apiVersion" json:"apiVersion"`
	Kind        string       `yaml:"kind" json:"kind"`
	Metadata    Metadata     `yaml:"metadata" json:"metadata"`
	Shift       ShiftSpec    `yaml:"shift" json:"shift"`
	Machines    []Machine    `yaml:"machines" json:"machines"`
	Parts       []Part       `yaml:"parts" json:"parts"`
	Constraints []Constraint `yaml:"constraints,omitempty" json:"constraints,omitempty"`
}

// Metadata holds standard object metadata
type Metadata struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ShiftSpec is the shift as written in a request
type ShiftSpec struct {
	DurationMinutes int    `yaml:"durationMinutes" json:"durationMinutes"`
	StartTime       string `yaml:"startTime,omitempty" json:"startTime,omitempty"`
}

// Constraint makes a machine unavailable for [Start, End)
type Constraint struct {
	MachineName string `yaml:"machineName" json:"machineName"`
	Start       int    `yaml:"start" json:"start"`
	End         int    `yaml:"end" json:"end"`
}

// Window returns the constraint as a window.
func (c Constraint) Window() Window {
	return Window{Start: c.Start, End: c.End}
}

// PartByName returns the named part.
func (r *ProductionRequest) PartByName(name string) (Part, bool) {
	for _, p := range r.Parts {
		if p.Name == name {
			return p, true
		}
	}
	return Part{}, false
}

// MachineByName returns the named machine.
func (r *ProductionRequest) MachineByName(name string) (Machine, bool) {
	for _, m := range r.Machines {
		if m.Name == name {
			return m, true
		}
	}
	return Machine{}, false
}
