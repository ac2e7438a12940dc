package model

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PiecesPerBatch is the batch size operation cycle times are quoted for.
const PiecesPerBatch = 50

// Operation is one stamping step of a part
type Operation struct {
	StepName       string  `yaml:"stepName" json:"stepName"`
	LowestPress    Tonnage `yaml:"lowestPress" json:"lowestPress"`
	DieSettingTime int     `yaml:"dieSettingTime" json:"dieSettingTime"`
	TimeFor50Pcs   float64 `yaml:"timeFor50Pcs" json:"timeFor50Pcs"`
}

// ProductionMinutes returns the whole minutes needed to press quantity pieces.
func (o Operation) ProductionMinutes(quantity int) int {
	if quantity <= 0 {
		return 0
	}
	raw := float64(quantity) * o.TimeFor50Pcs / PiecesPerBatch
	// absorb float noise like 20.000000000004
	return int(math.Ceil(raw - 1e-9))
}

// Part is a product that flows through its operations in order
type Part struct {
	Name               string      `yaml:"name" json:"name"`
	ID                 string      `yaml:"id,omitempty" json:"id,omitempty"`
	Description        string      `yaml:"description,omitempty" json:"description,omitempty"`
	Operations         []Operation `yaml:"operations" json:"operations"`
	SelectedOperations []string    `yaml:"selectedOperations,omitempty" json:"selectedOperations,omitempty"`
	Priority           int         `yaml:"priority" json:"priority"`
	TargetQuantity     int         `yaml:"targetQuantity" json:"targetQuantity"`
	AlreadyProduced    int         `yaml:"alreadyProduced,omitempty" json:"alreadyProduced,omitempty"`
}

// RemainingQuantity is max(0, target - already produced).
func (p Part) RemainingQuantity() int {
	return max(0, p.TargetQuantity-p.AlreadyProduced)
}

// Machine is a press on the shop floor
type Machine struct {
	Name                   string   `yaml:"name" json:"name"`
	Capacity               int      `yaml:"capacity" json:"capacity"`
	Available              bool     `yaml:"available" json:"available"`
	PlannedDowntimeMinutes int      `yaml:"plannedDowntimeMinutes,omitempty" json:"plannedDowntimeMinutes,omitempty"`
	Unavailability         []Window `yaml:"unavailability,omitempty" json:"unavailability,omitempty"`
}

// DownForShift reports whether the machine cannot be used at all this shift.
func (m Machine) DownForShift() bool {
	return !m.Available && m.PlannedDowntimeMinutes <= 0
}

// DowntimeWindow returns the planned downtime [0, d) if any.
func (m Machine) DowntimeWindow() (Window, bool) {
	if m.PlannedDowntimeMinutes <= 0 {
		return Window{}, false
	}
	return Window{Start: 0, End: m.PlannedDowntimeMinutes}, true
}

// Default die removal minutes after a production run: 10 for presses up to
// 50T, 15 above.
const (
	SmallPressCapacity       = 50
	SmallPressRemovalMinutes = 10
	LargePressRemovalMinutes = 15
)

// EligibleMachines returns the machines that can press an operation needing
// capacity tons, excluding machines down for the whole shift, ordered by
// capacity with ties kept in input order.
func EligibleMachines(machines []Machine, capacity int) []Machine {
	var out []Machine
	for _, m := range machines {
		if m.DownForShift() || m.Capacity < capacity {
			continue
		}
		out = append(out, m)
	}
	slices.SortStableFunc(out, func(a, b Machine) int {
		return a.Capacity - b.Capacity
	})
	return out
}

// Window is a half-open minute interval [Start, End)
type Window struct {
	Start int `yaml:"start" json:"start"`
	End   int `yaml:"end" json:"end"`
}

// Overlaps reports whether [start, end) intersects the window.
func (w Window) Overlaps(start, end int) bool {
	return start < w.End && w.Start < end
}

// Length returns the window length in minutes.
func (w Window) Length() int {
	return max(0, w.End-w.Start)
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d)", w.Start, w.End)
}

// Shift carries the planning horizon and the universal break.
type Shift struct {
	DurationMinutes int
	BreakMinutes    int
	StartTime       string
}

// DefaultBreakMinutes is the length of the mid-shift break.
const DefaultBreakMinutes = 30

// NewShift returns a shift with the standard mid-shift break.
func NewShift(durationMinutes int) Shift {
	return Shift{DurationMinutes: durationMinutes, BreakMinutes: DefaultBreakMinutes}
}

// BreakWindow is centred on the shift midpoint and recomputed from the duration every call.
func (s Shift) BreakWindow() Window {
	if s.BreakMinutes <= 0 || s.DurationMinutes <= 0 {
		return Window{}
	}
	mid := s.DurationMinutes / 2
	start := max(0, mid-s.BreakMinutes/2)
	end := min(s.DurationMinutes, start+s.BreakMinutes)
	return Window{Start: start, End: end}
}

// Tonnage is a minimum press requirement. It is written either as a number
// or as a press name such as "Press-75T".
type Tonnage struct {
	Capacity int
	Press    string
}

var tonnagePattern = regexp.MustCompile(`\d+`)

// ParseTonnage reads "75", "75T" or "Press-75T".
func ParseTonnage(s string) (Tonnage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Tonnage{}, fmt.Errorf("empty press requirement")
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Tonnage{Capacity: n}, nil
	}
	digits := tonnagePattern.FindString(s)
	if digits == "" {
		return Tonnage{}, fmt.Errorf("press requirement %q has no tonnage", s)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Tonnage{}, fmt.Errorf("press requirement %q: %w", s, err)
	}
	return Tonnage{Capacity: n, Press: s}, nil
}

// Label is the press name if one was given, otherwise "<n>T".
func (t Tonnage) Label() string {
	if t.Press != "" {
		return t.Press
	}
	return fmt.Sprintf("%dT", t.Capacity)
}

func (t Tonnage) String() string {
	return t.Label()
}

func (t Tonnage) MarshalJSON() ([]byte, error) {
	if t.Press != "" {
		return json.Marshal(t.Press)
	}
	return json.Marshal(t.Capacity)
}

func (t *Tonnage) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*t = Tonnage{Capacity: int(n)}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("lowestPress must be a number or press name: %w", err)
	}
	parsed, err := ParseTonnage(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Tonnage) MarshalYAML() (interface{}, error) {
	if t.Press != "" {
		return t.Press, nil
	}
	return t.Capacity, nil
}

func (t *Tonnage) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("lowestPress must be a scalar (line %d)", node.Line)
	}
	parsed, err := ParseTonnage(node.Value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
