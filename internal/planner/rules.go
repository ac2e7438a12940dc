package planner

import (
	"fmt"

	"github.com/sourceplane/pressplan/internal/model"
)

// Rules holds the numeric scheduling policy
type Rules struct {
	LockInMinutes        int
	BreakMinutes         int
	SmallPressCapacity   int
	SmallPressRemoval    int
	LargePressRemoval    int
	SizeToleranceMinutes int
}

// DefaultRules returns the shop floor's standard policy.
func DefaultRules() Rules {
	return Rules{
		LockInMinutes:        45,
		BreakMinutes:         model.DefaultBreakMinutes,
		SmallPressCapacity:   model.SmallPressCapacity,
		SmallPressRemoval:    model.SmallPressRemovalMinutes,
		LargePressRemoval:    model.LargePressRemovalMinutes,
		SizeToleranceMinutes: 0,
	}
}

// Validate checks the rules for impossible values
func (r Rules) Validate() error {
	if r.LockInMinutes < 0 {
		return fmt.Errorf("lock-in window must be >= 0, got %d", r.LockInMinutes)
	}
	if r.BreakMinutes < 0 {
		return fmt.Errorf("break length must be >= 0, got %d", r.BreakMinutes)
	}
	if r.SmallPressRemoval < 0 || r.LargePressRemoval < 0 {
		return fmt.Errorf("die removal minutes must be >= 0")
	}
	if r.SizeToleranceMinutes < 0 {
		return fmt.Errorf("size tolerance must be >= 0, got %d", r.SizeToleranceMinutes)
	}
	return nil
}

// RemovalBuffer returns the die removal minutes reserved after production on a press.
func (r Rules) RemovalBuffer(capacity int) int {
	if capacity <= r.SmallPressCapacity {
		return r.SmallPressRemoval
	}
	return r.LargePressRemoval
}

// Shift builds a shift of the given length using the configured break.
func (r Rules) Shift(durationMinutes int, startTime string) model.Shift {
	return model.Shift{
		DurationMinutes: durationMinutes,
		BreakMinutes:    r.BreakMinutes,
		StartTime:       startTime,
	}
}
