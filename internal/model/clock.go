package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock reads "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock time %q, want HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || len(m) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hours*60 + minutes, nil
}

// ClockAt formats a shift minute as wall-clock HH:MM from the shift start.
// Without a usable start time the minute offset is shown as "+N".
func ClockAt(start string, minute int) string {
	base, err := ParseClock(start)
	if start == "" || err != nil {
		return fmt.Sprintf("+%d", minute)
	}
	t := (base + minute) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", t/60, t%60)
}

// Clock formats a minute of the plan's shift.
func (p *Plan) Clock(minute int) string {
	return ClockAt(p.Spec.StartTime, minute)
}
