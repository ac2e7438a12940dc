package timeline

import (
	"fmt"
	"slices"

	"github.com/sourceplane/pressplan/internal/model"
)

// BlockKind labels why a window on a machine is blocked
type BlockKind string

const (
	BlockDowntime    BlockKind = "downtime"
	BlockBreak       BlockKind = "break"
	BlockUnavailable BlockKind = "unavailable"
	BlockConstraint  BlockKind = "constraint"
)

// Block is a labelled blocked window
type Block struct {
	model.Window
	Kind BlockKind
}

// Timeline tracks one machine's blocked windows, busy intervals and next-free time
// for the duration of a single scheduling pass.
type Timeline struct {
	machine  model.Machine
	horizon  int
	blocked  []Block
	busy     []model.Window
	nextFree int
}

// New builds the timeline of a machine for a shift. extra holds hard
// unavailability windows supplied by the caller for this machine.
func New(machine model.Machine, shift model.Shift, extra []model.Window) *Timeline {
	t := &Timeline{
		machine: machine,
		horizon: shift.DurationMinutes,
	}

	if w, ok := machine.DowntimeWindow(); ok {
		t.block(w, BlockDowntime)
	}
	if brk := shift.BreakWindow(); brk.Length() > 0 {
		t.block(brk, BlockBreak)
	}
	for _, w := range machine.Unavailability {
		t.block(w, BlockUnavailable)
	}
	for _, w := range extra {
		t.block(w, BlockConstraint)
	}

	slices.SortStableFunc(t.blocked, func(a, b Block) int {
		return a.Start - b.Start
	})
	return t
}

func (t *Timeline) block(w model.Window, kind BlockKind) {
	if w.Length() == 0 {
		return
	}
	t.blocked = append(t.blocked, Block{Window: w, Kind: kind})
}

// Machine returns the machine this timeline belongs to.
func (t *Timeline) Machine() model.Machine {
	return t.machine
}

// NextFree returns the first minute a new task may start.
func (t *Timeline) NextFree() int {
	return t.nextFree
}

// Blocked returns the blocked windows sorted by start.
func (t *Timeline) Blocked() []Block {
	return slices.Clone(t.blocked)
}

// EarliestStart finds the first start >= max(ready, next-free) where
// [start, start+duration) avoids every blocked and busy window and ends
// within the shift. ok is false when no such start exists.
func (t *Timeline) EarliestStart(ready, duration int) (start int, ok bool) {
	if duration <= 0 {
		return 0, false
	}
	start = max(ready, t.nextFree, 0)

	for {
		moved := false
		for _, b := range t.blocked {
			if b.Overlaps(start, start+duration) {
				start = b.End
				moved = true
			}
		}
		for _, w := range t.busy {
			if w.Overlaps(start, start+duration) {
				start = w.End
				moved = true
			}
		}
		if start+duration > t.horizon {
			return start, false
		}
		if !moved {
			return start, true
		}
	}
}

// Reserve books [start, end) and moves next-free to end plus the hold-off
// minutes that must elapse before the next task.
func (t *Timeline) Reserve(start, end, holdOff int) error {
	if end <= start {
		return fmt.Errorf("invalid reservation on %s: [%d,%d)", t.machine.Name, start, end)
	}
	for _, w := range t.busy {
		if w.Overlaps(start, end) {
			return fmt.Errorf("reservation [%d,%d) on %s overlaps busy %s", start, end, t.machine.Name, w)
		}
	}

	w := model.Window{Start: start, End: end}
	i, _ := slices.BinarySearchFunc(t.busy, w, func(a, b model.Window) int {
		return a.Start - b.Start
	})
	t.busy = slices.Insert(t.busy, i, w)
	t.nextFree = max(t.nextFree, end+holdOff)
	return nil
}

// Seed moves next-free forward to at least minute.
func (t *Timeline) Seed(minute int) {
	t.nextFree = max(t.nextFree, minute)
}

// BlockedAt returns the blocked window covering minute, if any.
func (t *Timeline) BlockedAt(minute int) (Block, bool) {
	for _, b := range t.blocked {
		if b.Overlaps(minute, minute+1) {
			return b, true
		}
	}
	return Block{}, false
}

// BlockedMinutes sums the blocked minutes inside the shift, counting overlaps once.
func (t *Timeline) BlockedMinutes() int {
	total, cursor := 0, 0
	for _, b := range t.blocked {
		s := max(b.Start, cursor, 0)
		e := min(b.End, t.horizon)
		if e > s {
			total += e - s
		}
		cursor = max(cursor, e)
	}
	return total
}
