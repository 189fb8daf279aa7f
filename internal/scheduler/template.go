package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Template errors.
var (
	ErrEmptyTemplate   = errors.New("slot template must have at least one slot")
	ErrInvalidSlotTime = errors.New("slot time must be in HH:MM format")
	ErrSlotEndBefore   = errors.New("slot end must be after slot start")
	ErrSlotOverlap     = errors.New("slots overlap")
)

const minutesPerDay = 24 * 60

// Slot is a reusable daily time window, in minutes since midnight.
type Slot struct {
	Start int
	End   int
}

// ParseSlot parses a slot from "HH:MM" start and end times.
// "24:00" is accepted as an end time.
func ParseSlot(start, end string) (Slot, error) {
	s, err := parseClock(start)
	if err != nil {
		return Slot{}, fmt.Errorf("start %q: %w", start, err)
	}
	e, err := parseClock(end)
	if err != nil {
		return Slot{}, fmt.Errorf("end %q: %w", end, err)
	}
	return Slot{Start: s, End: e}, nil
}

// On returns the concrete start and end of the slot on the given day.
// day is expected to be midnight; its location is used.
func (s Slot) On(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	start := time.Date(y, m, d, s.Start/60, s.Start%60, 0, 0, loc)
	end := time.Date(y, m, d, s.End/60, s.End%60, 0, 0, loc)
	return start, end
}

// String returns the slot as "HH:MM-HH:MM".
func (s Slot) String() string {
	return FormatClock(s.Start) + "-" + FormatClock(s.End)
}

// Template is the ordered list of daily slots. Order is strict priority:
// earlier entries are always preferred on a given day.
type Template []Slot

// DefaultTemplate returns the five two-hour windows used when nothing is configured.
func DefaultTemplate() Template {
	return Template{
		{Start: 9 * 60, End: 11 * 60},
		{Start: 11 * 60, End: 13 * 60},
		{Start: 14 * 60, End: 16 * 60},
		{Start: 16 * 60, End: 18 * 60},
		{Start: 18 * 60, End: 20 * 60},
	}
}

// ParseTemplate parses "HH:MM-HH:MM" entries into a validated Template.
func ParseTemplate(specs []string) (Template, error) {
	t := make(Template, 0, len(specs))
	for _, spec := range specs {
		start, end, ok := strings.Cut(strings.TrimSpace(spec), "-")
		if !ok {
			return nil, fmt.Errorf("slot %q: expected HH:MM-HH:MM", spec)
		}
		slot, err := ParseSlot(strings.TrimSpace(start), strings.TrimSpace(end))
		if err != nil {
			return nil, fmt.Errorf("slot %q: %w", spec, err)
		}
		t = append(t, slot)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the template is non-empty, every slot ends after it
// starts within one day, and no two slots share any time.
func (t Template) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTemplate
	}
	for i, s := range t {
		if s.Start < 0 || s.End > minutesPerDay {
			return fmt.Errorf("slot %d (%s): %w", i, s, ErrInvalidSlotTime)
		}
		if s.End <= s.Start {
			return fmt.Errorf("slot %d (%s): %w", i, s, ErrSlotEndBefore)
		}
		for j := range i {
			o := t[j]
			if s.Start < o.End && o.Start < s.End {
				return fmt.Errorf("%w: %s and %s", ErrSlotOverlap, o, s)
			}
		}
	}
	return nil
}

// VisibleRange returns the earliest slot start and the latest slot end, in
// minutes since midnight. Calendar surfaces use it as their visible hours so
// the rendering stays consistent with the template.
func (t Template) VisibleRange() (start, end int) {
	if len(t) == 0 {
		return 0, 0
	}
	start, end = t[0].Start, t[0].End
	for _, s := range t[1:] {
		start = min(start, s.Start)
		end = max(end, s.End)
	}
	return start, end
}

// Strings returns the template as "HH:MM-HH:MM" entries.
func (t Template) Strings() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.String()
	}
	return out
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// parseClock parses "HH:MM" to minutes since midnight.
func parseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidSlotTime
	}
	if s == "24:00" {
		return minutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, ErrInvalidSlotTime
	}
	return t.Hour()*60 + t.Minute(), nil
}
