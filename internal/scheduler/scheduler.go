// Package scheduler places Task Group tasks into daily slots between today
// and each group's deadline.
package scheduler

import (
	"slices"
	"strconv"
	"time"

	"github.com/javiermolinar/notecal/internal/dateutil"
	"github.com/javiermolinar/notecal/internal/group"
)

// DefaultColors is the palette cycled across groups, in deadline order.
var DefaultColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEEAD",
	"#D4A5A5", "#9B59B6", "#3498DB", "#E67E22", "#2ECC71",
}

// Ineligibility reasons.
const (
	ReasonNoDeadline      = "no deadline"
	ReasonNoTasks         = "no tasks"
	ReasonInvalidDeadline = "invalid deadline"
	ReasonInvalidRecord   = "invalid record"
	ReasonDuplicateID     = "duplicate id"
)

// Event is one task's placement, ready for a calendar surface.
type Event struct {
	ID        string
	GroupID   string
	GroupName string
	TaskIndex int
	Title     string // display form
	Task      string // full task text
	Slot      int    // template index
	Start     time.Time
	End       time.Time
	AllDay    bool
	Color     string
}

// Day returns the event's calendar day at midnight.
func (e Event) Day() time.Time {
	return dateutil.TruncateToDay(e.Start)
}

// Unscheduled is a task that found no free slot on or before its deadline.
type Unscheduled struct {
	GroupID   string
	TaskIndex int
	Task      string
	Deadline  time.Time
}

// Ineligible is a group or record that produced no events before scheduling.
type Ineligible struct {
	GroupID string
	Reason  string
}

// Result is the output of one scheduling run.
type Result struct {
	Events      []Event
	Unscheduled []Unscheduled
	Ineligible  []Ineligible
}

// Options tunes a Scheduler.
type Options struct {
	// StrictDeadline only uses slots that end at or before the deadline.
	// When false, any slot on a day whose midnight is not after the deadline
	// may be used.
	StrictDeadline bool

	// Colors is cycled across groups. Empty means DefaultColors.
	Colors []string
}

// Scheduler assigns tasks to slots of a fixed template.
// It holds no state between runs and is safe for concurrent use.
type Scheduler struct {
	template Template
	strict   bool
	colors   []string
}

// New creates a Scheduler. The template is assumed to be validated.
func New(t Template, opts Options) *Scheduler {
	colors := opts.Colors
	if len(colors) == 0 {
		colors = DefaultColors
	}
	return &Scheduler{
		template: slices.Clone(t),
		strict:   opts.StrictDeadline,
		colors:   slices.Clone(colors),
	}
}

// Template returns a copy of the slot template.
func (s *Scheduler) Template() Template {
	return slices.Clone(s.template)
}

// EventID derives the id of the event for task index of groupID.
// The suffix after the last "-" is always the decimal index, so distinct
// (group, index) pairs never share an id.
func EventID(groupID string, index int) string {
	return groupID + "-" + strconv.Itoa(index)
}

// ScheduleRecords parses upstream records and schedules them.
// Deadlines without a zone are read in today's location. Records that fail
// to parse are reported as ineligible, never as errors.
func (s *Scheduler) ScheduleRecords(today time.Time, records []group.Record) *Result {
	groups := make([]group.Group, 0, len(records))
	var rejected []Ineligible
	for _, r := range records {
		g, err := group.FromRecord(r, today.Location())
		if err != nil {
			reason := ReasonInvalidRecord
			if g.ID != "" {
				reason = ReasonInvalidDeadline
			}
			rejected = append(rejected, Ineligible{GroupID: r.ID, Reason: reason})
			continue
		}
		groups = append(groups, g)
	}

	res := s.Schedule(today, groups)
	res.Ineligible = append(rejected, res.Ineligible...)
	return res
}

// Schedule places every task of every eligible group.
//
// Groups are taken in deadline order (stable for equal deadlines), tasks in
// their given order. Each task gets the first free template slot on the
// earliest day from today on; a full day moves the search to the next day.
// A task that reaches a day past its deadline is left out of Events and
// listed in Unscheduled. All groups share one ledger.
//
// Group ids must be unique for event ids to be: a group reusing the id of
// an earlier group in the input is ineligible.
func (s *Scheduler) Schedule(today time.Time, groups []group.Group) *Result {
	start := dateutil.TruncateToDay(today)
	res := &Result{}

	seen := make(map[string]bool, len(groups))
	eligible := make([]group.Group, 0, len(groups))
	for _, g := range groups {
		dup := seen[g.ID]
		seen[g.ID] = true
		switch {
		case dup:
			res.Ineligible = append(res.Ineligible, Ineligible{GroupID: g.ID, Reason: ReasonDuplicateID})
		case g.Deadline == nil:
			res.Ineligible = append(res.Ineligible, Ineligible{GroupID: g.ID, Reason: ReasonNoDeadline})
		case len(g.Tasks) == 0:
			res.Ineligible = append(res.Ineligible, Ineligible{GroupID: g.ID, Reason: ReasonNoTasks})
		default:
			eligible = append(eligible, g)
		}
	}

	slices.SortStableFunc(eligible, func(a, b group.Group) int {
		return a.Deadline.Compare(*b.Deadline)
	})

	ledger := NewLedger()
	for pos, g := range eligible {
		color := s.colors[pos%len(s.colors)]
		deadline := *g.Deadline

		// Days before cursor were full when the previous task was placed and
		// the ledger only grows, so the search can resume there.
		cursor := start
		for i, text := range g.Tasks {
			ev, day, ok := s.place(ledger, cursor, deadline)
			if !ok {
				res.Unscheduled = append(res.Unscheduled, Unscheduled{
					GroupID:   g.ID,
					TaskIndex: i,
					Task:      text,
					Deadline:  deadline,
				})
				continue
			}
			cursor = day

			ev.ID = EventID(g.ID, i)
			ev.GroupID = g.ID
			ev.GroupName = g.Name
			ev.TaskIndex = i
			ev.Title = group.TruncateTitle(text)
			ev.Task = text
			ev.Color = color
			res.Events = append(res.Events, ev)
		}
	}

	return res
}

// place finds the first free slot from day up to the deadline and claims it.
// It returns the event timing and the day used.
func (s *Scheduler) place(ledger *Ledger, day, deadline time.Time) (Event, time.Time, bool) {
	for !day.After(deadline) {
		var fits func(Slot) bool
		if s.strict {
			candidate := day
			fits = func(slot Slot) bool {
				_, end := slot.On(candidate)
				return !end.After(deadline)
			}
		}

		if idx, ok := ledger.Claim(day, s.template, fits); ok {
			start, end := s.template[idx].On(day)
			return Event{Slot: idx, Start: start, End: end}, day, true
		}
		day = day.AddDate(0, 0, 1)
	}
	return Event{}, day, false
}
