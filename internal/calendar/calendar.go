// Package calendar holds the rendered view of a schedule: the events shown,
// the visible hours, and exports for calendar clients.
package calendar

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/javiermolinar/notecal/internal/scheduler"
)

// Remover is the capability a rendering surface gets for user-initiated
// deletion. Removal only affects the view it is called on.
type Remover interface {
	Remove(id string) bool
}

// Range is the visible time range of the calendar, as "HH:MM".
type Range struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// View is the list of events currently shown to the user.
type View struct {
	events []scheduler.Event
	rng    Range
}

// New creates a View over a copy of events. The visible range comes from
// the same template the events were scheduled with.
func New(events []scheduler.Event, t scheduler.Template) *View {
	start, end := t.VisibleRange()
	return &View{
		events: slices.Clone(events),
		rng:    Range{Min: scheduler.FormatClock(start), Max: scheduler.FormatClock(end)},
	}
}

// Events returns a copy of the events in the view.
func (v *View) Events() []scheduler.Event {
	return slices.Clone(v.events)
}

// Len returns the number of events in the view.
func (v *View) Len() int {
	return len(v.events)
}

// Range returns the visible time range.
func (v *View) Range() Range {
	return v.rng
}

// Remove drops the event with the given id from the view.
// It returns false if no such event is shown.
func (v *View) Remove(id string) bool {
	i := slices.IndexFunc(v.events, func(e scheduler.Event) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	v.events = slices.Delete(v.events, i, i+1)
	return true
}

// Filter keeps only the events for which keep returns true.
func (v *View) Filter(keep func(scheduler.Event) bool) {
	v.events = slices.DeleteFunc(v.events, func(e scheduler.Event) bool { return !keep(e) })
}

type jsonEvent struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end"`
	AllDay          bool   `json:"allDay"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty"`
}

type jsonView struct {
	Range  Range       `json:"range"`
	Events []jsonEvent `json:"events"`
}

// MarshalJSON encodes the view in the event-input shape calendar widgets
// consume, with RFC3339 timestamps.
func (v *View) MarshalJSON() ([]byte, error) {
	out := jsonView{Range: v.rng, Events: make([]jsonEvent, 0, len(v.events))}
	for _, e := range v.events {
		out.Events = append(out.Events, jsonEvent{
			ID:              e.ID,
			Title:           e.Title,
			Start:           e.Start.Format(time.RFC3339),
			End:             e.End.Format(time.RFC3339),
			AllDay:          e.AllDay,
			BackgroundColor: e.Color,
			BorderColor:     e.Color,
		})
	}
	return json.Marshal(out)
}
