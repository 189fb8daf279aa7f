package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/notecal/internal/calendar"
	"github.com/javiermolinar/notecal/internal/scheduler"
)

const dayHeaderLayout = "Mon Jan 2, 2006"

// textOpts configures the terminal rendering of a run.
type textOpts struct {
	width   int
	verbose bool
}

// writeRun prints the calendar grouped by day, then anything that could not
// be scheduled.
func writeRun(w io.Writer, r *run, opts textOpts) {
	events := r.view.Events()
	if len(events) == 0 {
		fmt.Fprintln(w, "No events scheduled.")
	}

	var currentDay string
	for _, e := range events {
		day := e.Start.Format(dayHeaderLayout)
		if day != currentDay {
			if currentDay != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, formatHeader(day))
			fmt.Fprintln(w, formatMuted(strings.Repeat("─", len(day))))
			currentDay = day
		}
		fmt.Fprintln(w, eventLine(e, opts))
	}

	if len(events) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatOK(fmt.Sprintf("%d %s scheduled from %s.",
			len(events), plural(len(events), "task", "tasks"), r.today.Format(dayHeaderLayout))))
	}

	writeUnscheduled(w, r.result.Unscheduled)
	writeIneligible(w, r.result.Ineligible)

	for _, id := range r.missing {
		fmt.Fprintln(w, formatWarn(fmt.Sprintf("No event with id %s to hide.", id)))
	}
}

// eventLine renders "  ■ 09:00-11:00  Title  (id)" fitted to the width.
func eventLine(e scheduler.Event, opts textOpts) string {
	prefix := "  " + swatch(e.Color) + " " + formatTime(slotLabel(e)) + "  "
	suffix := "  " + formatMuted("("+e.ID+")")

	text := e.Title
	if opts.verbose {
		text = e.Task
		if e.GroupName != "" {
			text += " " + formatMuted("· "+e.GroupName)
		}
	}

	width := opts.width - ansi.StringWidth(prefix) - ansi.StringWidth(suffix)
	return prefix + fit(text, width) + suffix
}

func writeUnscheduled(w io.Writer, tasks []scheduler.Unscheduled) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, formatWarn(fmt.Sprintf("%d %s could not be placed before the deadline:",
		len(tasks), plural(len(tasks), "task", "tasks"))))
	for _, u := range tasks {
		fmt.Fprintf(w, "  %s %s %s\n",
			formatMuted(scheduler.EventID(u.GroupID, u.TaskIndex)),
			u.Task,
			formatMuted("(due "+u.Deadline.Format("2006-01-02 15:04")+")"),
		)
	}
}

func writeIneligible(w io.Writer, groups []scheduler.Ineligible) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, g := range groups {
		id := g.GroupID
		if id == "" {
			id = "<no id>"
		}
		fmt.Fprintln(w, formatMuted(fmt.Sprintf("Skipped %s: %s", id, g.Reason)))
	}
}

// plainSchedule renders one uncolored line per event, for the clipboard.
func plainSchedule(v *calendar.View) string {
	var b strings.Builder
	for _, e := range v.Events() {
		fmt.Fprintf(&b, "%s %s %s\n", e.Start.Format("2006-01-02"), slotLabel(e), e.Title)
	}
	return b.String()
}

func slotLabel(e scheduler.Event) string {
	return e.Start.Format("15:04") + "-" + e.End.Format("15:04")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
