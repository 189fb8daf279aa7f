package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/javiermolinar/notecal/internal/calendar"
	"github.com/javiermolinar/notecal/internal/dateutil"
	"github.com/javiermolinar/notecal/internal/scheduler"
	"github.com/javiermolinar/notecal/internal/source"
)

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

// runOptions are the flags shared by schedule and watch.
type runOptions struct {
	sourcePath string
	sourceKind string
	today      string
	hide       []string
	start      string
	end        string
	strict     bool
	strictSet  bool
	icsPath    string
	verbose    bool
}

// run is the outcome of one scheduling pass.
type run struct {
	now     time.Time
	today   time.Time
	result  *scheduler.Result
	view    *calendar.View
	missing []string // --hide ids with no event
}

func (a *App) addRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringVarP(&opts.sourcePath, "source", "s", "", "Items file or database (defaults to config source.path)")
	cmd.Flags().StringVar(&opts.sourceKind, "kind", "", "Source kind: file or sqlite (defaults to config, inferred from extension)")
	cmd.Flags().StringVar(&opts.today, "today", "", "Day the schedule starts from (today, tomorrow, monday, next-friday, YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.hide, "hide", nil, "Event ids to remove from the calendar")
	cmd.Flags().StringVar(&opts.start, "start", "", "Only show events from this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.end, "end", "", "Only show events up to this date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Only use slots that end before the deadline")
	cmd.Flags().StringVar(&opts.icsPath, "ics", "", "Also write the calendar to this .ics file")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Show full task text and item names")
}

func (a *App) scheduleCmd() *cobra.Command {
	var (
		opts     runOptions
		asJSON   bool
		copyText bool
		noColor  bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Place item tasks into calendar slots",
		Long: `Read items from the configured source and place every task into the
first free slot between today and the item's deadline.

Items are taken in deadline order. Tasks that cannot be placed before their
deadline are listed at the end and never appear in the calendar.`,
		Example: `  notecal schedule
  notecal schedule --source notes.yaml --today 2025-01-06
  notecal schedule --json
  notecal schedule --ics week.ics --hide a1-0,a1-1`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor {
				DisableColor()
			}
			opts.strictSet = cmd.Flags().Changed("strict")

			r, err := a.runSchedule(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(r.view); err != nil {
					return fmt.Errorf("encoding calendar: %w", err)
				}
			} else {
				writeRun(out, r, textOpts{width: termWidth(), verbose: opts.verbose})
			}

			if opts.icsPath != "" {
				if err := writeICS(opts.icsPath, r); err != nil {
					return err
				}
				if !asJSON {
					fmt.Fprintf(out, "Calendar written to %s\n", opts.icsPath)
				}
			}

			if copyText {
				if err := copyToClipboard(plainSchedule(r.view)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				if !asJSON {
					fmt.Fprintln(out, formatOK("Schedule copied to clipboard."))
				}
			}
			return nil
		},
	}

	a.addRunFlags(cmd, &opts)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the calendar as JSON")
	cmd.Flags().BoolVar(&copyText, "copy", false, "Copy the schedule to the clipboard as plain text")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	return cmd
}

// runSchedule loads records, schedules them from scratch and builds the view.
func (a *App) runSchedule(ctx context.Context, opts runOptions) (*run, error) {
	loc, err := a.config.Location()
	if err != nil {
		return nil, err
	}
	now := a.now().In(loc)

	today, err := dateutil.ParseReferenceDay(opts.today, now)
	if err != nil {
		return nil, fmt.Errorf("parsing --today %q: %w", opts.today, err)
	}

	tmpl, err := a.config.Template()
	if err != nil {
		return nil, fmt.Errorf("loading slot template: %w", err)
	}

	kind, path := a.sourceFor(opts)
	src, err := source.Open(kind, path, a.config.Source.Table)
	if err != nil {
		return nil, fmt.Errorf("opening source: %w", err)
	}
	defer func() { _ = src.Close() }()

	records, err := src.Records(ctx)
	if err != nil {
		a.log.Error("loading source", err)
		return nil, fmt.Errorf("loading items: %w", err)
	}
	a.log.Log("SOURCE_LOADED", map[string]any{
		"path":    path,
		"kind":    kind,
		"records": len(records),
	})

	schedOpts := a.config.SchedulerOptions()
	if opts.strictSet {
		schedOpts.StrictDeadline = opts.strict
	}
	res := scheduler.New(tmpl, schedOpts).ScheduleRecords(today, records)
	a.logResult(today, res)

	view := calendar.New(res.Events, tmpl)
	var missing []string
	for _, id := range opts.hide {
		if !view.Remove(id) {
			missing = append(missing, id)
		}
	}

	if opts.start != "" || opts.end != "" {
		start := opts.start
		if start == "" {
			start = today.Format("2006-01-02")
		}
		dr, err := dateutil.NewDateRange(start, opts.end, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing date range: %w", err)
		}
		view.Filter(func(e scheduler.Event) bool { return dr.Contains(e.Start) })
	}

	return &run{now: now, today: today, result: res, view: view, missing: missing}, nil
}

func (a *App) sourceFor(opts runOptions) (kind, path string) {
	kind, path = a.config.Source.Kind, a.config.Source.Path
	if opts.sourcePath != "" {
		path = opts.sourcePath
		// A path given on the command line picks its own kind.
		kind = ""
	}
	if opts.sourceKind != "" {
		kind = opts.sourceKind
	}
	return kind, path
}

func (a *App) logResult(today time.Time, res *scheduler.Result) {
	if !a.log.Enabled() {
		return
	}
	a.log.Log("SCHEDULE_RUN", map[string]any{
		"today":       today.Format("2006-01-02"),
		"events":      len(res.Events),
		"unscheduled": len(res.Unscheduled),
		"ineligible":  len(res.Ineligible),
	})
	for _, u := range res.Unscheduled {
		a.log.Log("TASK_UNSCHEDULED", map[string]any{
			"group":    u.GroupID,
			"index":    u.TaskIndex,
			"task":     u.Task,
			"deadline": u.Deadline.Format(time.RFC3339),
		})
	}
	for _, in := range res.Ineligible {
		a.log.Log("GROUP_INELIGIBLE", map[string]any{
			"group":  in.GroupID,
			"reason": in.Reason,
		})
	}
}

func writeICS(path string, r *run) error {
	if err := os.WriteFile(path, []byte(r.view.ICS(r.now)), 0o644); err != nil {
		return fmt.Errorf("writing calendar file: %w", err)
	}
	return nil
}
