package ui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/notecal/internal/watch"
)

func (a *App) watchCmd() *cobra.Command {
	var (
		opts     runOptions
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reschedule whenever the items source changes",
		Long: `Print the schedule, then rebuild it from scratch every time the items
source is written. For a SQLite source, writes to its -wal file count too.
Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.strictSet = cmd.Flags().Changed("strict")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()

			refresh := func() {
				r, err := a.runSchedule(ctx, opts)
				if err != nil {
					fmt.Fprintf(errOut, "error: %v\n", err)
					return
				}
				fmt.Fprintln(out, formatMuted("── "+a.now().Format("15:04:05")+" ──"))
				writeRun(out, r, textOpts{width: termWidth(), verbose: opts.verbose})
				if opts.icsPath != "" {
					if err := writeICS(opts.icsPath, r); err != nil {
						fmt.Fprintf(errOut, "error: %v\n", err)
					}
				}
			}

			refresh()

			_, path := a.sourceFor(opts)
			return watch.Run(ctx, path, debounce, refresh, func(err error) {
				a.log.Error("watching source", err)
				fmt.Fprintf(errOut, "watch error: %v\n", err)
			})
		},
	}

	a.addRunFlags(cmd, &opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Wait this long after the last change before rescheduling")

	return cmd
}
