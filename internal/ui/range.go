package ui

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/notecal/internal/calendar"
)

func (a *App) rangeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Show the daily slots and the visible calendar hours",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tmpl, err := a.config.Template()
			if err != nil {
				return fmt.Errorf("loading slot template: %w", err)
			}
			rng := calendar.New(nil, tmpl).Range()

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.Marshal(rng)
				if err != nil {
					return fmt.Errorf("encoding range: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			fmt.Fprintf(out, "%s %s-%s\n", formatHeader("Visible hours:"), rng.Min, rng.Max)
			for i, slot := range tmpl {
				fmt.Fprintf(out, "  %d  %s\n", i, formatTime(slot.String()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the range as JSON")
	return cmd
}
