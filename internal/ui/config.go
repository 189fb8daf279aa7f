package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/notecal/internal/config"
)

func (a *App) configCmd() *cobra.Command {
	var (
		initOnly bool
		edit     bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit configuration",
		Long: `Show the configuration in effect.

With --init, writes a config file with default values if none exists.
With --edit, prompts for each value and saves the result.`,
		Example: `  notecal config
  notecal config --init
  notecal config --edit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", a.configPath)

			_, statErr := os.Stat(a.configPath)
			isNew := os.IsNotExist(statErr)

			if initOnly {
				if !isNew {
					fmt.Fprintln(out, "Config file already exists.")
					return nil
				}
				if err := config.Default().SaveTo(a.configPath); err != nil {
					return fmt.Errorf("saving config: %w", err)
				}
				fmt.Fprintf(out, "Created %s\n", a.configPath)
				return nil
			}

			printConfig(out, a.config)
			if !edit {
				return nil
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			fmt.Fprintln(out)
			if err := editConfig(out, reader, a.config); err != nil {
				return err
			}
			if err := a.config.SaveTo(a.configPath); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}

			fmt.Fprintln(out, "\nConfiguration saved!")
			return nil
		},
	}

	cmd.Flags().BoolVar(&initOnly, "init", false, "Create the config file with defaults if missing")
	cmd.Flags().BoolVar(&edit, "edit", false, "Edit the configuration interactively")
	cmd.MarkFlagsMutuallyExclusive("init", "edit")

	return cmd
}

// editConfig prompts for every setting, keeping the current value on empty
// input, and validates the result.
func editConfig(w io.Writer, reader *bufio.Reader, cfg *config.Config) error {
	edited := *cfg
	edited.Schedule.Slots = promptSlice(w, reader, "Slots (HH:MM-HH:MM, comma-separated)", cfg.Schedule.Slots)
	edited.Schedule.StrictDeadline = promptBool(w, reader, "Strict deadlines", cfg.Schedule.StrictDeadline)
	edited.Schedule.Timezone = promptValue(w, reader, "Time zone (empty for local)", cfg.Schedule.Timezone)
	edited.Calendar.Colors = promptSlice(w, reader, "Colors (comma-separated)", cfg.Calendar.Colors)
	edited.Source.Kind = promptValue(w, reader, "Source kind (file, sqlite, empty to infer)", cfg.Source.Kind)
	edited.Source.Path = promptValue(w, reader, "Source path", cfg.Source.Path)
	edited.Source.Table = promptValue(w, reader, "SQLite table", cfg.Source.Table)
	edited.UI.Color = promptValue(w, reader, "Color output (auto, always, never)", cfg.UI.Color)

	if err := edited.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	*cfg = edited
	return nil
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current configuration:")
	fmt.Fprintln(w, "──────────────────────")
	fmt.Fprintln(w, "[schedule]")
	fmt.Fprintf(w, "  slots           = %s\n", strings.Join(cfg.Schedule.Slots, ", "))
	fmt.Fprintf(w, "  strict_deadline = %t\n", cfg.Schedule.StrictDeadline)
	if cfg.Schedule.Timezone != "" {
		fmt.Fprintf(w, "  timezone        = %s\n", cfg.Schedule.Timezone)
	}
	fmt.Fprintln(w, "\n[calendar]")
	fmt.Fprintf(w, "  colors          = %s\n", strings.Join(cfg.Calendar.Colors, ", "))
	fmt.Fprintln(w, "\n[source]")
	if cfg.Source.Kind != "" {
		fmt.Fprintf(w, "  kind            = %s\n", cfg.Source.Kind)
	}
	fmt.Fprintf(w, "  path            = %s\n", cfg.Source.Path)
	fmt.Fprintf(w, "  table           = %s\n", cfg.Source.Table)
	fmt.Fprintln(w, "\n[ui]")
	fmt.Fprintf(w, "  color           = %s\n", cfg.UI.Color)
}

func promptValue(w io.Writer, reader *bufio.Reader, label, current string) string {
	if current == "" {
		fmt.Fprintf(w, "  %s: ", label)
	} else {
		fmt.Fprintf(w, "  %s [%s]: ", label, current)
	}
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	return input
}

func promptBool(w io.Writer, reader *bufio.Reader, label string, current bool) bool {
	value := promptValue(w, reader, label+" (true/false)", strconv.FormatBool(current))
	b, err := strconv.ParseBool(value)
	if err != nil {
		return current
	}
	return b
}

func promptSlice(w io.Writer, reader *bufio.Reader, label string, current []string) []string {
	fmt.Fprintf(w, "  %s [%s]: ", label, strings.Join(current, ", "))
	input, _ := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return current
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
