// Package ui implements the notecal command line.
package ui

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/notecal/internal/config"
	"github.com/javiermolinar/notecal/internal/debuglog"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config     *config.Config
	configPath string
	root       *cobra.Command
	debug      bool   // Enable debug logging
	debugPath  string // Debug log file
	log        *debuglog.Logger
	now        func() time.Time
}

// NewApp creates a new CLI application with the given config.
func NewApp(cfg *config.Config) *App {
	a := &App{
		config:     cfg,
		configPath: config.DefaultConfigPath(),
		now:        time.Now,
	}

	a.root = &cobra.Command{
		Use:   "notecal",
		Short: "Schedule note tasks into calendar slots before their deadlines",
		Long: `notecal reads the items analyzed from your notes, each with a deadline and
a list of tasks, and places every task into a free slot of a fixed daily
template between today and the item's deadline.

Items with the earliest deadline get the earliest slots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			applyColorMode(a.config.UI.Color)
			if !a.debug || a.log != nil {
				return nil
			}
			l, err := debuglog.Open(a.debugPath)
			if err != nil {
				return err
			}
			a.log = l
			return nil
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().StringVar(&a.debugPath, "debug-log", debuglog.DefaultPath, "Debug log file")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.scheduleCmd())
	a.root.AddCommand(a.rangeCmd())
	a.root.AddCommand(a.watchCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notecal %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close flushes and closes the debug log.
func (a *App) Close() error {
	return a.log.Close()
}
