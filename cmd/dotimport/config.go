// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/dotimport/internal/config"
)

// newConfigCommand creates the `dotimport config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dotimport configuration",
		Long: `Manage dotimport configuration.

Configuration is stored in:
  - Linux: ~/.config/dotimport/config.cue
  - macOS: ~/Library/Application Support/dotimport/config.cue
  - Windows: %APPDATA%\dotimport\config.cue

DOTIMPORT_* environment variables override file values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			showConfig(app)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App) {
	w, cfg := app.stdout, app.cfg

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)

	if app.cfgPath != "" {
		renderField(w, "Config file", app.cfgPath)
	} else {
		renderField(w, "Config file", SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(w)

	formats := make([]string, len(cfg.UnitFormats))
	for i, f := range cfg.UnitFormats {
		formats[i] = f.String()
	}
	cacheDir := cfg.CacheDir.String()
	if cacheDir == "" {
		cacheDir = SubtitleStyle.Render("(default)")
	}

	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("search_paths"), joinOrNone(cfg.SearchPaths))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("max_name_length"), SuccessStyle.Render(fmt.Sprint(cfg.MaxNameLength)))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("reentrant_loads"), SuccessStyle.Render(cfg.ReentrantLoads.String()))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("unit_formats"), SuccessStyle.Render(strings.Join(formats, ", ")))
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("cache_dir"), cacheDir)
	fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("log_level"), SuccessStyle.Render(cfg.LogLevel.String()))
}
