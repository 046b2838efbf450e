// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"

	"github.com/invowk/dotimport/internal/config"
	"github.com/invowk/dotimport/internal/issue"
	"github.com/invowk/dotimport/pkg/importer"
	"github.com/invowk/dotimport/pkg/unitfs"
)

type (
	// App wires CLI services and shared state. Every command handler receives
	// an App and reads configuration, logging and output writers from it.
	App struct {
		Config config.Provider

		stdout io.Writer
		stderr io.Writer
		getenv func(string) string

		verbose bool
		cfgFile string

		cfg     *config.Config
		cfgPath string
		logger  *slog.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Stdout io.Writer
		Stderr io.Writer
		Getenv func(string) string
	}
)

// NewApp creates an App from deps, filling in defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
		getenv: deps.Getenv,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	if app.getenv == nil {
		app.getenv = os.Getenv
	}
	return app
}

// setup loads configuration and installs the logger. It runs before every
// subcommand.
func (a *App) setup(ctx context.Context) error {
	cfg, path, err := config.Load(ctx, config.LoadOptions{
		ConfigFilePath: a.cfgFile,
		Getenv:         a.getenv,
	})
	if err != nil {
		return err
	}
	a.cfg, a.cfgPath = cfg, path

	level := cfg.LogLevel.SlogLevel()
	if a.verbose {
		level = slog.LevelDebug
	}
	handler := log.NewWithOptions(a.stderr, log.Options{
		Prefix: config.AppName,
		Level:  log.Level(level),
	})
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	return nil
}

// newLoader builds the filesystem loader over the configured search roots
// followed by any --root directories.
func (a *App) newLoader(extraRoots []string) (*unitfs.Loader, error) {
	roots := append(append([]string{}, extraRoots...), a.cfg.SearchPaths...)
	if len(roots) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("configure search roots").
			WithSuggestion("Pass --root DIR").
			WithSuggestion("Or set search_paths in config.cue").
			Wrap(errors.New("no search roots configured")).
			BuildError()
	}

	formats := make([]unitfs.Format, len(a.cfg.UnitFormats))
	for i, f := range a.cfg.UnitFormats {
		formats[i] = unitfs.Format(f)
	}

	cacheDir := a.cfg.CacheDir.String()
	if cacheDir == "" {
		var err error
		if cacheDir, err = unitfs.DefaultCacheDirWith(a.getenv); err != nil {
			return nil, fmt.Errorf("failed to determine cache directory: %w", err)
		}
	}

	return unitfs.New(roots,
		unitfs.WithFormats(formats...),
		unitfs.WithGitFetcher(unitfs.NewGitFetcher(cacheDir)),
		unitfs.WithLogger(a.logger),
	), nil
}

// newResolver builds a resolver honoring the configured limits.
func (a *App) newResolver(l importer.Loader) *importer.Resolver {
	mode := importer.ReentrantError
	if a.cfg.ReentrantLoads == config.ReentrantReload {
		mode = importer.ReentrantReload
	}
	return importer.New(
		importer.WithLoader(l),
		importer.WithMaxNameLength(a.cfg.MaxNameLength),
		importer.WithReentrantMode(mode),
		importer.WithLogger(a.logger),
	)
}

// fail prints err in actionable form and returns an exit code 1 error.
func (a *App) fail(op, resource string, err error) error {
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		ae = issue.NewErrorContext().
			WithOperation(op).
			WithResource(resource).
			WithSuggestions(issue.Hints(err)...).
			Wrap(err).
			Build()
	}
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error:")+" "+ae.Format(a.verbose))
	return &ExitError{Code: 1}
}
