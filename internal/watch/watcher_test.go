// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func startWatcher(t *testing.T, cfg Config) (cancel func() error) {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, stop := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Let the event loop start.
	time.Sleep(50 * time.Millisecond)
	return func() error {
		stop()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run() did not return after cancellation")
			return nil
		}
	}
}

func TestUnitPatterns(t *testing.T) {
	t.Parallel()

	got := UnitPatterns(".cue", ".yaml")
	if diff := cmp.Diff([]string{"**/*.cue", "**/*.yaml"}, got); diff != "" {
		t.Errorf("UnitPatterns() mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcherDebounce(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{}, 1)

	stop := startWatcher(t, Config{
		Roots:    []string{dir},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})

	for _, name := range []string{"a.cue", "b.cue", "c.cue"} {
		writeFile(t, filepath.Join(dir, name), "x: 1\n")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	time.Sleep(200 * time.Millisecond)
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("callbacks = %d, want 1", calls)
	}
	for _, name := range []string{"a.cue", "b.cue", "c.cue"} {
		want := filepath.Join(dir, name)
		if !slices.Contains(collected, want) {
			t.Errorf("changed set %v missing %s", collected, want)
		}
	}
	if !slices.IsSorted(collected) {
		t.Errorf("changed set %v is not sorted", collected)
	}
}

func TestWatcherPatternAndIgnoreFiltering(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	stop := startWatcher(t, Config{
		Roots:    []string{dir},
		Patterns: UnitPatterns(".cue"),
		Ignore:   []string{"**/scratch.cue"},
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, "notes.txt"), "text")
	writeFile(t, filepath.Join(dir, "scratch.cue"), "x: 1\n")
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "app.cue"), "x: 1\n")

	select {
	case changed := <-fired:
		if diff := cmp.Diff([]string{filepath.Join(dir, "app.cue")}, changed); diff != "" {
			t.Errorf("changed mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for callback")
	}
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestWatcherNewSubdirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fired := make(chan []string, 10)

	stop := startWatcher(t, Config{
		Roots:    []string{dir},
		Patterns: UnitPatterns(".yaml"),
		Debounce: 50 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			fired <- changed
			return nil
		},
	})

	sub := filepath.Join(dir, "app")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the new directory.
	time.Sleep(200 * time.Millisecond)
	writeFile(t, filepath.Join(sub, "unit.yaml"), "x: 1\n")

	want := filepath.Join(sub, "unit.yaml")
	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-fired:
			if slices.Contains(changed, want) {
				if err := stop(); err != nil {
					t.Fatalf("Run() error: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestWatcherSkipIfBusy(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var (
		mu         sync.Mutex
		active     int
		maxActive  int
		totalCalls int
	)
	first := make(chan struct{}, 1)

	stop := startWatcher(t, Config{
		Roots:    []string{dir},
		Debounce: 30 * time.Millisecond,
		OnChange: func(_ context.Context, _ []string) error {
			mu.Lock()
			active++
			totalCalls++
			maxActive = max(maxActive, active)
			mu.Unlock()
			select {
			case first <- struct{}{}:
			default:
			}
			time.Sleep(200 * time.Millisecond)
			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})

	writeFile(t, filepath.Join(dir, "one.cue"), "x: 1\n")
	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first callback")
	}
	writeFile(t, filepath.Join(dir, "two.cue"), "x: 2\n")
	time.Sleep(600 * time.Millisecond)
	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if maxActive != 1 {
		t.Errorf("max concurrent callbacks = %d, want 1", maxActive)
	}
	if totalCalls < 2 {
		t.Errorf("callbacks = %d, want at least 2 (pending changes must not be dropped)", totalCalls)
	}
}

func TestDefaultIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{ignores: DefaultIgnores()}
	tests := []struct {
		path    string
		ignored bool
	}{
		{".git", true},
		{".git/config", true},
		{"units/.git/HEAD", true},
		{"app.cue.swp", true},
		{"app.cue~", true},
		{"sub/.DS_Store", true},
		{"app.cue", false},
		{"app/unit.yaml", false},
		{".gitignore", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := w.isIgnored(tt.path); got != tt.ignored {
				t.Errorf("isIgnored(%q) = %v, want %v", tt.path, got, tt.ignored)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Roots: []string{dir}, Patterns: []string{"[invalid"}, Logger: quietLogger()})
		if err == nil || !strings.Contains(err.Error(), "invalid watch pattern") {
			t.Errorf("New() error = %v, want invalid watch pattern", err)
		}
	})
	t.Run("no usable roots", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Roots: []string{filepath.Join(dir, "missing")}, Logger: quietLogger()})
		if !errors.Is(err, ErrNoRoots) {
			t.Errorf("New() error = %v, want ErrNoRoots", err)
		}
	})
}

func TestWatcherDoubleRunError(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Roots: []string{t.TempDir()}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)

	if err := w.Run(ctx); err == nil || !strings.Contains(err.Error(), "more than once") {
		t.Errorf("second Run() error = %v, want double-run error", err)
	}
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("first Run() error: %v", err)
	}
}

func TestRelative(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	inner := filepath.Join(outer, "nested")
	w := &Watcher{roots: []string{outer, inner}}

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{filepath.Join(outer, "a.cue"), "a.cue", true},
		{filepath.Join(inner, "b", "unit.cue"), "b/unit.cue", true},
		{filepath.Join(filepath.Dir(outer), "elsewhere.cue"), "", false},
	}
	for _, tt := range tests {
		got, ok := w.relative(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("relative(%q) = %q, %v; want %q, %v", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}
