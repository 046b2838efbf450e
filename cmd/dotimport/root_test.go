// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/invowk/dotimport/internal/testutil"
)

type cliResult struct {
	stdout string
	stderr string
	err    error
}

// runCLI executes the command tree with an isolated config file and
// environment.
func runCLI(t *testing.T, cfgContent string, args ...string) cliResult {
	t.Helper()

	cfgPath := filepath.Join(t.TempDir(), "config.cue")
	testutil.MustWriteFile(t, cfgPath, cfgContent)

	var stdout, stderr bytes.Buffer
	app := NewApp(Dependencies{
		Stdout: &stdout,
		Stderr: &stderr,
		Getenv: func(string) string { return "" },
	})
	root := NewRootCommand(app)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func writeUnits(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(root, "app", "unit.cue"), `exports: ["cfg"]`+"\n")
	testutil.MustWriteFile(t, filepath.Join(root, "app", "cfg.yaml"), "port: 8080\n")
	testutil.MustWriteFile(t, filepath.Join(root, "app", "main.toml"), "entry = true\n")
	testutil.MustWriteFile(t, filepath.Join(root, "tools.cue"), `kind: "leaf"`+"\n")
	return root
}

func TestResolveCommand_Head(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "resolve", "app.cfg", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("resolve failed: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Unit", "app", "package", "found    app.cfg"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestResolveCommand_ContextFallbackRecordsMissing(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "resolve", "tools", "--context", "app.main", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("resolve failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "missing  app.tools") {
		t.Errorf("expected app.tools recorded missing:\n%s", res.stdout)
	}
	if !strings.Contains(res.stdout, "found    tools") {
		t.Errorf("expected tools found at the top level:\n%s", res.stdout)
	}
}

func TestResolveCommand_FromWildcard(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "resolve", "app", "--from", "*", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("resolve failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "found    app.cfg") {
		t.Errorf("wildcard did not load app.cfg:\n%s", res.stdout)
	}
}

func TestResolveCommand_Reload(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "resolve", "tools", "--reload", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("resolve failed: %v\n%s", res.err, res.stderr)
	}
	if !strings.Contains(res.stdout, "Reloaded") || !strings.Contains(res.stdout, "unchanged") {
		t.Errorf("expected an unchanged reload report:\n%s", res.stdout)
	}
}

func TestResolveCommand_Errors(t *testing.T) {
	t.Parallel()

	units := writeUnits(t)
	tests := []struct {
		name string
		cfg  string
		args []string
		want string
	}{
		{"not found", "", []string{"resolve", "nope", "--root", units}, "--root DIR"},
		{"empty segment", "", []string{"resolve", "app..cfg", "--root", units}, "empty segments"},
		{"no roots", "", []string{"resolve", "app"}, "no search roots"},
		{"name too long", "max_name_length: 3\n", []string{"resolve", "app.cfg", "--root", units}, "max_name_length"},
		{"invalid config", "colour: 1\n", []string{"resolve", "app"}, "load configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := runCLI(t, tt.cfg, tt.args...)
			var exitErr *ExitError
			if !errors.As(res.err, &exitErr) || exitErr.Code != 1 {
				t.Fatalf("err = %v, want ExitError code 1", res.err)
			}
			if !strings.Contains(res.stderr, tt.want) {
				t.Errorf("stderr missing %q:\n%s", tt.want, res.stderr)
			}
		})
	}
}

func TestGraphCommand(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "graph", "app.cfg", "tools", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("graph failed: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"digraph", `"app.cfg"`, `"tools"`, "box"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestGraphCommand_TopLevel(t *testing.T) {
	t.Parallel()

	res := runCLI(t, "", "graph", "app.cfg", "tools", "--top-level", "--root", writeUnits(t))
	if res.err != nil {
		t.Fatalf("graph failed: %v\n%s", res.err, res.stderr)
	}
	if diff := cmp.Diff("app\ntools\n", res.stdout); diff != "" {
		t.Errorf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigShowCommand(t *testing.T) {
	t.Parallel()

	res := runCLI(t, `log_level: "info"`+"\n", "config", "show")
	if res.err != nil {
		t.Fatalf("config show failed: %v\n%s", res.err, res.stderr)
	}
	for _, want := range []string{"Current Configuration", "config.cue", "log_level", "info", "reentrant_loads"} {
		if !strings.Contains(res.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, res.stdout)
		}
	}
}

func TestGetVersionString(t *testing.T) {
	t.Parallel()

	if got := getVersionString(); !strings.Contains(got, "dev") {
		t.Errorf("getVersionString() = %q", got)
	}
}
