package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/plangraph/pkg/errors"
)

const cakePath = "../../examples/problems/have_cake.toml"

// run executes the root command with isolated config and cache directories.
func run(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var logs bytes.Buffer
	c := New(&logs, log.InfoLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	want := []string{"eval", "graph", "explore", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode errors.Code
	}{
		{"table output", []string{"eval", cakePath, "--no-cache"}, ""},
		{"json output", []string{"eval", cakePath, "--json", "-H", "setlevel"}, ""},
		{"from state", []string{"eval", cakePath, "--no-cache", "--state", "Eaten(Cake)"}, ""},
		{"missing file", []string{"eval", "does-not-exist.toml"}, errors.ErrCodeFileNotFound},
		{"bad heuristic", []string{"eval", cakePath, "-H", "hadd"}, errors.ErrCodeInvalidHeuristic},
		{"bad state", []string{"eval", cakePath, "--state", "Pie"}, errors.ErrCodeUnknownFluent},
		{"negative levels", []string{"eval", cakePath, "--max-levels", "-1"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("eval: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("eval error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestEvalCommand_MetricsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plangraph.prom")
	if err := run(t, "eval", cakePath, "--no-cache", "--metrics-file", path); err != nil {
		t.Fatalf("eval: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(data), "plangraph_graph_builds_total") {
		t.Errorf("metrics file missing build counter:\n%s", data)
	}
}

func TestGraphCommand(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		format string
		prefix string
	}{
		{"dot", "digraph G {"},
		{"json", "{"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out := filepath.Join(dir, "cake."+tt.format)
			if err := run(t, "graph", cakePath, "-f", tt.format, "-o", out, "--mutexes"); err != nil {
				t.Fatalf("graph: %v", err)
			}
			data, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), tt.prefix) {
				t.Errorf("%s output starts with %.20q", tt.format, data)
			}
		})
	}

	if err := run(t, "graph", cakePath, "-f", "gif"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("graph -f gif error = %v", err)
	}
}

func TestCacheCommands(t *testing.T) {
	if err := run(t, "cache", "path"); err != nil {
		t.Errorf("cache path: %v", err)
	}
	if err := run(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestConfigFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("serialize = false\nheuristics = [\"maxlevel\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "--config", path, "eval", cakePath, "--no-cache"); err != nil {
		t.Fatalf("eval with config: %v", err)
	}

	err := run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "eval", cakePath)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config error = %v", err)
	}
}
