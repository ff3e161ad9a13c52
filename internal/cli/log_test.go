package cli

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

// executeLogged runs the root command like execute and also returns the
// log output.
func executeLogged(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.toml")}, args...))
	err := root.Execute()
	return logs.String(), err
}

func TestVerboseLogsStages(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name:    "encode",
			args:    []string{"encode", input, "--no-cache"},
			want:    []string{"encoded expression", "format=modern"},
			notWant: []string{"decoded input", "optimized expression", "loaded config"},
		},
		{
			name: "encode verbose",
			args: []string{"--verbose", "encode", input, "--no-cache"},
			want: []string{"loaded config", "decoded input", "optimized expression", "encoded expression", "before=", "after="},
		},
		{
			name:    "encode compact verbose",
			args:    []string{"-v", "encode", input, "--no-cache", "--format", "compact"},
			want:    []string{"decoded input", "format=compact"},
			notWant: []string{"optimized expression"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs, err := executeLogged(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(logs, w) {
					t.Errorf("log missing %q:\n%s", w, logs)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(logs, w) {
					t.Errorf("log unexpectedly contains %q:\n%s", w, logs)
				}
			}
		})
	}
}

func TestRunLogsCarryRunID(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)
	logs, err := executeLogged(t, "encode", input, "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs, "run=") {
		t.Errorf("encode log has no run id:\n%s", logs)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Optimized to 2 entries")

	out := buf.String()
	if !strings.Contains(out, "Optimized to 2 entries (") || !strings.Contains(out, "ms)") {
		t.Errorf("progress output = %q, want message with elapsed milliseconds", out)
	}
}
