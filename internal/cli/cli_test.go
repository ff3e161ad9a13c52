package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

)

const addLegacy = `{"type":"Invocation","functionName":"Number.add","arguments":{"left":3,"right":3}}`

const addModern = `{"result":"0","values":{"0":{"functionInvocationValue":{"arguments":{"left":{"constantValue":3},"right":{"constantValue":3}},"functionName":"Number.add"}}}}`

// execute runs the root command with args in an isolated environment and
// returns what the command wrote to its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", filepath.Join(dir, "missing.toml")}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"encode", "optimize", "inspect", "render", "validate", "cache", "config", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestEncodeCommand(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)

	tests := []struct {
		format string
		want   string
	}{
		{"modern", addModern},
		{"compact", `{"arguments":{"left":3,"right":3},"functionName":"Number.add","type":"Invocation"}`},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			out, err := execute(t, "encode", input, "--format", tt.format)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("encode output =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestEncodeCommandOutputFile(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)
	output := filepath.Join(t.TempDir(), "sub", "out.json")

	if _, err := execute(t, "encode", input, "-o", output, "--no-cache"); err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != addModern {
		t.Errorf("written output =\n%s\nwant\n%s", data, addModern)
	}
}

func TestEncodeCommandErrors(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)
	if _, err := execute(t, "encode", input, "--format", "svg"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := execute(t, "encode", filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestOptimizeCommand(t *testing.T) {
	doc := `{"result":"r","values":{"a":{"constantValue":3},` +
		`"r":{"functionInvocationValue":{"functionName":"Number.add","arguments":{"left":{"valueReference":"a"},"right":{"valueReference":"a"}}}}}}`
	input := writeFile(t, "expr.json", doc)

	out, err := execute(t, "optimize", input)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if got := strings.TrimSpace(out); got != addModern {
		t.Errorf("optimize output =\n%s\nwant\n%s", got, addModern)
	}

	out, err = execute(t, "optimize", input, "--readable")
	if err != nil {
		t.Fatalf("optimize --readable: %v", err)
	}
	if !strings.Contains(out, "\n  ") || strings.Contains(out, "valueReference") {
		t.Errorf("readable output not expanded:\n%s", out)
	}
}

func TestInspectCommand(t *testing.T) {
	input := writeFile(t, "expr.json", addModern)

	out, err := execute(t, "inspect", input)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"$0 = Number.add", "Entries", "total", "Invocation"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "inspect", input, "--stats")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "$0 = Number.add") {
		t.Errorf("--stats printed the tree:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	input := writeFile(t, "expr.json", addModern)

	out, err := execute(t, "render", input)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("render output is not DOT:\n%s", out)
	}

	if _, err := execute(t, "render", input, "--format", "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestValidateCommand(t *testing.T) {
	valid := writeFile(t, "ok.json", addModern)
	if _, err := execute(t, "validate", valid); err != nil {
		t.Errorf("validate(valid): %v", err)
	}

	dangling := writeFile(t, "bad.json", `{"result":"0","values":{"0":{"valueReference":"9"}}}`)
	if _, err := execute(t, "validate", dangling); err == nil {
		t.Error("validate accepted a dangling reference")
	}

	unordered := writeFile(t, "order.json", `{"result":"0","values":{"0":{"valueReference":"1"},"1":{"constantValue":1}}}`)
	if _, err := execute(t, "validate", unordered); err != nil {
		t.Errorf("validate(unordered): %v", err)
	}
	if _, err := execute(t, "validate", unordered, "--ordered"); err == nil {
		t.Error("--ordered accepted an entry before its dependency")
	}
}

func TestCachePathCommand(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); filepath.Base(got) != appName || filepath.Base(filepath.Dir(got)) != "cache" {
		t.Errorf("cache path = %q, want <tmp>/cache/%s", got, appName)
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[optimizer]", "inline_depth_limit = 50", `format = "modern"`} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestExitCode(t *testing.T) {
	input := writeFile(t, "in.json", addLegacy)
	malformed := writeFile(t, "bad.json", `{"type":"ValueRef","value":"9"}`)
	broken := writeFile(t, "broken.json", `{`)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"encode", input, "--no-cache"}, ExitOK},
		{"unparsable input", []string{"encode", broken, "--no-cache"}, ExitBadInput},
		{"missing file", []string{"encode", filepath.Join(t.TempDir(), "nope.json")}, ExitBadInput},
		{"dangling reference", []string{"encode", malformed, "--no-cache"}, ExitBadGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if got := ExitCode(err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", err, got, tt.want)
			}
		})
	}

	if got := ExitCode(fmt.Errorf("run: %w", context.Canceled)); got != ExitCancelled {
		t.Errorf("ExitCode(cancelled) = %d, want %d", got, ExitCancelled)
	}
}
