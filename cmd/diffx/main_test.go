package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/qri-io/diffx"
)

var envVars = []string{
	"DIFFX_OUTPUT",
	"DIFFX_FORMAT",
	"DIFFX_IGNORE_KEYS_REGEX",
	"DIFFX_ARRAY_ID_KEY",
	"DIFFX_EPSILON",
	"DIFFX_OPTIMIZE",
	"DIFFX_BATCH_SIZE",
	"NO_COLOR",
}

// isolate clears diffx environment variables & points the default config
// location at a file that doesn't exist
func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range envVars {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	dir := t.TempDir()
	t.Setenv("DIFFX_CONFIG_PATH", filepath.Join(dir, "missing.toml"))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestCompareFiles(t *testing.T) {
	dir := isolate(t)
	v1 := writeFile(t, dir, "v1.json", `{"name":"a","age":30,"_rev":1}`)
	v2 := writeFile(t, dir, "v2.json", `{"name":"a","age":31,"_rev":2}`)
	same := writeFile(t, dir, "same.json", `{"age":30,"_rev":1,"name":"a"}`)

	cases := []struct {
		name     string
		args     []string
		expect   string
		differs  bool
		contains bool
	}{
		{"identical", []string{v1, same}, "No differences found.\n", false, false},
		{"cli", []string{v1, v2}, "~ _rev: 1 -> 2\n~ age: 30 -> 31\n", true, false},
		{"ignore keys", []string{"--ignore-keys-regex", "^_", v1, v2}, "~ age: 30 -> 31\n", true, false},
		{"epsilon", []string{"--epsilon", "2", v1, v2}, "No differences found.\n", false, false},
		{"path filter", []string{"--path", "age", v1, v2}, "~ age: 30 -> 31\n", true, false},
		{"path filter hides everything", []string{"--path", "name", v1, v2}, "No differences found.\n", false, false},
		{"json", []string{"-o", "json", "--path", "age", v1, v2}, "[\n  {\n    \"Modified\": [\n      \"age\",\n      30,\n      31\n    ]\n  }\n]\n", true, false},
		{"yaml", []string{"--output", "yaml", v1, v2}, "Modified:", true, true},
		{"unified", []string{"-o", "unified", v1, v2}, "-  \"_rev\": 1,\n-  \"age\": 30,\n+  \"_rev\": 2,\n+  \"age\": 31,\n", true, true},
		{"unified without differences", []string{"-o", "unified", v1, same}, "", false, false},
		{"optimized", []string{"--optimize", "--batch-size", "1", v1, v2}, "~ _rev: 1 -> 2\n~ age: 30 -> 31\n", true, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, _, err := execute(t, "", c.args...)
			if c.differs {
				if !errors.Is(err, errDifferences) {
					t.Fatalf("expected errDifferences, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if c.contains {
				if !strings.Contains(out, c.expect) {
					t.Errorf("expected output to contain %q, got:\n%s", c.expect, out)
				}
				return
			}
			if diff := cmp.Diff(c.expect, out); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArrayIDKeyFlag(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.yaml", "users:\n  - id: 1\n    name: ada\n  - id: 2\n    name: bob\n")
	b := writeFile(t, dir, "b.yaml", "users:\n  - id: 2\n    name: bob\n  - id: 1\n    name: ada\n")

	if _, _, err := execute(t, "", "--array-id-key", "id", a, b); err != nil {
		t.Errorf("reordered elements should match by id, got %v", err)
	}
	if _, _, err := execute(t, "", a, b); !errors.Is(err, errDifferences) {
		t.Errorf("positional matching should report differences, got %v", err)
	}
}

func TestStdin(t *testing.T) {
	dir := isolate(t)
	b := writeFile(t, dir, "b.json", `{"a":2}`)

	out, _, err := execute(t, `{"a":1}`, "-", b)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}
	if out != "~ a: 1 -> 2\n" {
		t.Errorf("unexpected output %q", out)
	}

	if _, _, err := execute(t, `{}`, "-", "-"); err == nil {
		t.Error("expected an error reading both inputs from stdin")
	}
}

func TestFormatSelection(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.txt", `{"a":1}`)
	b := writeFile(t, dir, "b.txt", `{"a":1}`)

	if _, _, err := execute(t, "", a, b); err == nil {
		t.Error("expected an error inferring the format of .txt files")
	}
	if _, _, err := execute(t, "", "--format", "json", a, b); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, _, err := execute(t, "", "--format", "bson", a, b); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestInvalidInput(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.json", `{"a":1}`)
	broken := writeFile(t, dir, "broken.json", `{"a":`)

	if _, _, err := execute(t, "", "--ignore-keys-regex", "[", a, a); !errors.Is(err, diffx.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if _, _, err := execute(t, "", "--output", "html", a, a); err == nil {
		t.Error("expected an error for an unknown output format")
	}
	if _, _, err := execute(t, "", a, broken); err == nil || errors.Is(err, errDifferences) {
		t.Errorf("expected a parse error, got %v", err)
	}
	if _, _, err := execute(t, "", a, filepath.Join(dir, "nope.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
	if _, _, err := execute(t, "", a); err == nil {
		t.Error("expected an error for a missing argument")
	}
}

func TestConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.json", `{"n":1.0,"_ts":1}`)
	b := writeFile(t, dir, "b.json", `{"n":1.5,"_ts":2}`)
	config := writeFile(t, dir, "config.toml", "output = \"json\"\nepsilon = 1.0\nignore_keys_regex = \"^_\"\n")

	// config file alone: everything tolerated or ignored
	out, _, err := execute(t, "", "--config", config, a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[]\n" {
		t.Errorf("expected an empty json array, got %q", out)
	}

	// environment overrides the config file
	t.Setenv("DIFFX_EPSILON", "0.1")
	out, _, err = execute(t, "", "--config", config, a, b)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}
	var changes []map[string][]interface{}
	if err := json.Unmarshal([]byte(out), &changes); err != nil {
		t.Fatalf("expected json output: %s", err)
	}
	expect := []map[string][]interface{}{{"Modified": {"n", float64(1), 1.5}}}
	if diff := cmp.Diff(expect, changes); diff != "" {
		t.Errorf("changes mismatch (-want +got):\n%s", diff)
	}

	// flags override both
	out, _, err = execute(t, "", "--config", config, "--output", "cli", "--ignore-keys-regex", "", a, b)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}
	if out != "~ _ts: 1 -> 2\n~ n: 1 -> 1.5\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, dir, "a.json", `{"a":1}`)
	b := writeFile(t, dir, "b.json", `{"a":2}`)
	config := writeFile(t, dir, "diffx.toml", "output = \"yaml\"\n")
	t.Setenv("DIFFX_CONFIG_PATH", config)

	out, _, err := execute(t, "", a, b)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}
	if !strings.Contains(out, "Modified:") {
		t.Errorf("expected yaml output, got %q", out)
	}

	// a broken default config only warns
	writeFile(t, dir, "diffx.toml", "output = \n")
	out, stderr, err := execute(t, "", a, b)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}
	if out != "~ a: 1 -> 2\n" {
		t.Errorf("expected cli output, got %q", out)
	}
	if !strings.Contains(stderr, "could not parse config file") {
		t.Errorf("expected a warning, got %q", stderr)
	}

	// an explicitly named broken config is an error
	if _, _, err := execute(t, "", "--config", config, a, b); err == nil || errors.Is(err, errDifferences) {
		t.Errorf("expected a config error, got %v", err)
	}
}

func TestRecursive(t *testing.T) {
	dir := isolate(t)
	left := filepath.Join(dir, "left")
	right := filepath.Join(dir, "right")
	writeFile(t, left, "a.json", `{"v":1}`)
	writeFile(t, right, "a.json", `{"v":2}`)
	writeFile(t, left, "sub/b.yaml", "x: 1\n")
	writeFile(t, right, "sub/b.yaml", "x: 1\n")
	writeFile(t, left, "notes.txt", "hello")
	writeFile(t, right, "notes.txt", "goodbye")
	writeFile(t, left, "only-left.json", `{}`)
	writeFile(t, right, "only-right.toml", "")

	out, stderr, err := execute(t, "", "-r", left, right)
	if !errors.Is(err, errDifferences) {
		t.Fatalf("expected errDifferences, got %v", err)
	}

	expect := "\n--- Comparing a.json ---\n~ v: 1 -> 2\n" +
		"\n--- Only in " + left + ": only-left.json ---\n" +
		"\n--- Only in " + right + ": only-right.toml ---\n" +
		"\n--- Comparing sub/b.yaml ---\nNo differences found.\n"
	if diff := cmp.Diff(expect, out); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(stderr, "notes.txt") {
		t.Errorf("expected a warning about notes.txt, got %q", stderr)
	}
}

func TestRecursiveErrors(t *testing.T) {
	dir := isolate(t)
	empty1 := filepath.Join(dir, "e1")
	empty2 := filepath.Join(dir, "e2")
	for _, d := range []string{empty1, empty2} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := execute(t, "", "--recursive", empty1, empty2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No comparable files found in directories.\n" {
		t.Errorf("unexpected output %q", out)
	}

	file := writeFile(t, dir, "a.json", `{}`)
	if _, _, err := execute(t, "", "-r", empty1, file); err == nil {
		t.Error("expected an error comparing a directory to a file")
	}
}
