package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const ruleFile = `rules:
  - id: com.example.1
    pattern: Github
    message: Do you want to write GitHub?
    justification:
      - The product is called GitHub.
    glob:
      - "**/*.rb"
    fail:
      - Signup via Github
    pass:
      - Signup via GitHub
  - id: com.example.long-identifier
    pattern:
      token: "console.log("
    message: |
      Remove debug logging
      It leaks internals.
`

// inTempDir runs the test from a fresh working directory holding files.
func inTempDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	t.Chdir(dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck_ReportsMatches(t *testing.T) {
	inTempDir(t, map[string]string{
		"goodcheck.yml": ruleFile,
		"app.rb":        "class App\n\n\n\n  puts \"Signup via Github\"\nend\n",
		"web/ui.js":     "console.log ( 'x' )\n",
	})

	code, stdout, stderr := runCLI(t, "check", "--color", "never")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d; stderr=%s", code, stderr)
	}
	want := "app.rb:5:\tDo you want to write GitHub?\n" +
		"web/ui.js:1:\tRemove debug logging\nIt leaks internals.\n"
	if stdout != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", stdout, want)
	}
}

func TestCheck_CleanExitsZero(t *testing.T) {
	inTempDir(t, map[string]string{
		"goodcheck.yml": ruleFile,
		"app.rb":        "puts \"Signup via GitHub\"\n",
	})

	code, stdout, _ := runCLI(t, "check")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if stdout != "" {
		t.Fatalf("expected no output, got %q", stdout)
	}
}

func TestCheck_ExitCode3_WhenConfigMissing(t *testing.T) {
	inTempDir(t, nil)

	code, _, stderr := runCLI(t, "check")
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(stderr, "goodcheck.yml") {
		t.Fatalf("expected the config path in the error; stderr=%s", stderr)
	}
}

func TestCheck_ExitCode3_WhenOutFormatCannotBeInferred(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, _, stderr := runCLI(t, "check", "--out", "results.unknown")
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(stderr, `cannot infer output format from file extension ".unknown"`) {
		t.Fatalf("expected inference error; stderr=%s", stderr)
	}
}

func TestCheck_ExitCode3_OnUnknownFlag(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, _, stderr := runCLI(t, "check", "--no-such-flag")
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d; stderr=%s", code, stderr)
	}
}

func TestCheck_NoConsoleRequiresSink(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, _, stderr := runCLI(t, "check", "--no-console")
	if code != 3 {
		t.Fatalf("expected exit code 3, got %d", code)
	}
	if !strings.Contains(stderr, "--no-console requires") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCheck_EmitNDJSON(t *testing.T) {
	inTempDir(t, map[string]string{
		"goodcheck.yml": ruleFile,
		"app.rb":        "Signup via Github\n",
	})

	code, stdout, _ := runCLI(t, "check", "--no-console", "--emit", "ndjson", "--rules", "com.example.1")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 events, got %d:\n%s", len(lines), stdout)
	}
	if !strings.Contains(lines[0], `"type":"run.started"`) || !strings.Contains(lines[4], `"type":"run.finished"`) {
		t.Fatalf("unexpected event stream:\n%s", stdout)
	}
}

func TestInit_WritesStarterConfigOnce(t *testing.T) {
	dir := inTempDir(t, nil)

	code, stdout, _ := runCLI(t, "init")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout, "wrote goodcheck.yml") {
		t.Fatalf("unexpected output: %s", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "goodcheck.yml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != initTemplate {
		t.Fatalf("unexpected starter config:\n%s", data)
	}

	// The starter config must itself be valid, examples included.
	code, stdout, _ = runCLI(t, "test", "--examples")
	if code != 0 {
		t.Fatalf("starter config did not validate:\n%s", stdout)
	}
}

func TestInit_NeverOverwrites(t *testing.T) {
	dir := inTempDir(t, map[string]string{"goodcheck.yml": "rules: []\n"})

	code, stdout, _ := runCLI(t, "init")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !strings.Contains(stdout, "already exists") {
		t.Fatalf("unexpected output: %s", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "goodcheck.yml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "rules: []\n" {
		t.Fatalf("existing config was modified:\n%s", data)
	}
}

func TestTest_ValidAndInvalid(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, stdout, _ := runCLI(t, "test", "--color", "never")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d:\n%s", code, stdout)
	}
	if stdout != "ok - yaml format and config keys\nconfiguration is valid\n" {
		t.Fatalf("unexpected output:\n%s", stdout)
	}

	if err := os.WriteFile("goodcheck.yml", []byte("rules:\n  - id: a\n    pattern: x\n    message: m\n    unknown: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	code, stdout, _ = runCLI(t, "test", "--color", "never")
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(stdout, "fail - ") || !strings.HasSuffix(stdout, "configuration is invalid. fail: 1\n") {
		t.Fatalf("unexpected output:\n%s", stdout)
	}
}

func TestRulesList(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, stdout, _ := runCLI(t, "rules", "list", "--color", "never")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	want := "com.example.1                Do you want to write GitHub?\n" +
		"com.example.long-identifier  Remove debug logging\n"
	if stdout != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", stdout, want)
	}

	_, stdout, _ = runCLI(t, "rules", "list", "-q")
	if stdout != "com.example.1\ncom.example.long-identifier\n" {
		t.Fatalf("unexpected quiet output:\n%s", stdout)
	}
}

func TestRulesShow(t *testing.T) {
	inTempDir(t, map[string]string{"goodcheck.yml": ruleFile})

	code, stdout, _ := runCLI(t, "rules", "show", "com.example.1", "--color", "never")
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	for _, want := range []string{
		"RULE: com.example.1",
		"Do you want to write GitHub?",
		"Pattern: string: Github",
		"Regexp:  Github",
		"Glob:    **/*.rb",
		"Justification:\n  - The product is called GitHub.",
		"Fail examples:\n  - Signup via Github",
		"Pass examples:\n  - Signup via GitHub",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected output to contain %q; got:\n%s", want, stdout)
		}
	}

	_, stdout, _ = runCLI(t, "rules", "show", "com.example.long-identifier", "--color", "never")
	if !strings.Contains(stdout, `Regexp:  \bconsole\s*\.\s*log\s*\(`) {
		t.Errorf("expected the token expression; got:\n%s", stdout)
	}

	code, _, stderr := runCLI(t, "rules", "show", "missing")
	if code != 1 || !strings.Contains(stderr, "rule not found: missing") {
		t.Fatalf("expected not-found error; code=%d stderr=%s", code, stderr)
	}
}

func TestVersion(t *testing.T) {
	SetBuildInfo("1.2.3", "abc123", "2024-01-01")
	t.Cleanup(func() { SetBuildInfo("dev", "unknown", "unknown") })

	_, stdout, _ := runCLI(t, "version")
	if stdout != "goodcheck 1.2.3\ncommit: abc123\nbuilt:  2024-01-01\n" {
		t.Fatalf("unexpected version output:\n%s", stdout)
	}
}
