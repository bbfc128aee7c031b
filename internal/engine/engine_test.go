package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goodcheck/internal/config"
	"goodcheck/internal/rules"
	"goodcheck/internal/source"
	"goodcheck/internal/termstyle"
)

const exampleConfig = `rules:
  - id: com.example.1
    pattern: Github
    message: Do you want to write GitHub?
    glob:
      - "**/*.rb"
    fail:
      - Signup via Github
    pass:
      - Signup via GitHub
`

const exampleApp = `class App
  def signup
    # sign up
    # via the form
    puts "Signup via Github"
  end
end
`

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func testConfig(root string) *config.Config {
	cfg := config.New()
	cfg.Runtime.Root = root
	cfg.Runtime.Concurrency = 2
	return cfg
}

func runEngine(t *testing.T, cfg *config.Config) (Summary, string, string) {
	t.Helper()
	require.NoError(t, cfg.Validate())

	var stdout, stderr bytes.Buffer
	eng := NewEngine(&stdout, &stderr, termstyle.Plain{})
	summary := eng.Run(context.Background(), cfg)
	return summary, stdout.String(), stderr.String()
}

func TestEngine_Run_ExampleScenario(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        exampleApp,
		"README.md":     "Signup via Github\n",
	})

	summary, stdout, stderr := runEngine(t, testConfig(root))

	assert.Equal(t, "app.rb:5:\tDo you want to write GitHub?\n", stdout)
	assert.Empty(t, stderr)
	assert.Equal(t, 1, summary.Matches)
	assert.Equal(t, 0, summary.Problems)
	assert.Equal(t, 1, summary.ExitCode)
}

func TestEngine_Run_JSONFormat(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        exampleApp,
	})

	cfg := testConfig(root)
	cfg.Output.Format = "json"
	_, stdout, _ := runEngine(t, cfg)

	var matches []rules.Match
	require.NoError(t, json.Unmarshal([]byte(stdout), &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, rules.Match{
		Path:        "app.rb",
		Line:        5,
		ColumnStart: 22,
		ColumnEnd:   28,
		Text:        `    puts "Signup via Github"`,
		RuleID:      "com.example.1",
		Message:     "Do you want to write GitHub?",
	}, matches[0])
}

func TestEngine_Run_CleanRun(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        "puts \"Signup via GitHub\"\n",
	})

	summary, stdout, _ := runEngine(t, testConfig(root))
	assert.Empty(t, stdout)
	assert.Equal(t, 0, summary.ExitCode)
}

func TestEngine_Run_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": `rules:
  - id: first
    pattern: alpha
    message: first rule
  - id: second
    pattern: beta
    message: second rule
  - id: third
    pattern: gamma
    message: third rule
`,
		"b.txt":     "gamma\nbeta\nalpha\n",
		"a.txt":     "alpha beta gamma\n",
		"sub/c.txt": "alpha\n",
	})

	want := strings.Join([]string{
		"a.txt:1:\tfirst rule",
		"b.txt:3:\tfirst rule",
		"sub/c.txt:1:\tfirst rule",
		"a.txt:1:\tsecond rule",
		"b.txt:2:\tsecond rule",
		"a.txt:1:\tthird rule",
		"b.txt:1:\tthird rule",
	}, "\n") + "\n"

	for _, concurrency := range []int{1, 2, 8} {
		cfg := testConfig(root)
		cfg.Runtime.Concurrency = concurrency
		_, stdout, _ := runEngine(t, cfg)
		assert.Equal(t, want, stdout, "concurrency %d", concurrency)
	}
}

func TestEngine_Run_OrderIndependentOfCompletion(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": `rules:
  - id: slow
    pattern: x
    message: slow rule
  - id: fast
    pattern: x
    message: fast rule
`,
		"f.txt": "x\n",
	})

	cfg := testConfig(root)
	require.NoError(t, cfg.Validate())

	var stdout bytes.Buffer
	eng := NewEngine(&stdout, &bytes.Buffer{}, termstyle.Plain{})
	eng.schedulerExecute = func(ctx context.Context, cfg *config.Config, plan *ScanPlan) (<-chan RuleExecutionResult, <-chan error) {
		s, err := NewScheduler(2)
		require.NoError(t, err)
		s.search = func(ctx context.Context, rp *RulePlan, files []source.File) RuleExecutionResult {
			if rp.Rule.ID == "slow" {
				time.Sleep(30 * time.Millisecond)
			}
			return searchRule(ctx, rp, files)
		}
		return s.Execute(ctx, plan)
	}

	summary := eng.Run(context.Background(), cfg)
	assert.Equal(t, 1, summary.ExitCode)
	assert.Equal(t, "f.txt:1:\tslow rule\nf.txt:1:\tfast rule\n", stdout.String())
}

func TestEngine_Run_ScopeAndDefaultScope(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": `rules:
  - id: scoped
    pattern: TODO
    message: scoped
    glob:
      - "src/**/*.go"
  - id: everywhere
    pattern: TODO
    message: everywhere
`,
		"src/pkg/a.go": "// TODO\n",
		"src/a.txt":    "TODO\n",
		"main.go":      "// TODO\n",
	})

	_, stdout, _ := runEngine(t, testConfig(root))
	assert.Equal(t, strings.Join([]string{
		"src/pkg/a.go:1:\tscoped",
		"main.go:1:\teverywhere",
		"src/a.txt:1:\teverywhere",
		"src/pkg/a.go:1:\teverywhere",
	}, "\n")+"\n", stdout)
}

func TestEngine_Run_BasenameGlobMatchesNestedFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": "rules:\n  - id: rb\n    pattern: Github\n    message: m1\n    glob:\n      - \"*.rb\"\n",
		"app.rb":        "Github\n",
		"sub/deep.rb":   "x\nGithub\n",
		"sub/deep.txt":  "Github\n",
	})

	_, stdout, _ := runEngine(t, testConfig(root))
	assert.Equal(t, "app.rb:1:\tm1\nsub/deep.rb:2:\tm1\n", stdout)
}

func TestEngine_Run_CaseSensitivityAndMultiline(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": `rules:
  - id: insensitive
    pattern:
      string: github
      case_sensitive: false
    message: insensitive
  - id: sensitive
    pattern:
      string: github
    message: sensitive
  - id: spanning
    pattern:
      regexp: "begin\\s+end"
      multiline: true
    message: spanning
`,
		"doc.txt": "GitHub\ngithub\nbegin\nend\n",
	})

	_, stdout, _ := runEngine(t, testConfig(root))
	assert.Equal(t, strings.Join([]string{
		"doc.txt:1:\tinsensitive",
		"doc.txt:2:\tinsensitive",
		"doc.txt:2:\tsensitive",
		"doc.txt:3:\tspanning",
	}, "\n")+"\n", stdout)
}

func TestEngine_Run_SuppressesMatchesInRuleFile(t *testing.T) {
	root := t.TempDir()
	// Unscoped, so the rule file itself is a candidate.
	writeTree(t, root, map[string]string{
		"goodcheck.yml": "rules:\n  - id: gh\n    pattern: Github\n    message: Do you want to write GitHub?\n",
		"notes.txt":     "Signup via Github\n",
	})

	summary, stdout, _ := runEngine(t, testConfig(root))
	assert.Equal(t, "notes.txt:1:\tDo you want to write GitHub?\n", stdout)
	assert.Equal(t, 1, summary.Matches)
	assert.Equal(t, 1, summary.Suppressed)
}

func TestEngine_Run_MalformedRuleIsIsolated(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": `rules:
  - id: broken
    pattern:
      regexp: "foo("
    message: broken
  - id: bad-glob
    pattern: foo
    message: bad glob
    glob:
      - "src/[a-"
  - id: fine
    pattern: foo
    message: fine
`,
		"a.txt": "foo\n",
	})

	summary, stdout, stderr := runEngine(t, testConfig(root))
	assert.Equal(t, "a.txt:1:\tfine\n", stdout)
	assert.Contains(t, stderr, "error: rule broken:")
	assert.Contains(t, stderr, "error: rule bad-glob:")
	assert.Equal(t, 2, summary.Problems)
	assert.Equal(t, 2, summary.ExitCode)
}

func TestEngine_Run_SkipsBinaryAndIgnoredFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": "rules:\n  - id: secret\n    pattern: SECRET\n    message: no secrets\n",
		".gitignore":    "build/\n*.log\n",
		"build/out.txt": "SECRET\n",
		"debug.log":     "SECRET\n",
		"blob.bin":      "SECRET\x00\x01",
		"kept.txt":      "SECRET\n",
	})

	_, stdout, _ := runEngine(t, testConfig(root))
	assert.Equal(t, "kept.txt:1:\tno secrets\n", stdout)
}

func TestEngine_Run_SelectorLimitsRules(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": "rules:\n  - id: a\n    pattern: x\n    message: a\n  - id: b\n    pattern: x\n    message: b\n",
		"f.txt":         "x\n",
	})

	cfg := testConfig(root)
	cfg.Rules.Selector = "b"
	summary, stdout, _ := runEngine(t, cfg)
	assert.Equal(t, "f.txt:1:\tb\n", stdout)
	assert.Equal(t, 1, summary.Rules)

	cfg = testConfig(root)
	cfg.Rules.Selector = "missing"
	summary, stdout, stderr := runEngine(t, cfg)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "rule not found: missing")
	assert.Equal(t, 3, summary.ExitCode)
}

func TestEngine_Run_FatalConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  string
	}{
		{"missing file", map[string]string{}, "goodcheck.yml"},
		{"bad yaml", map[string]string{"goodcheck.yml": "rules: [\n"}, "goodcheck.yml"},
		{"unknown key", map[string]string{"goodcheck.yml": "rules:\n  - id: a\n    pattern: x\n    message: m\n    extra: 1\n"}, "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files)

			summary, stdout, stderr := runEngine(t, testConfig(root))
			assert.Empty(t, stdout)
			assert.True(t, strings.HasPrefix(stderr, "error: "), "stderr: %q", stderr)
			assert.Contains(t, stderr, tt.want)
			assert.Equal(t, 3, summary.ExitCode)
		})
	}
}

func TestEngine_Run_NoConsole(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        exampleApp,
	})

	out := filepath.Join(t.TempDir(), "matches.json")
	cfg := testConfig(root)
	cfg.Output.NoConsole = true
	cfg.Output.Out = out

	summary, stdout, stderr := runEngine(t, cfg)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
	assert.Equal(t, 1, summary.ExitCode)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var matches []rules.Match
	require.NoError(t, json.Unmarshal(data, &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, "app.rb", matches[0].Path)
}

func TestEngine_Run_NDJSONLifecycle(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        exampleApp,
	})

	cfg := testConfig(root)
	cfg.Output.Format = "ndjson"
	_, stdout, _ := runEngine(t, cfg)

	var types []string
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		var ev struct {
			Type     string `json:"type"`
			ExitCode *int   `json:"exit_code"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &ev))
		types = append(types, ev.Type)
		if ev.Type == "run.finished" {
			require.NotNil(t, ev.ExitCode)
			assert.Equal(t, 1, *ev.ExitCode)
		}
	}
	assert.Equal(t, []string{"run.started", "rule.started", "match", "rule.finished", "run.finished"}, types)
}

func TestEngine_Run_ReportSink(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"goodcheck.yml": exampleConfig,
		"app.rb":        exampleApp,
	})

	report := filepath.Join(t.TempDir(), "report.md")
	cfg := testConfig(root)
	cfg.Output.Report = report
	_, _, _ = runEngine(t, cfg)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# goodcheck Report")
	assert.Contains(t, string(data), "com.example.1")
}

func TestExitCodeForRun(t *testing.T) {
	tests := []struct {
		name                    string
		fatal, partial, matches bool
		want                    int
	}{
		{"clean", false, false, false, 0},
		{"matches", false, false, true, 1},
		{"partial", false, true, true, 2},
		{"fatal", true, true, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCodeForRun(tt.fatal, tt.partial, tt.matches))
		})
	}
}
