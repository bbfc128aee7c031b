package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"goodcheck/internal/rules"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields that affect scan
	// behavior, keep the CLI flags in internal/cli/check.go in sync.
	Rules   Rules
	Output  Output
	Runtime Runtime
}

type Rules struct {
	// File is the rule file, relative to Root unless absolute.
	File string

	// Selector selects which rules to run.
	// Empty means all rules; otherwise a comma-separated list of rule IDs (see --rules).
	Selector string
}

type Output struct {
	// Format controls the console sink format (see --format).
	// Allowed values: text, json, ndjson.
	Format string

	// Report writes a Markdown report to this path (see --report).
	Report string

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --emit/--out/--report for machine-readable output.
	NoConsole bool

	// Color is the --color mode: auto, always, never.
	Color string
}

type Runtime struct {
	// Root is the directory scanned by check.
	Root string

	// Concurrency is the number of rules searched at once (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// Verbose enables debug logging.
	Verbose bool
}

func New() *Config {
	return &Config{
		Rules: Rules{
			File: rules.DefaultConfigFile,
		},
		Output: Output{
			Format: "text",
			Color:  "auto",
		},
		Runtime: Runtime{
			Root:        ".",
			Concurrency: 4,
		},
	}
}

// ConfigPath returns the rule file path as opened by the loader.
func (c *Config) ConfigPath() string {
	if filepath.IsAbs(c.Rules.File) || c.Runtime.Root == "" || c.Runtime.Root == "." {
		return c.Rules.File
	}
	return filepath.Join(c.Runtime.Root, c.Rules.File)
}

func (c *Config) Validate() error {
	// Normalize comma-delimited list inputs.
	c.Output.Emit = splitCommaList(c.Output.Emit)
	c.Rules.Selector = strings.Join(splitCommaList([]string{c.Rules.Selector}), ",")

	if strings.TrimSpace(c.Rules.File) == "" {
		return errors.New("rule file path must not be empty")
	}
	if strings.TrimSpace(c.Runtime.Root) == "" {
		c.Runtime.Root = "."
	}

	// Output validation
	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		return errors.New("--format must be one of: text, json, ndjson")
	}
	if c.Output.Format != "text" && c.Output.Format != "json" && c.Output.Format != "ndjson" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json, ndjson)", c.Output.Format)
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return fmt.Errorf("unsupported --emit value: %s (must be one of: json, ndjson)", v)
		}
		c.Output.Emit[i] = v
	}

	c.Output.Color = normalizeEnumValue(c.Output.Color)
	if c.Output.Color == "" {
		c.Output.Color = "auto"
	}
	if c.Output.Color != "auto" && c.Output.Color != "always" && c.Output.Color != "never" {
		return fmt.Errorf("unsupported --color: %s (must be one of: auto, always, never)", c.Output.Color)
	}

	// Runtime validation
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}

	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			default:
				if ext == "" {
					return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
				}
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	if c.Output.NoConsole && len(c.Output.Emit) == 0 && c.Output.Out == "" && c.Output.Report == "" {
		return errors.New("--no-console requires at least one of --emit, --out, --report")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
