package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"goodcheck/internal/config"
	"goodcheck/internal/engine"
	"goodcheck/internal/flags"
)

const checkHelpTemplate = `{{with (or .Long .Short)}}{{. | trimTrailingWhitespaces}}

{{end}}Usage:
  {{.UseLine}}

{{if .HasAvailableLocalFlags}}Flags:
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}Global Flags:
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}Environment:
	With --color auto (the default), colors are used only when stdout is a
	terminal. These variables override that, first match wins:

	1) TERM=dumb disables colors
	2) NO_COLOR (any value) disables colors
	3) CLICOLOR=0 disables colors
	4) CLICOLOR_FORCE or FORCE_COLOR (non-zero) enables colors

{{if .HasAvailableSubCommands}}Available Commands:
{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasHelpSubCommands}}Additional help topics:
{{range .Commands}}{{if .IsAdditionalHelpTopicCommand}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.
{{end}}`

func newCheckCmd(cfg *config.Config) *cobra.Command {
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Check the working directory against goodcheck.yml",
		Long: `Check every file under the working directory against the rules in goodcheck.yml.

Files are enumerated once per run. Hidden files and directories, and paths
listed in .gitignore or .ignore files, are skipped. Binary files (a NUL byte in
the first 64 KiB) are skipped silently. Matches inside goodcheck.yml itself are
never reported.

Output:
	Console output is controlled by --format (default: text), one line per match:
	  path:line:	message
	Problems (a rule whose pattern or glob does not compile, a file that cannot
	be read) are printed to stderr and do not stop the scan.

	Structured outputs can be written via:
	- --out / --out-format: write an aggregate JSON array or NDJSON stream to a file
	- --emit: write an additional structured stream to stdout (json or ndjson)
	- --report: write a Markdown summary grouped by rule
	- --no-console: suppress the console sink (use with --emit/--out/--report)

	NDJSON mode emits one JSON object per line. Objects are lifecycle Events with a
	"type" field (run.started, rule.started, match, problem, rule.finished,
	run.finished).

	Records are written in rule declaration order, and within a rule by file
	path then line, whatever --concurrency is.

Exit codes:
	0 = clean run, no matches
	1 = matches found
	2 = partial failure (some rules/files errored)
	3 = fatal error (scan did not run)

Examples:
	goodcheck check

	# Only two rules
	goodcheck check --rules com.example.1,com.example.2

	# AI Agent: stream machine-readable events to stdout
	goodcheck check --no-console --emit ndjson
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return &ExitError{Code: 3}
			}

			eng := engine.NewEngine(cmd.OutOrStdout(), cmd.ErrOrStderr(), painterFor(cfg, cmd.OutOrStdout()))
			summary := eng.Run(cmd.Context(), cfg)
			if summary.ExitCode != 0 {
				return &ExitError{Code: summary.ExitCode}
			}
			return nil
		},
	}
	checkCmd.SetHelpTemplate(checkHelpTemplate)
	checkCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		fmt.Fprintf(c.ErrOrStderr(), "Error: %v\n", err)
		return &ExitError{Code: 3}
	})

	// MAINTAINER NOTE: keep these in sync with internal/config.Config.

	// Rules
	checkCmd.Flags().StringVar(&cfg.Rules.Selector, flags.FlagRules, "", "Only run these rule IDs (comma-separated; empty = all rules)")

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, "text", "Console output format: text|json|ndjson (default: text)")
	checkCmd.Flags().StringVar(&cfg.Output.Report, flags.FlagReport, "", "Write a Markdown report to this path")
	checkCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured output to this path")
	checkCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	checkCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable; comma-separated accepted)")
	checkCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out/--report)")

	// Runtime
	checkCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, cfg.Runtime.Concurrency, "Rules searched at once (default: 4)")

	return checkCmd
}
