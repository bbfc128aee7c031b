package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"goodcheck/internal/config"
	"goodcheck/internal/flags"
	"goodcheck/internal/logging"
	"goodcheck/internal/termstyle"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// ExitError carries a process exit code out of a command. The command has
// already reported the failure; Execute only exits.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func newRootCmd() *cobra.Command {
	cfg := config.New()

	rootCmd := &cobra.Command{
		Use:   "goodcheck",
		Short: "Find text patterns that should not be in your code",
		Long: `goodcheck reads rules from goodcheck.yml and reports every line that matches
one of them, with the message the rule author wrote for it.

goodcheck only reads: it never edits the files it scans.

Examples:
	# Write a starter goodcheck.yml
	goodcheck init

	# Check the working directory
	goodcheck check

	# Validate goodcheck.yml, including each rule's pass/fail examples
	goodcheck test --examples

	# List configured rules
	goodcheck rules list

	# Print build info
	goodcheck version

Output:
	By default, commands write human-readable output to stdout.
	check supports structured output via emitter flags (see "goodcheck check --help").`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mode, err := termstyle.ParseMode(cfg.Output.Color)
			if err != nil {
				return err
			}
			stderr, _ := cmd.ErrOrStderr().(*os.File)
			noColor := !termstyle.Enabled(mode, stderr, termstyle.EnvMap(os.Environ()))
			logging.SetupLogger(cfg.Runtime.Verbose, cmd.ErrOrStderr(), noColor)
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, flags.FlagVerbose, false, "Enable verbose logging (files enumerated, rule timings, skipped files)")
	rootCmd.PersistentFlags().StringVar(&cfg.Output.Color, flags.FlagColor, "auto", "Colorize output: auto|always|never (default: auto)")

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.AddCommand(
		newInitCmd(cfg),
		newCheckCmd(cfg),
		newTestCmd(cfg),
		newRulesCmd(cfg),
		newVersionCmd(),
	)
	return rootCmd
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

// painterFor styles text written to w according to the --color mode.
func painterFor(cfg *config.Config, w io.Writer) termstyle.Painter {
	mode, err := termstyle.ParseMode(cfg.Output.Color)
	if err != nil {
		return termstyle.Plain{}
	}
	f, _ := w.(*os.File)
	return termstyle.ForMode(mode, f, termstyle.EnvMap(os.Environ()))
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
