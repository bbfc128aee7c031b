package cli

import (
	"github.com/spf13/cobra"

	"goodcheck/internal/config"
	"goodcheck/internal/flags"
	"goodcheck/internal/validate"
)

func newTestCmd(cfg *config.Config) *cobra.Command {
	var opts validate.Options

	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Validate goodcheck.yml without scanning",
		Long: `Validate goodcheck.yml: the YAML schema, every rule's pattern and globs.

With --examples, each rule's pattern is also run against its examples: every
"fail" example must match and no "pass" example may match.

No files are scanned.

Exit codes:
	0 = configuration is valid
	1 = configuration is invalid
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := validate.Check(cfg.ConfigPath(), opts)
			if err := validate.Print(cmd.OutOrStdout(), report, painterFor(cfg, cmd.OutOrStdout())); err != nil {
				return err
			}
			if code := report.ExitCode(); code != 0 {
				return &ExitError{Code: code}
			}
			return nil
		},
	}
	testCmd.Flags().BoolVar(&opts.Examples, flags.FlagExamples, false, "Also check each rule's pass/fail examples")
	return testCmd
}
