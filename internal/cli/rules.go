package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"goodcheck/internal/config"
	"goodcheck/internal/flags"
	"goodcheck/internal/pattern"
	"goodcheck/internal/rules"
	"goodcheck/internal/termstyle"
)

func newRulesCmd(cfg *config.Config) *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List and describe configured rules",
		Long: `Describe the rules in goodcheck.yml.

This command group helps you discover which rules are configured and what each
rule looks for. Rules are evaluated during checks (see "goodcheck check --help").

Examples:
  # List all configured rules
  goodcheck rules list

  # Show one rule in full
  goodcheck rules show com.example.1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rulesCmd.AddCommand(newRulesListCmd(cfg), newRulesShowCmd(cfg))
	return rulesCmd
}

func newRulesListCmd(cfg *config.Config) *cobra.Command {
	var quiet bool

	rulesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured rules",
		Long: `List the rules in goodcheck.yml in declaration order.

Examples:
  goodcheck rules list
  goodcheck rules list -q

Output:
  One rule per line: the rule ID, then the first line of its message.
  With -q, only rule IDs.
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleCfg, err := rules.Load(cfg.ConfigPath())
			if err != nil {
				return err
			}
			if quiet {
				for _, r := range ruleCfg.Rules {
					fmt.Fprintln(cmd.OutOrStdout(), r.ID)
				}
				return nil
			}
			printRuleTable(cmd.OutOrStdout(), ruleCfg.Rules)
			return nil
		},
	}
	rulesListCmd.Flags().BoolVarP(&quiet, flags.FlagQuiet, "q", false, "Only print rule IDs")
	return rulesListCmd
}

func newRulesShowCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show [rule-id]",
		Short: "Show details of a specific rule",
		Long: `Show a rule from goodcheck.yml by its ID: pattern, message, scope,
justification and examples.

Examples:
  goodcheck rules show com.example.1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ruleCfg, err := rules.Load(cfg.ConfigPath())
			if err != nil {
				return err
			}
			r, ok := ruleCfg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("rule not found: %s", args[0])
			}
			printRule(cmd.OutOrStdout(), r, painterFor(cfg, cmd.OutOrStdout()))
			return nil
		},
	}
}

// printRuleTable aligns titles on the widest rule ID as displayed.
func printRuleTable(w io.Writer, list []rules.Rule) {
	width := 0
	for _, r := range list {
		width = max(width, runewidth.StringWidth(r.ID))
	}
	for _, r := range list {
		fmt.Fprintf(w, "%s  %s\n", runewidth.FillRight(r.ID, width), r.Title())
	}
}

func printRule(w io.Writer, r rules.Rule, painter termstyle.Painter) {
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "%s\n", painter.Normal("RULE: "+r.ID))
	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintln(w, strings.TrimRight(r.Message, "\n"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Pattern: %s\n", r.Pattern.Describe())
	if m, err := pattern.Compile(r.Pattern); err != nil {
		fmt.Fprintf(w, "Regexp:  %s\n", painter.Fail("invalid: "+err.Error()))
	} else {
		fmt.Fprintf(w, "Regexp:  %s\n", m.Expr())
	}

	if r.Scoped() {
		fmt.Fprintf(w, "Glob:    %s\n", strings.Join(r.Glob, ", "))
	} else {
		fmt.Fprintln(w, "Glob:    (all files)")
	}

	printList(w, "Justification:", r.Justification)
	printList(w, "Fail examples:", r.Fail)
	printList(w, "Pass examples:", r.Pass)
	fmt.Fprintln(w)
}

func printList(w io.Writer, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, heading)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
