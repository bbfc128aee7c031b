package flags

// Package flags defines canonical CLI flag names shared across the CLI and engine.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Output.Format, flags.FlagFormat, "text", "...")
//	arg := "--" + flags.FlagFormat
const (
	// Global
	FlagVerbose = "verbose"
	FlagColor   = "color"

	// Rules
	FlagRules    = "rules"
	FlagExamples = "examples"
	FlagQuiet    = "quiet"

	// Output
	FlagFormat    = "format"
	FlagReport    = "report"
	FlagOut       = "out"
	FlagOutFormat = "out-format"
	FlagEmit      = "emit"
	FlagNoConsole = "no-console"

	// Runtime
	FlagConcurrency = "concurrency"
)
