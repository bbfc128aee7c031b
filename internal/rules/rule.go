package rules

import "strings"

// DefaultConfigFile is the rule file looked up in the working directory.
const DefaultConfigFile = "goodcheck.yml"

// Config is an ordered list of rules. Order defines report order.
type Config struct {
	Rules []Rule
}

// Rule is one pattern-plus-message declaration. Rules are values; nothing
// in the engine mutates them after loading.
type Rule struct {
	ID      string
	Pattern Pattern
	Message string

	// Justification is free-form rationale shown by "rules show" and the
	// Markdown report.
	Justification []string

	// Glob scopes the rule to matching root-relative paths. Empty means the
	// whole scan root.
	Glob []string

	// Pass and Fail are examples that should not match / should match.
	Pass []string
	Fail []string
}

// Title is the first line of the message, used where a one-line summary is needed.
func (r Rule) Title() string {
	title, _, _ := strings.Cut(strings.TrimSpace(r.Message), "\n")
	return title
}

// Scoped reports whether the rule restricts the files it is evaluated against.
func (r Rule) Scoped() bool {
	return len(r.Glob) > 0
}
