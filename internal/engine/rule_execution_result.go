package engine

import (
	"time"

	"goodcheck/internal/rules"
)

// RuleExecutionResult is the outcome of searching one rule over its
// candidate files.
//
// It is emitted by the scheduler, in rule order, and consumed by the engine
// during streaming scan execution.
type RuleExecutionResult struct {
	Index    int
	Rule     rules.Rule
	Matches  []rules.Match
	Problems []rules.Problem

	// FilesSearched counts the files the scope accepted; BinarySkipped the
	// ones among them that were not searched because they look binary.
	FilesSearched int
	BinarySkipped int
	Duration      time.Duration
}
