// Package validate checks a rule file without scanning anything: the YAML
// schema, every rule's pattern and globs, and optionally each rule's pass and
// fail examples.
package validate

import (
	"fmt"
	"io"
	"strings"

	"goodcheck/internal/logging"
	"goodcheck/internal/pattern"
	"goodcheck/internal/rules"
	"goodcheck/internal/scope"
	"goodcheck/internal/termstyle"
)

// Check names recorded on each result.
const (
	CheckSchema   = "yaml format and config keys"
	CheckPattern  = "pattern"
	CheckGlob     = "glob"
	CheckExamples = "examples"
)

type Options struct {
	// Examples also runs each rule's pattern against its pass and fail examples.
	Examples bool
}

// Report is the outcome of validating one rule file.
type Report struct {
	Results []rules.Result
}

// Failures counts the failed checks.
func (r Report) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == rules.StatusFail {
			n++
		}
	}
	return n
}

func (r Report) Valid() bool {
	return r.Failures() == 0
}

// ExitCode is 0 for a valid configuration and 1 otherwise.
func (r Report) ExitCode() int {
	if r.Valid() {
		return 0
	}
	return 1
}

// Check validates the rule file at path. Load errors end validation early;
// rule checks never stop at the first failing rule.
func Check(path string, opts Options) Report {
	log := logging.GetLogger("validate")
	done := logging.LogOperationStart(log, "validate")
	defer done()

	var report Report
	cfg, err := rules.Load(path)
	if err != nil {
		report.Results = append(report.Results, rules.FailResult("", CheckSchema, err.Error()))
		return report
	}
	report.Results = append(report.Results, rules.PassResult("", CheckSchema))

	for _, r := range cfg.Rules {
		report.Results = append(report.Results, checkRule(r, opts)...)
	}
	log.Debug().Int("rules", len(cfg.Rules)).Int("failures", report.Failures()).Msg("Validated configuration")
	return report
}

func checkRule(r rules.Rule, opts Options) []rules.Result {
	var results []rules.Result

	m, err := pattern.Compile(r.Pattern)
	if err != nil {
		return append(results, rules.FailResult(r.ID, CheckPattern, err.Error()))
	}
	results = append(results, rules.PassResult(r.ID, CheckPattern))

	globOK := true
	for _, g := range r.Glob {
		if _, err := scope.Resolve([]string{g}); err != nil {
			globOK = false
			results = append(results, rules.FailResult(r.ID, CheckGlob, err.Error()))
		}
	}
	if globOK {
		results = append(results, rules.PassResult(r.ID, CheckGlob))
	}

	if !opts.Examples || (len(r.Pass) == 0 && len(r.Fail) == 0) {
		return results
	}

	examplesOK := true
	for _, ex := range r.Fail {
		if !m.MatchString(ex) {
			examplesOK = false
			results = append(results, rules.FailResult(r.ID, CheckExamples, "fail example did not match: "+ex))
		}
	}
	for _, ex := range r.Pass {
		if m.MatchString(ex) {
			examplesOK = false
			results = append(results, rules.FailResult(r.ID, CheckExamples, "pass example matched: "+ex))
		}
	}
	if examplesOK {
		results = append(results, rules.PassResult(r.ID, CheckExamples))
	}
	return results
}

// Print writes the report in the "ok - ..." / "fail - ..." layout followed by
// the summary line. Passing rule checks are folded into the schema line.
func Print(w io.Writer, report Report, painter termstyle.Painter) error {
	if painter == nil {
		painter = termstyle.Plain{}
	}

	for _, res := range report.Results {
		var line string
		switch {
		case res.Status == rules.StatusFail && res.RuleID != "":
			line = fmt.Sprintf("%s - rule %s: %s", painter.Fail("fail"), res.RuleID, res.Message)
		case res.Status == rules.StatusFail:
			line = fmt.Sprintf("%s - %s", painter.Fail("fail"), res.Message)
		case res.RuleID == "":
			line = fmt.Sprintf("%s - %s", painter.OK("ok"), res.Check)
		default:
			continue
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, "\n")); err != nil {
			return err
		}
	}

	var summary string
	if report.Valid() {
		summary = painter.OK("configuration is valid")
	} else {
		summary = painter.Fail(fmt.Sprintf("configuration is invalid. fail: %d", report.Failures()))
	}
	_, err := fmt.Fprintln(w, summary)
	return err
}
