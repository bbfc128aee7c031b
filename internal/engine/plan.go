package engine

import (
	"fmt"

	"goodcheck/internal/logging"
	"goodcheck/internal/pattern"
	"goodcheck/internal/rules"
	"goodcheck/internal/scope"
	"goodcheck/internal/source"
)

// ScanPlan is the set of rules to run, in declaration order, over one file
// enumeration.
type ScanPlan struct {
	RulePlans []*RulePlan
	Files     []source.File
}

// RulePlan is one rule ready to run. When the pattern or the scope failed to
// compile, Err is set and the rule is reported instead of searched.
type RulePlan struct {
	Index   int
	Rule    rules.Rule
	Matcher *pattern.Matcher
	Scope   *scope.Scope
	Err     error
}

func NewScanPlan(files []source.File) *ScanPlan {
	return &ScanPlan{Files: files}
}

// AddRule compiles r and appends it to the plan. Compile failures stay local
// to the rule.
func (p *ScanPlan) AddRule(r rules.Rule) (*RulePlan, error) {
	if p == nil {
		return nil, fmt.Errorf("scan plan is nil")
	}

	rp := &RulePlan{Index: len(p.RulePlans), Rule: r}
	if m, err := pattern.Compile(r.Pattern); err != nil {
		rp.Err = err
	} else {
		rp.Matcher = m
	}
	if rp.Err == nil {
		if s, err := scope.Resolve(r.Glob); err != nil {
			rp.Err = err
		} else {
			rp.Scope = s
		}
	}

	p.RulePlans = append(p.RulePlans, rp)
	logPlanned(rp)
	return rp, nil
}

// Runnable reports whether the rule compiled.
func (rp *RulePlan) Runnable() bool {
	return rp.Err == nil
}

func logPlanned(rp *RulePlan) {
	log := logging.GetLogger("engine")
	if rp.Err != nil {
		log.Debug().Str("rule", rp.Rule.ID).Err(rp.Err).Msg("Rule will be skipped")
		return
	}
	log.Debug().
		Str("rule", rp.Rule.ID).
		Str("kind", string(rp.Matcher.Kind())).
		Str("source", rp.Matcher.Source()).
		Str("expr", rp.Matcher.Expr()).
		Bool("multiline", rp.Matcher.Multiline()).
		Strs("globs", rp.Scope.Globs()).
		Msg("Rule planned")
}
