package output

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"goodcheck/internal/rules"
)

// maxFindingsPerRule caps the match lines listed under one rule.
const maxFindingsPerRule = 50

type ReportSink struct {
	path         string
	file         *os.File
	mu           sync.Mutex
	rules        []*ruleStats
	byID         map[string]*ruleStats
	matches      []rules.Match
	problems     []rules.Problem
	files        int
	exitCode     int
	haveExitCode bool
}

func NewReportSink(path string) (*ReportSink, error) {
	if path == "" {
		return nil, fmt.Errorf("report path required")
	}

	f, err := createFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create report file: %w", err)
	}

	return &ReportSink{
		path: path,
		file: f,
		byID: make(map[string]*ruleStats),
	}, nil
}

func (s *ReportSink) Write(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch t := v.(type) {
	case rules.Match:
		s.matches = append(s.matches, t)
		rs := s.stats(t.RuleID)
		rs.Matches = append(rs.Matches, t)
		if rs.Message == "" {
			rs.Message = t.Message
		}
	case rules.Problem:
		s.problems = append(s.problems, t)
		if t.RuleID != "" {
			s.stats(t.RuleID).Problems++
		}
	case Event:
		switch t.Type {
		case EventRunStarted:
			s.files = t.Files
		case EventRuleStarted:
			rs := s.stats(t.RuleID)
			rs.Message = t.Message
			rs.Justification = appendUnique(rs.Justification, t.Justification...)
		case EventRunFinished:
			if t.ExitCode != nil {
				s.exitCode = *t.ExitCode
				s.haveExitCode = true
			}
		}
	}
	return nil
}

// stats returns the entry for id, adding it in first-seen order.
func (s *ReportSink) stats(id string) *ruleStats {
	if rs, ok := s.byID[id]; ok {
		return rs
	}
	rs := &ruleStats{ID: id}
	s.byID[id] = rs
	s.rules = append(s.rules, rs)
	return rs
}

func (s *ReportSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("# goodcheck Report\n\n")

	fmt.Fprintf(&b, "Scanned %d files with %d rules: %d matches, %d problems.", s.files, len(s.rules), len(s.matches), len(s.problems))
	if s.haveExitCode {
		fmt.Fprintf(&b, " Exit code %d.", s.exitCode)
	}
	b.WriteString("\n\n")

	// --- Summary ---
	b.WriteString("## Summary\n\n")
	if len(s.rules) == 0 {
		b.WriteString("No rules evaluated.\n\n")
	} else {
		b.WriteString("| Rule | Matches | Files | Problems |\n")
		b.WriteString("| --- | ---: | ---: | ---: |\n")
		for _, rs := range s.rules {
			fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", mdCode(mdEscape(rs.ID)), len(rs.Matches), len(rs.Files()), rs.Problems)
		}
		b.WriteString("\n")
	}

	// --- Hot spots ---
	b.WriteString("## Files With the Most Matches\n\n")
	hot := topFiles(s.matches, 5)
	if len(hot) == 0 {
		b.WriteString("No matches.\n\n")
	} else {
		b.WriteString("| File | Matches | Rules |\n")
		b.WriteString("| --- | ---: | --- |\n")
		for _, fs := range hot {
			fmt.Fprintf(&b, "| %s | %d | %s |\n", mdEscape(fs.Path), fs.Matches, formatList(fs.Rules, 3))
		}
		b.WriteString("\n")
	}

	// --- Findings ---
	b.WriteString("## Findings\n\n")
	if len(s.matches) == 0 {
		b.WriteString("- None\n\n")
	}
	for _, rs := range s.rules {
		if len(rs.Matches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s\n\n", mdCode(rs.ID))
		if title := rs.Title(); title != "" {
			fmt.Fprintf(&b, "%s\n\n", title)
		}
		if len(rs.Justification) > 0 {
			b.WriteString("Justification:\n\n")
			for _, j := range rs.Justification {
				fmt.Fprintf(&b, "> - %s\n", strings.TrimSpace(j))
			}
			b.WriteString("\n")
		}
		for i, m := range rs.Matches {
			if i == maxFindingsPerRule {
				fmt.Fprintf(&b, "- ... %d more\n", len(rs.Matches)-maxFindingsPerRule)
				break
			}
			fmt.Fprintf(&b, "- %s: %s\n", mdCode(fmt.Sprintf("%s:%d", m.Path, m.Line)), mdCode(strings.TrimSpace(m.Text)))
		}
		b.WriteString("\n")
	}

	// --- Problems ---
	b.WriteString("## Problems\n\n")
	if len(s.problems) == 0 {
		b.WriteString("- None\n\n")
	} else {
		for _, p := range s.problems {
			label := string(p.Kind)
			if p.RuleID != "" {
				label = fmt.Sprintf("%s (%s)", mdCode(p.RuleID), p.Kind)
			}
			msg := p.Message
			if p.Path != "" {
				msg = p.Path + ": " + msg
			}
			fmt.Fprintf(&b, "- **%s**: %s\n", label, mdEscape(msg))
		}
		b.WriteString("\n")
	}

	// --- Rules Evaluated ---
	b.WriteString("## Rules evaluated\n")
	if len(s.rules) == 0 {
		b.WriteString("- None\n\n")
	} else {
		for _, rs := range s.rules {
			fmt.Fprintf(&b, "- %s\n", rs.ID)
		}
		b.WriteString("\n")
	}

	if _, err := s.file.WriteString(b.String()); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}
