package output

import (
	"fmt"
	"sort"
	"strings"

	"goodcheck/internal/rules"
)

type ruleStats struct {
	ID            string
	Message       string
	Justification []string
	Matches       []rules.Match
	Problems      int
}

// Title is the first non-empty line of the rule message.
func (r *ruleStats) Title() string {
	title, _, _ := strings.Cut(strings.TrimSpace(r.Message), "\n")
	return strings.TrimSpace(title)
}

// Files returns the distinct paths with matches, sorted.
func (r *ruleStats) Files() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range r.Matches {
		if _, ok := seen[m.Path]; ok {
			continue
		}
		seen[m.Path] = struct{}{}
		out = append(out, m.Path)
	}
	sort.Strings(out)
	return out
}

type fileStats struct {
	Path    string
	Matches int
	Rules   []string
}

// topFiles ranks paths by match count, ties broken by path.
func topFiles(matches []rules.Match, n int) []*fileStats {
	byPath := make(map[string]*fileStats)
	for _, m := range matches {
		fs, ok := byPath[m.Path]
		if !ok {
			fs = &fileStats{Path: m.Path}
			byPath[m.Path] = fs
		}
		fs.Matches++
		fs.Rules = appendUnique(fs.Rules, m.RuleID)
	}

	all := make([]*fileStats, 0, len(byPath))
	for _, fs := range byPath {
		all = append(all, fs)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Matches != all[j].Matches {
			return all[i].Matches > all[j].Matches
		}
		return all[i].Path < all[j].Path
	})

	if len(all) > n {
		return all[:n]
	}
	return all
}

func formatList(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if len(items) <= max {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s, +%d more", strings.Join(items[:max], ", "), len(items)-max)
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, existing := range list {
			if existing == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}

// mdEscape keeps table cells on one line and intact.
func mdEscape(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// mdCode renders s as inline code, widening the fence when s has backticks.
func mdCode(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	fence := "`"
	for strings.Contains(s, fence) {
		fence += "`"
	}
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		return fence + " " + s + " " + fence
	}
	return fence + s + fence
}
