package engine

import (
	"bytes"
	"context"
	"os"
	"time"

	"goodcheck/internal/logging"
	"goodcheck/internal/rules"
	"goodcheck/internal/source"
)

// binarySniffSize is how much of a file is checked for a NUL byte.
const binarySniffSize = 64 * 1024

// searchRule runs one planned rule over files. Matches come out ordered by
// file path then line, since files are enumerated in path order.
func searchRule(ctx context.Context, rp *RulePlan, files []source.File) RuleExecutionResult {
	start := time.Now()
	res := RuleExecutionResult{Index: rp.Index, Rule: rp.Rule}
	log := logging.GetLogger("engine")

	if !rp.Runnable() {
		res.Problems = append(res.Problems, problemFor(rp.Rule.ID, rp.Err))
		res.Duration = time.Since(start)
		return res
	}

	for _, f := range FilterFiles(files, rp.Scope) {
		if ctx.Err() != nil {
			break
		}
		res.FilesSearched++

		content, err := os.ReadFile(f.Abs)
		if err != nil {
			res.Problems = append(res.Problems, problemFor(rp.Rule.ID, &FileAccessError{Path: f.Path, Err: err}))
			continue
		}
		if isBinary(content) {
			res.BinarySkipped++
			log.Debug().Str("rule", rp.Rule.ID).Str("path", f.Path).Msg("Skipping binary file")
			continue
		}

		for _, hit := range rp.Matcher.Find(content) {
			res.Matches = append(res.Matches, rules.Match{
				Path:        f.Path,
				Line:        hit.Line,
				ColumnStart: hit.Column,
				ColumnEnd:   hit.EndColumn,
				Text:        hit.Text,
				RuleID:      rp.Rule.ID,
				Message:     rp.Rule.Message,
			})
		}
	}

	res.Duration = time.Since(start)
	log.Debug().
		Str("rule", rp.Rule.ID).
		Int("files", res.FilesSearched).
		Int("matches", len(res.Matches)).
		Dur("duration", res.Duration).
		Msg("Rule searched")
	return res
}

func isBinary(content []byte) bool {
	if len(content) > binarySniffSize {
		content = content[:binarySniffSize]
	}
	return bytes.IndexByte(content, 0) >= 0
}
