package engine

import (
	"errors"
	"fmt"
	"io/fs"

	"goodcheck/internal/pattern"
	"goodcheck/internal/rules"
	"goodcheck/internal/scope"
)

// FileAccessError reports a candidate file that could not be read. The file
// is skipped for the rule; the scan continues.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// problemFor turns a rule-local error into the record shown to the user.
func problemFor(ruleID string, err error) rules.Problem {
	p := rules.Problem{RuleID: ruleID, Message: err.Error()}

	var fae *FileAccessError
	var pe *pattern.Error
	var se *scope.Error
	switch {
	case errors.As(err, &fae):
		p.Kind = rules.ProblemFile
		p.Path = fae.Path
		p.Message = describeIOError(fae.Err)
	case errors.As(err, &se):
		p.Kind = rules.ProblemScope
	case errors.As(err, &pe), errors.Is(err, pattern.ErrEmptyPattern):
		p.Kind = rules.ProblemPattern
	default:
		p.Kind = rules.ProblemFile
	}
	return p
}

// describeIOError drops the path from *fs.PathError; the problem carries it.
func describeIOError(err error) string {
	var pe *fs.PathError
	if errors.As(err, &pe) {
		return fmt.Sprintf("%s: %v", pe.Op, pe.Err)
	}
	return err.Error()
}
