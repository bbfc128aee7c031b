package rules

// Match is one occurrence of a rule's pattern. Line and columns are 1-based;
// columns are byte offsets into Text and ColumnEnd is exclusive.
type Match struct {
	Path        string `json:"path"`
	Line        int    `json:"line"`
	ColumnStart int    `json:"column_start"`
	ColumnEnd   int    `json:"column_end"`
	Text        string `json:"text"`
	RuleID      string `json:"rule_id"`
	Message     string `json:"message"`
}

// ProblemKind classifies a Problem.
type ProblemKind string

const (
	ProblemPattern ProblemKind = "pattern"
	ProblemScope   ProblemKind = "scope"
	ProblemFile    ProblemKind = "file"
)

// Problem is an error confined to one rule or one file. It is reported to
// the user without stopping the scan.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	RuleID  string      `json:"rule_id,omitempty"`
	Path    string      `json:"path,omitempty"`
	Message string      `json:"message"`
}

func (p Problem) String() string {
	switch {
	case p.RuleID != "" && p.Path != "":
		return "rule " + p.RuleID + ": " + p.Path + ": " + p.Message
	case p.RuleID != "":
		return "rule " + p.RuleID + ": " + p.Message
	case p.Path != "":
		return p.Path + ": " + p.Message
	default:
		return p.Message
	}
}
