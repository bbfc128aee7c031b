package output

import "goodcheck/internal/rules"

// Event types streamed in NDJSON mode.
const (
	EventRunStarted   = "run.started"
	EventRuleStarted  = "rule.started"
	EventMatch        = "match"
	EventProblem      = "problem"
	EventRuleFinished = "rule.finished"
	EventRunFinished  = "run.finished"
)

// Event is a lifecycle record for NDJSON streaming output.
//
// In NDJSON mode, sinks emit Events (one JSON object per line). Matches and
// problems are wrapped into "match" and "problem" events.
//
// JSON mode remains an aggregate of rules.Match values.
type Event struct {
	Type string `json:"type"`

	RuleID        string   `json:"rule_id,omitempty"`
	Message       string   `json:"message,omitempty"`
	Justification []string `json:"justification,omitempty"`

	Match   *rules.Match   `json:"match,omitempty"`
	Problem *rules.Problem `json:"problem,omitempty"`

	Rules      int  `json:"rules,omitempty"`
	Files      int  `json:"files,omitempty"`
	Matches    int  `json:"matches,omitempty"`
	Problems   int  `json:"problems,omitempty"`
	Suppressed int  `json:"suppressed,omitempty"`
	ExitCode   *int `json:"exit_code,omitempty"`
}

// RuleStartedEvent describes a rule before its records are written.
func RuleStartedEvent(r rules.Rule) Event {
	return Event{
		Type:          EventRuleStarted,
		RuleID:        r.ID,
		Message:       r.Message,
		Justification: r.Justification,
	}
}

// RunFinishedEvent carries the final exit code.
func RunFinishedEvent(code int) Event {
	return Event{Type: EventRunFinished, ExitCode: &code}
}

func eventFromMatch(m rules.Match) Event {
	return Event{Type: EventMatch, RuleID: m.RuleID, Match: &m}
}

func eventFromProblem(p rules.Problem) Event {
	return Event{Type: EventProblem, RuleID: p.RuleID, Problem: &p}
}

// asEvent converts any record a sink accepts into its NDJSON event.
func asEvent(v any) (Event, bool) {
	switch t := v.(type) {
	case Event:
		return t, true
	case rules.Match:
		return eventFromMatch(t), true
	case rules.Problem:
		return eventFromProblem(t), true
	default:
		return Event{}, false
	}
}
