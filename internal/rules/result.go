package rules

// Status is the outcome of one configuration check.
type Status string

const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
)

// Result records one configuration check made by the validator. RuleID is
// empty for checks that concern the whole file.
type Result struct {
	RuleID  string `json:"rule_id,omitempty"`
	Check   string `json:"check"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func PassResult(ruleID, check string) Result {
	return Result{RuleID: ruleID, Check: check, Status: StatusPass}
}

func FailResult(ruleID, check, message string) Result {
	return Result{RuleID: ruleID, Check: check, Status: StatusFail, Message: message}
}
