package governance

// Severity indicates how a policy violation affects submission.
type Severity string

const (
	// SeverityWarn violations are informational and never block submission.
	SeverityWarn Severity = "WARN"
	// SeverityBlock violations block submission while policy mode is enforce.
	SeverityBlock Severity = "BLOCK"
)

// Violation is a single rule finding against a field or the whole form.
// Violations are always derived from the current state, never persisted
// independently of it.
type Violation struct {
	RuleID   string   `json:"rule_id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	// Fixable marks violations that auto-remediation can clear.
	Fixable bool `json:"fixable"`
}

// IsBlocking reports whether the violation carries BLOCK severity.
func (v Violation) IsBlocking() bool {
	return v.Severity == SeverityBlock
}

// HasBlocking reports whether any violation in the list carries BLOCK severity.
func HasBlocking(violations []Violation) bool {
	for _, v := range violations {
		if v.IsBlocking() {
			return true
		}
	}
	return false
}
