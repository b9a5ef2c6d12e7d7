package policy

import (
	"fmt"
	"strings"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// ComputeFieldViolations evaluates the extended governance rule table for a
// single field under the active jurisdiction. It is a pure function of its
// inputs: callers recompute it whenever the field state or jurisdiction
// changes, and never persist the result independently.
func ComputeFieldViolations(field governance.FieldState, jurisdiction governance.Jurisdiction) []governance.Violation {
	violations := []governance.Violation{}

	if field.Classification.RequiresEncryption() && !field.FullyEncrypted() {
		violations = append(violations, governance.Violation{
			RuleID:   "require-encryption",
			Message:  fmt.Sprintf("%s requires encryption at rest and in transit.", field.Label),
			Severity: governance.SeverityBlock,
			Fixable:  true,
		})
	}

	if field.Classification == governance.ClassificationHighlySensitive && field.MaskingMode == governance.MaskingNone {
		violations = append(violations, governance.Violation{
			RuleID:   "require-masking",
			Message:  fmt.Sprintf("%s is HIGHLY_SENSITIVE and must use at least %q masking.", field.Label, governance.MaskingPartial),
			Severity: governance.SeverityWarn,
			Fixable:  true,
		})
	}

	if field.Classification == governance.ClassificationHighlySensitive && field.AIExposed() {
		violations = append(violations, governance.Violation{
			RuleID:   "ai-exposure",
			Message:  fmt.Sprintf("%s is HIGHLY_SENSITIVE; AI processing is prohibited without explicit approval.", field.Label),
			Severity: governance.SeverityWarn,
			Fixable:  false,
		})
	}

	if jurisdiction == governance.JurisdictionEU && field.Classification == governance.ClassificationFinancial && field.BusinessJustification == "" {
		violations = append(violations, governance.Violation{
			RuleID:   "gdpr-financial-consent",
			Message:  "EU jurisdiction: financial fields require a documented GDPR business justification.",
			Severity: governance.SeverityWarn,
			Fixable:  false,
		})
	}

	fieldID := strings.ToLower(field.FieldID)

	if jurisdiction == governance.JurisdictionCA && strings.Contains(fieldID, "ssn") {
		violations = append(violations, governance.Violation{
			RuleID:   "pipeda-ssn-blocked",
			Message:  "CA jurisdiction: SSN collection is blocked. Use SIN instead.",
			Severity: governance.SeverityBlock,
			Fixable:  false,
		})
	}

	if jurisdiction == governance.JurisdictionUS && strings.Contains(fieldID, "sin") {
		violations = append(violations, governance.Violation{
			RuleID:   "hipaa-sin-blocked",
			Message:  "US jurisdiction: SIN collection is blocked. Use SSN instead.",
			Severity: governance.SeverityBlock,
			Fixable:  false,
		})
	}

	return violations
}
