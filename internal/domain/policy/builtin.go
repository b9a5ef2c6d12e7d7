package policy

import (
	"fmt"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// NoPlaintextPII blocks any field classified above INTERNAL that holds data
// while its encryption-required flag is unset.
func NoPlaintextPII() FieldRule {
	const id = "no-plaintext-pii"
	return NewFieldRule(id, "No Plaintext PII", func(value any, meta governance.FieldMetadata, _ map[string]any, _ map[string]governance.FieldMetadata) *governance.Violation {
		if meta.Classification.IsSensitive() && !meta.EncryptionRequired && governance.Truthy(value) {
			return &governance.Violation{
				RuleID:   id,
				Message:  fmt.Sprintf("Field %q contains PII but encryption is not enabled.", meta.Label),
				Severity: governance.SeverityBlock,
			}
		}
		return nil
	})
}

// RequireEncryption blocks FINANCIAL and HIGHLY_SENSITIVE fields whose
// encryption-required flag is unset, regardless of value presence.
func RequireEncryption() FieldRule {
	const id = "require-encryption"
	return NewFieldRule(id, "Require Encryption", func(_ any, meta governance.FieldMetadata, _ map[string]any, _ map[string]governance.FieldMetadata) *governance.Violation {
		if meta.Classification.RequiresEncryption() && !meta.EncryptionRequired {
			return &governance.Violation{
				RuleID:   id,
				Message:  fmt.Sprintf("Field %q requires encryption due to its classification (%s).", meta.Label, meta.Classification),
				Severity: governance.SeverityBlock,
			}
		}
		return nil
	})
}

// MaskHighlySensitive warns when a HIGHLY_SENSITIVE field has masking
// disabled.
func MaskHighlySensitive() FieldRule {
	const id = "mask-highly-sensitive"
	return NewFieldRule(id, "Mask Highly Sensitive", func(_ any, meta governance.FieldMetadata, _ map[string]any, _ map[string]governance.FieldMetadata) *governance.Violation {
		if meta.Classification == governance.ClassificationHighlySensitive && !meta.Masked {
			return &governance.Violation{
				RuleID:   id,
				Message:  fmt.Sprintf("Field %q must be masked for security.", meta.Label),
				Severity: governance.SeverityWarn,
			}
		}
		return nil
	})
}

// DependentField blocks when condition(value) holds on the target field but
// the dependent field is empty. It fires only while evaluating the target
// field's own entry.
func DependentField(targetField string, condition func(any) bool, dependentField, message string) FieldRule {
	const id = "dependent-field"
	return NewFieldRule(id, "Dependent Field", func(value any, meta governance.FieldMetadata, values map[string]any, _ map[string]governance.FieldMetadata) *governance.Violation {
		if meta.Name != targetField {
			return nil
		}
		if condition(value) && !governance.Truthy(values[dependentField]) {
			return &governance.Violation{
				RuleID:   id,
				Message:  message,
				Severity: governance.SeverityBlock,
			}
		}
		return nil
	})
}

// DataMinimization warns once per evaluation pass when the number of fields
// classified above INTERNAL exceeds limit. It is an aggregate rule: the
// finding concerns the form as a whole, so it never repeats per field.
func DataMinimization(limit int) AggregateRule {
	const id = "data-minimization"
	return NewAggregateRule(id, "Data Minimization", func(_ map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation {
		count := 0
		for _, meta := range metadata {
			if meta.Classification.IsSensitive() {
				count++
			}
		}
		if count > limit {
			return &governance.Violation{
				RuleID:   id,
				Message:  fmt.Sprintf("Collecting %d PII fields. Consider reducing for data minimization (limit: %d).", count, limit),
				Severity: governance.SeverityWarn,
			}
		}
		return nil
	})
}
