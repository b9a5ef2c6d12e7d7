package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
	"github.com/starterdev/guardian-form-backend/internal/domain/policy"
)

func TestNoPlaintextPII(t *testing.T) {
	rule := policy.NoPlaintextPII()

	tests := []struct {
		name     string
		value    any
		meta     governance.FieldMetadata
		expected bool
	}{
		{
			name:  "blocks PII without encryption",
			value: "test@example.com",
			meta: governance.FieldMetadata{
				Name:           "email",
				Label:          "Email",
				Classification: governance.ClassificationPersonal,
			},
			expected: true,
		},
		{
			name:  "passes with encryption enabled",
			value: "test@example.com",
			meta: governance.FieldMetadata{
				Name:               "email",
				Label:              "Email",
				Classification:     governance.ClassificationPersonal,
				EncryptionRequired: true,
			},
			expected: false,
		},
		{
			name:  "passes for empty value",
			value: "",
			meta: governance.FieldMetadata{
				Name:           "email",
				Label:          "Email",
				Classification: governance.ClassificationPersonal,
			},
			expected: false,
		},
		{
			name:  "passes for internal data",
			value: "project-codename",
			meta: governance.FieldMetadata{
				Name:           "project",
				Label:          "Project",
				Classification: governance.ClassificationInternal,
			},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := rule.Evaluate(tt.value, tt.meta, nil, nil)
			if tt.expected {
				require.NotNil(t, v)
				assert.Equal(t, "no-plaintext-pii", v.RuleID)
				assert.Equal(t, governance.SeverityBlock, v.Severity)
			} else {
				assert.Nil(t, v)
			}
		})
	}
}

func TestRequireEncryption(t *testing.T) {
	rule := policy.RequireEncryption()

	meta := governance.FieldMetadata{
		Name:           "card",
		Label:          "Card",
		Classification: governance.ClassificationFinancial,
	}
	v := rule.Evaluate("123", meta, nil, nil)
	require.NotNil(t, v)
	assert.Equal(t, governance.SeverityBlock, v.Severity)

	// Fires regardless of value presence.
	v = rule.Evaluate(nil, meta, nil, nil)
	require.NotNil(t, v)

	meta.EncryptionRequired = true
	assert.Nil(t, rule.Evaluate("123", meta, nil, nil))
}

func TestMaskHighlySensitive(t *testing.T) {
	rule := policy.MaskHighlySensitive()

	meta := governance.FieldMetadata{
		Name:           "ssn",
		Label:          "SSN",
		Classification: governance.ClassificationHighlySensitive,
	}
	v := rule.Evaluate("", meta, nil, nil)
	require.NotNil(t, v)
	assert.Equal(t, governance.SeverityWarn, v.Severity)

	meta.Masked = true
	assert.Nil(t, rule.Evaluate("", meta, nil, nil))
}

func TestDependentField(t *testing.T) {
	rule := policy.DependentField("ssn", func(v any) bool { return governance.Truthy(v) },
		"approver", "An Approver is required when SSN is provided.")

	ssnMeta := governance.FieldMetadata{Name: "ssn", Label: "SSN", Classification: governance.ClassificationHighlySensitive}
	approverMeta := governance.FieldMetadata{Name: "approver", Label: "Approver", Classification: governance.ClassificationInternal}
	metadata := map[string]governance.FieldMetadata{"ssn": ssnMeta, "approver": approverMeta}

	t.Run("fires when dependent is empty", func(t *testing.T) {
		values := map[string]any{"ssn": "123456789", "approver": ""}
		v := rule.Evaluate(values["ssn"], ssnMeta, values, metadata)
		require.NotNil(t, v)
		assert.Equal(t, governance.SeverityBlock, v.Severity)
		assert.Equal(t, "An Approver is required when SSN is provided.", v.Message)
	})

	t.Run("silent when dependent is filled", func(t *testing.T) {
		values := map[string]any{"ssn": "123456789", "approver": "jauthor"}
		assert.Nil(t, rule.Evaluate(values["ssn"], ssnMeta, values, metadata))
	})

	t.Run("silent when condition fails", func(t *testing.T) {
		values := map[string]any{"ssn": "", "approver": ""}
		assert.Nil(t, rule.Evaluate(values["ssn"], ssnMeta, values, metadata))
	})

	t.Run("only fires on the target field's own entry", func(t *testing.T) {
		values := map[string]any{"ssn": "123456789", "approver": ""}
		assert.Nil(t, rule.Evaluate(values["approver"], approverMeta, values, metadata))
	})
}

func TestDataMinimization(t *testing.T) {
	rule := policy.DataMinimization(1)

	metadata := map[string]governance.FieldMetadata{
		"email": {Name: "email", Label: "Email", Classification: governance.ClassificationPersonal},
		"phone": {Name: "phone", Label: "Phone", Classification: governance.ClassificationPersonal},
	}
	values := map[string]any{"email": "", "phone": ""}

	v := rule.EvaluateAll(values, metadata)
	require.NotNil(t, v)
	assert.Equal(t, "data-minimization", v.RuleID)
	assert.Equal(t, governance.SeverityWarn, v.Severity)
	assert.Contains(t, v.Message, "Collecting 2 PII fields")

	t.Run("silent at or under the limit", func(t *testing.T) {
		assert.Nil(t, policy.DataMinimization(2).EvaluateAll(values, metadata))
	})

	t.Run("ignores non-PII fields", func(t *testing.T) {
		metadata := map[string]governance.FieldMetadata{
			"dept":  {Name: "dept", Classification: governance.ClassificationInternal},
			"notes": {Name: "notes", Classification: governance.ClassificationPublic},
		}
		assert.Nil(t, rule.EvaluateAll(map[string]any{}, metadata))
	})
}
