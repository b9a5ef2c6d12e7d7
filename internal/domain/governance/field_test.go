package governance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

func TestNewFieldState(t *testing.T) {
	f := governance.NewFieldState("ssn", governance.ClassificationHighlySensitive, "Social Security Number")
	require.Equal(t, "ssn", f.FieldID)
	require.Equal(t, governance.ClassificationHighlySensitive, f.Classification)
	require.Equal(t, "Social Security Number", f.Label)

	// Defaults are conservative but unencumbered.
	assert.False(t, f.EncryptionAtRest)
	assert.False(t, f.EncryptionInTransit)
	assert.Equal(t, governance.KMSDefault, f.KMSKey)
	assert.Equal(t, governance.MaskingNone, f.MaskingMode)
	assert.Equal(t, governance.AccessEditor, f.AccessRole)
	assert.Equal(t, governance.AuditLoggingFlags{}, f.AuditLogging)
	assert.Zero(t, f.RetentionDays)
	assert.False(t, f.AutoDelete)
	assert.False(t, f.AllowAIProcessing)
	assert.False(t, f.AllowModelTraining)
	assert.Empty(t, f.BusinessJustification)
	assert.Equal(t, governance.ApprovalPending, f.ApprovalStatus)
	assert.Equal(t, governance.ApproverLegal, f.ApproverRole)
	assert.False(t, f.IsRemediated)
	assert.Empty(t, f.Violations)
}

func TestFieldStateHelpers(t *testing.T) {
	f := governance.NewFieldState("card", governance.ClassificationFinancial, "Card")
	assert.False(t, f.FullyEncrypted())

	f.EncryptionAtRest = true
	assert.False(t, f.FullyEncrypted(), "one flag is not full encryption")

	f.EncryptionInTransit = true
	assert.True(t, f.FullyEncrypted())

	assert.False(t, f.AIExposed())
	f.AllowModelTraining = true
	assert.True(t, f.AIExposed())
}

func TestValueHelpers(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		hasValue bool
		truthy   bool
	}{
		{"nil", nil, false, false},
		{"empty string", "", false, false},
		{"blank string", "   ", false, false},
		{"string", "x", true, true},
		{"false", false, true, false},
		{"true", true, true, true},
		{"zero int", 0, true, false},
		{"int", 7, true, true},
		{"zero float", 0.0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.hasValue, governance.HasValue(tt.value))
			assert.Equal(t, tt.truthy, governance.Truthy(tt.value))
		})
	}
}
