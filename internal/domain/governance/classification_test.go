package governance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

func TestClassificationOrdering(t *testing.T) {
	ordered := []governance.Classification{
		governance.ClassificationPublic,
		governance.ClassificationInternal,
		governance.ClassificationPersonal,
		governance.ClassificationFinancial,
		governance.ClassificationHighlySensitive,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i].Rank(), ordered[i-1].Rank(),
			"%s must rank above %s", ordered[i], ordered[i-1])
	}
}

func TestClassificationPredicates(t *testing.T) {
	tests := []struct {
		name               string
		classification     governance.Classification
		valid              bool
		sensitive          bool
		requiresEncryption bool
	}{
		{"public", governance.ClassificationPublic, true, false, false},
		{"internal", governance.ClassificationInternal, true, false, false},
		{"personal", governance.ClassificationPersonal, true, true, false},
		{"financial", governance.ClassificationFinancial, true, true, true},
		{"highly sensitive", governance.ClassificationHighlySensitive, true, true, true},
		{"unknown", governance.Classification("SECRET"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.classification.Valid())
			assert.Equal(t, tt.sensitive, tt.classification.IsSensitive())
			assert.Equal(t, tt.requiresEncryption, tt.classification.RequiresEncryption())
		})
	}
}

func TestUnknownClassificationRanksBelowPublic(t *testing.T) {
	assert.Less(t, governance.Classification("bogus").Rank(), governance.ClassificationPublic.Rank())
}
