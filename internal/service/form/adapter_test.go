package form_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starterdev/guardian-form-backend/internal/service/form"
)

func TestValidatorAdapter(t *testing.T) {
	validate := form.NewValidatorAdapter(validator.New(), form.FieldRules{
		"email": "required,email",
		"ssn":   "omitempty,len=9",
		"dept":  "",
	}, map[string]string{
		"email": "A valid email address is required.",
	})

	t.Run("clean values pass", func(t *testing.T) {
		errs, err := validate(context.Background(), map[string]any{
			"email": "user@example.com",
			"ssn":   "123456789",
		})
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("failures report custom message", func(t *testing.T) {
		errs, err := validate(context.Background(), map[string]any{"email": "not-an-email"})
		require.NoError(t, err)
		assert.Equal(t, "A valid email address is required.", errs["email"])
	})

	t.Run("failures without custom message report the tag", func(t *testing.T) {
		errs, err := validate(context.Background(), map[string]any{
			"email": "user@example.com",
			"ssn":   "123",
		})
		require.NoError(t, err)
		assert.Equal(t, "failed len validation", errs["ssn"])
	})

	t.Run("omitempty skips absent values", func(t *testing.T) {
		errs, err := validate(context.Background(), map[string]any{"email": "user@example.com"})
		require.NoError(t, err)
		assert.NotContains(t, errs, "ssn")
	})
}
