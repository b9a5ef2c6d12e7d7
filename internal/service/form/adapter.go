package form

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// FieldRules maps field names to go-playground/validator tag expressions,
// e.g. {"email": "required,email", "ssn": "omitempty,len=9"}.
type FieldRules map[string]string

// NewValidatorAdapter wraps a go-playground validator into a ValidateFunc.
// messages optionally overrides the default per-field error text. The
// controller stays schema-agnostic; all schema knowledge lives in the rules
// the caller supplies here.
func NewValidatorAdapter(v *validator.Validate, rules FieldRules, messages map[string]string) ValidateFunc {
	return func(ctx context.Context, values map[string]any) (map[string]string, error) {
		errs := map[string]string{}
		for name, tag := range rules {
			if tag == "" {
				continue
			}
			err := v.VarCtx(ctx, values[name], tag)
			if err == nil {
				continue
			}

			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				// Malformed tag or unusable value: a programming error,
				// fatal to the pass rather than a field finding.
				return nil, fmt.Errorf("validating field %q: %w", name, err)
			}
			if msg, ok := messages[name]; ok {
				errs[name] = msg
			} else {
				errs[name] = fmt.Sprintf("failed %s validation", verrs[0].Tag())
			}
		}
		return errs, nil
	}
}
