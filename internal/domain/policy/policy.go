package policy

import (
	"fmt"
	"sort"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// FieldRule is a pure predicate evaluated once per (field, value) pair. A rule
// that does not apply returns nil. Rules may inspect the whole value and
// metadata maps for cross-field conditions.
type FieldRule interface {
	ID() string
	Name() string
	Evaluate(value any, meta governance.FieldMetadata, values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation
}

// AggregateRule is evaluated exactly once per evaluation pass against the
// whole field set, so aggregate findings surface as a single violation
// instead of one per field.
type AggregateRule interface {
	ID() string
	Name() string
	EvaluateAll(values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation
}

// Engine evaluates an ordered collection of rules against live form data.
// Rule order defines emission order only; all matching rules fire.
type Engine struct {
	fieldRules []FieldRule
	aggregates []AggregateRule
}

// NewEngine builds an engine from caller-supplied rules. Both lists may be
// empty; the engine treats the rules opaquely.
func NewEngine(fieldRules []FieldRule, aggregates []AggregateRule) *Engine {
	return &Engine{
		fieldRules: append([]FieldRule(nil), fieldRules...),
		aggregates: append([]AggregateRule(nil), aggregates...),
	}
}

// Evaluate runs every field rule against every (name, value) pair that has
// matching metadata, then every aggregate rule once. Fields are visited in
// lexicographic name order so output is deterministic. The same rule id may
// appear once per offending field.
//
// A rule that panics is a programming error, not a domain condition: the
// pass fails with an error identifying the rule and is never silently
// swallowed.
func (e *Engine) Evaluate(values map[string]any, metadata map[string]governance.FieldMetadata) (violations []governance.Violation, err error) {
	defer func() {
		if r := recover(); r != nil {
			violations = nil
			err = fmt.Errorf("policy rule panicked: %v", r)
		}
	}()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	violations = []governance.Violation{}
	for _, name := range names {
		meta, ok := metadata[name]
		if !ok {
			continue
		}
		for _, rule := range e.fieldRules {
			if v := rule.Evaluate(values[name], meta, values, metadata); v != nil {
				violations = append(violations, *v)
			}
		}
	}

	for _, rule := range e.aggregates {
		if v := rule.EvaluateAll(values, metadata); v != nil {
			violations = append(violations, *v)
		}
	}

	return violations, nil
}

// fieldRule adapts a bare evaluate function into a FieldRule.
type fieldRule struct {
	id   string
	name string
	fn   func(value any, meta governance.FieldMetadata, values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation
}

func (r fieldRule) ID() string   { return r.id }
func (r fieldRule) Name() string { return r.name }

func (r fieldRule) Evaluate(value any, meta governance.FieldMetadata, values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation {
	return r.fn(value, meta, values, metadata)
}

// NewFieldRule wraps fn as a FieldRule, for third-party rule plugins that do
// not want to define a type.
func NewFieldRule(id, name string, fn func(value any, meta governance.FieldMetadata, values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation) FieldRule {
	return fieldRule{id: id, name: name, fn: fn}
}

type aggregateRule struct {
	id   string
	name string
	fn   func(values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation
}

func (r aggregateRule) ID() string   { return r.id }
func (r aggregateRule) Name() string { return r.name }

func (r aggregateRule) EvaluateAll(values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation {
	return r.fn(values, metadata)
}

// NewAggregateRule wraps fn as an AggregateRule.
func NewAggregateRule(id, name string, fn func(values map[string]any, metadata map[string]governance.FieldMetadata) *governance.Violation) AggregateRule {
	return aggregateRule{id: id, name: name, fn: fn}
}
