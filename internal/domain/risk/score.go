package risk

import (
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// Level buckets a normalized risk score. The basic model never produces
// CRITICAL; the multi-factor model uses all four.
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Breakdown itemizes the basic model's contributing terms, each capped at 100.
type Breakdown struct {
	PIIWeight         int `json:"pii_weight"`
	ValidationPenalty int `json:"validation_penalty"`
	FreeTextPenalty   int `json:"free_text_penalty"`
}

// Score is the basic per-change risk result.
type Score struct {
	Score     int       `json:"score"` // 0-100
	Level     Level     `json:"level"`
	Blocking  bool      `json:"blocking"`
	Breakdown Breakdown `json:"breakdown"`
}

// Classification weights for the basic model. PII weight tracks the subset
// of tiers that identify a person.
const (
	weightHighlySensitive = 40
	weightFinancial       = 30
	weightPersonal        = 20
	weightInternal        = 5

	validationErrorPenalty = 10
	freeTextErrorPenalty   = 15
	freeTextLengthLimit    = 50
)

// Calculate computes the basic weighted-sum risk score over the registered
// fields. Classification weight counts only when a field holds data; a
// validation error adds a flat penalty per field; long free-text values in
// non-PUBLIC fields add a heuristic penalty for unstructured PII leakage.
// Pure function: identical inputs always produce identical output.
func Calculate(values map[string]any, metadata map[string]governance.FieldMetadata, errors map[string]string) Score {
	if len(metadata) == 0 {
		return Score{Level: LevelLow, Breakdown: Breakdown{}}
	}

	var classificationWeight, piiWeight, validationPenalty, freeTextPenalty int

	for name, meta := range metadata {
		value := values[name]
		hasValue := governance.HasValue(value)

		if hasValue {
			switch meta.Classification {
			case governance.ClassificationHighlySensitive:
				classificationWeight += weightHighlySensitive
				piiWeight += weightHighlySensitive
			case governance.ClassificationFinancial:
				classificationWeight += weightFinancial
				piiWeight += weightFinancial
			case governance.ClassificationPersonal:
				classificationWeight += weightPersonal
				piiWeight += weightPersonal
			case governance.ClassificationInternal:
				// Proprietary but not PII.
				classificationWeight += weightInternal
			}
		}

		if errors[name] != "" {
			validationPenalty += validationErrorPenalty
		}

		if s, ok := value.(string); ok && hasValue &&
			len(s) > freeTextLengthLimit && meta.Classification != governance.ClassificationPublic {
			freeTextPenalty += freeTextErrorPenalty
		}
	}

	score := clamp(classificationWeight+validationPenalty+freeTextPenalty, 0, 100)

	level := LevelLow
	switch {
	case score >= 70:
		level = LevelHigh
	case score >= 30:
		level = LevelMedium
	}

	return Score{
		Score:    score,
		Level:    level,
		Blocking: level == LevelHigh,
		Breakdown: Breakdown{
			PIIWeight:         min(piiWeight, 100),
			ValidationPenalty: min(validationPenalty, 100),
			FreeTextPenalty:   min(freeTextPenalty, 100),
		},
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
