package risk

import (
	"math"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// Factor caps for the multi-factor model. Coverage factors are inverse: low
// coverage produces a high contribution.
const (
	capPIIDensity           = 25
	capHighlySensitiveRatio = 20
	capEncryptionCoverage   = 20
	capMaskingCoverage      = 15
	capRetentionCompliance  = 10
	capAIExposure           = 5

	aiExposurePerField = 2

	roleModifierAuditor = -10
	roleModifierAdmin   = -5
)

// Factors is the multi-factor risk breakdown. Each factor is independently
// bounded; Total is their clamped sum.
type Factors struct {
	PIIDensity           int   `json:"pii_density"`            // 0-25
	HighlySensitiveRatio int   `json:"highly_sensitive_ratio"` // 0-20
	EncryptionCoverage   int   `json:"encryption_coverage"`    // 0-20, inverse
	MaskingCoverage      int   `json:"masking_coverage"`       // 0-15, inverse
	RetentionCompliance  int   `json:"retention_compliance"`   // 0-10, inverse
	AIExposurePenalty    int   `json:"ai_exposure_penalty"`    // 0-5
	RoleModifier         int   `json:"role_modifier"`          // -10 to 0
	Total                int   `json:"total"`                  // 0-100
	Level                Level `json:"level"`
}

// Compute derives the multi-factor risk breakdown from an immutable snapshot
// of field governance states. Pure function of its inputs; callers recompute
// it whenever the field set, any field's state, the jurisdiction or the role
// changes. An empty field set scores zero at LOW.
func Compute(fields []governance.FieldState, _ governance.Jurisdiction, role governance.SimRole) Factors {
	total := len(fields)
	if total == 0 {
		return Factors{Level: LevelLow}
	}

	var sensitive, highlySensitive, needsEncryption, encrypted, maskedFull, withRetention, aiExposed int
	for _, f := range fields {
		if f.Classification.IsSensitive() {
			sensitive++
			if f.MaskingMode == governance.MaskingFull {
				maskedFull++
			}
		}
		if f.Classification == governance.ClassificationHighlySensitive {
			highlySensitive++
			if f.AIExposed() {
				aiExposed++
			}
		}
		if f.Classification.RequiresEncryption() {
			needsEncryption++
			if f.FullyEncrypted() {
				encrypted++
			}
		}
		if f.RetentionDays > 0 {
			withRetention++
		}
	}

	piiDensity := roundRatio(sensitive, total, capPIIDensity)
	hsRatio := roundRatio(highlySensitive, total, capHighlySensitiveRatio)

	encCoverage := 1.0
	if needsEncryption > 0 {
		encCoverage = float64(encrypted) / float64(needsEncryption)
	}
	encryptionCoverage := roundScaled(1-encCoverage, capEncryptionCoverage)

	maskCoverage := 1.0
	if sensitive > 0 {
		maskCoverage = float64(maskedFull) / float64(sensitive)
	}
	maskingCoverage := roundScaled(1-maskCoverage, capMaskingCoverage)

	retCoverage := float64(withRetention) / float64(total)
	retentionCompliance := roundScaled(1-retCoverage, capRetentionCompliance)

	aiExposurePenalty := min(aiExposed*aiExposurePerField, capAIExposure)

	roleModifier := 0
	switch role {
	case governance.SimRoleAuditor:
		roleModifier = roleModifierAuditor
	case governance.SimRoleAdmin:
		roleModifier = roleModifierAdmin
	}

	score := clamp(piiDensity+hsRatio+encryptionCoverage+maskingCoverage+
		retentionCompliance+aiExposurePenalty+roleModifier, 0, 100)

	level := LevelLow
	switch {
	case score >= 75:
		level = LevelCritical
	case score >= 50:
		level = LevelHigh
	case score >= 25:
		level = LevelMedium
	}

	return Factors{
		PIIDensity:           piiDensity,
		HighlySensitiveRatio: hsRatio,
		EncryptionCoverage:   encryptionCoverage,
		MaskingCoverage:      maskingCoverage,
		RetentionCompliance:  retentionCompliance,
		AIExposurePenalty:    aiExposurePenalty,
		RoleModifier:         roleModifier,
		Total:                score,
		Level:                level,
	}
}

func roundRatio(part, whole, scale int) int {
	return int(math.Round(float64(part) / float64(whole) * float64(scale)))
}

func roundScaled(ratio float64, scale int) int {
	return int(math.Round(ratio * float64(scale)))
}
