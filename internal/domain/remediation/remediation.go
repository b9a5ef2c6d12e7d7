// Package remediation maps a non-compliant field's governance state to a
// patch that resolves its fixable violations. Planning is deterministic and
// idempotent: applying a plan twice yields the same state as applying it once.
package remediation

import (
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// Setting names reported back to callers and audit consumers for each patched
// governance control.
const (
	SettingEncryptionAtRest    = "encryptionAtRest"
	SettingEncryptionInTransit = "encryptionInTransit"
	SettingKMSKey              = "kmsKey"
	SettingMaskingMode         = "maskingMode"
)

// Patch is the set of governance changes remediation will apply to a field.
// The remediated marker is always set, so remediating an already-compliant
// field is a safe no-op apart from the flag.
type Patch struct {
	Encrypt     bool
	KMSKey      governance.KMSKey
	FullMasking bool
}

// Plan inspects a field and produces its remediation patch: incomplete
// encryption gets both flags plus a key class chosen by classification, and
// an unmasked HIGHLY_SENSITIVE field gets full masking.
func Plan(field governance.FieldState) Patch {
	p := Patch{}
	if !field.FullyEncrypted() {
		p.Encrypt = true
		if field.Classification == governance.ClassificationFinancial {
			p.KMSKey = governance.KMSFinancial
		} else {
			p.KMSKey = governance.KMSPII
		}
	}
	if field.Classification == governance.ClassificationHighlySensitive && field.MaskingMode == governance.MaskingNone {
		p.FullMasking = true
	}
	return p
}

// Applied lists the names of the settings the patch changes, excluding the
// remediated marker.
func (p Patch) Applied() []string {
	applied := []string{}
	if p.Encrypt {
		applied = append(applied, SettingEncryptionAtRest, SettingEncryptionInTransit, SettingKMSKey)
	}
	if p.FullMasking {
		applied = append(applied, SettingMaskingMode)
	}
	return applied
}

// Apply returns a copy of field with the patch applied and IsRemediated set.
func (p Patch) Apply(field governance.FieldState) governance.FieldState {
	if p.Encrypt {
		field.EncryptionAtRest = true
		field.EncryptionInTransit = true
		field.KMSKey = p.KMSKey
	}
	if p.FullMasking {
		field.MaskingMode = governance.MaskingFull
	}
	field.IsRemediated = true
	return field
}

// Result reports what a remediation pass did to one field.
type Result struct {
	FieldID           string   `json:"field_id"`
	Applied           []string `json:"applied"`
	ViolationsCleared int      `json:"violations_cleared"`
}

// Remediate plans and applies remediation for a field, reporting the applied
// settings and how many of the field's current violations were fixable.
func Remediate(field governance.FieldState) (governance.FieldState, Result) {
	patch := Plan(field)
	cleared := 0
	for _, v := range field.Violations {
		if v.Fixable {
			cleared++
		}
	}
	return patch.Apply(field), Result{
		FieldID:           field.FieldID,
		Applied:           patch.Applied(),
		ViolationsCleared: cleared,
	}
}
