package governance

// PolicyMode controls how policy violations gate submission.
type PolicyMode string

const (
	PolicyModeWarn     PolicyMode = "warn"
	PolicyModeEnforce  PolicyMode = "enforce"
	PolicyModeSimulate PolicyMode = "simulate"
)

// Jurisdiction selects which regulatory rule table applies. The table is
// illustrative, not a legal compliance guarantee.
type Jurisdiction string

const (
	JurisdictionUS     Jurisdiction = "US"
	JurisdictionCA     Jurisdiction = "CA"
	JurisdictionEU     Jurisdiction = "EU"
	JurisdictionGlobal Jurisdiction = "GLOBAL"
)

// SimRole is the simulated operator role used by the risk model's role modifier.
type SimRole string

const (
	SimRoleViewer  SimRole = "viewer"
	SimRoleAdmin   SimRole = "admin"
	SimRoleAuditor SimRole = "auditor"
)

// MaskingMode controls display masking for a field's value.
type MaskingMode string

const (
	MaskingNone      MaskingMode = "none"
	MaskingPartial   MaskingMode = "partial"
	MaskingFull      MaskingMode = "full"
	MaskingRoleBased MaskingMode = "role-based"
)

// AccessRole restricts who may interact with a field.
type AccessRole string

const (
	AccessViewer     AccessRole = "viewer"
	AccessEditor     AccessRole = "editor"
	AccessRestricted AccessRole = "restricted"
	AccessAuditOnly  AccessRole = "audit-only"
)

// ApprovalStatus tracks the sign-off workflow for highly sensitive fields.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApproverRole identifies which officer must sign off.
type ApproverRole string

const (
	ApproverLegal ApproverRole = "legal"
	ApproverCISO  ApproverRole = "ciso"
	ApproverDPO   ApproverRole = "dpo"
	ApproverCCO   ApproverRole = "cco"
)

// KMSKey names the key class a field is sealed under. The flags assert that
// encryption is required/applied; no key material is held here.
type KMSKey string

const (
	KMSDefault    KMSKey = "kms-default"
	KMSFinancial  KMSKey = "kms-financial"
	KMSHealthcare KMSKey = "kms-healthcare"
	KMSPII        KMSKey = "kms-pii"
)

// FieldMetadata is the basic per-field governance record. One instance exists
// per distinct field name; re-registration replaces it wholesale.
type FieldMetadata struct {
	Name               string         `json:"name"`
	Label              string         `json:"label"`
	Classification     Classification `json:"classification"`
	Masked             bool           `json:"masked,omitempty"`
	Retention          string         `json:"retention,omitempty"`
	EncryptionRequired bool           `json:"encryption_required,omitempty"`
}

// AuditLoggingFlags selects which interactions with a field are logged.
type AuditLoggingFlags struct {
	Access            bool `json:"access"`
	ValueChange       bool `json:"value_change"`
	ValidationFailure bool `json:"validation_failure"`
}

// FieldState is the extended per-field governance record used by the
// enterprise simulation. Violations is derived state: it is recomputed from
// the other fields plus the active jurisdiction and must never be set
// directly.
type FieldState struct {
	FieldID        string         `json:"field_id"`
	Classification Classification `json:"classification"`
	Label          string         `json:"label"`

	// Encryption
	EncryptionAtRest    bool   `json:"encryption_at_rest"`
	EncryptionInTransit bool   `json:"encryption_in_transit"`
	KMSKey              KMSKey `json:"kms_key"`

	// Masking
	MaskingMode MaskingMode `json:"masking_mode"`

	// Access
	AccessRole   AccessRole        `json:"access_role"`
	AuditLogging AuditLoggingFlags `json:"audit_logging"`

	// Lifecycle
	RetentionDays int  `json:"retention_days"`
	AutoDelete    bool `json:"auto_delete"`

	// AI
	AllowAIProcessing  bool `json:"allow_ai_processing"`
	AllowModelTraining bool `json:"allow_model_training"`

	// Sign-off workflow
	BusinessJustification string         `json:"business_justification"`
	ApprovalStatus        ApprovalStatus `json:"approval_status"`
	ApproverRole          ApproverRole   `json:"approver_role"`

	IsRemediated bool        `json:"is_remediated"`
	Violations   []Violation `json:"violations"`
}

// NewFieldState returns the default governance state for a newly registered
// field: conservative but unencumbered. Nothing is encrypted or masked, audit
// logging is off, retention is zero, AI use is disabled and approval starts
// pending.
func NewFieldState(fieldID string, classification Classification, label string) FieldState {
	return FieldState{
		FieldID:        fieldID,
		Classification: classification,
		Label:          label,
		KMSKey:         KMSDefault,
		MaskingMode:    MaskingNone,
		AccessRole:     AccessEditor,
		ApprovalStatus: ApprovalPending,
		ApproverRole:   ApproverLegal,
		Violations:     []Violation{},
	}
}

// FullyEncrypted reports whether both encryption flags are set.
func (f FieldState) FullyEncrypted() bool {
	return f.EncryptionAtRest && f.EncryptionInTransit
}

// AIExposed reports whether the field may reach an AI pipeline.
func (f FieldState) AIExposed() bool {
	return f.AllowAIProcessing || f.AllowModelTraining
}
