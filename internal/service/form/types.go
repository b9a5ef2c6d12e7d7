package form

import (
	"context"

	"github.com/starterdev/guardian-form-backend/internal/domain/audit"
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
	"github.com/starterdev/guardian-form-backend/internal/domain/risk"
)

// Phase is the controller's current position in the governance state machine:
// Idle -> Validating -> (Compliant | Blocked) -> Submitting -> (Idle | Blocked).
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseCompliant  Phase = "compliant"
	PhaseBlocked    Phase = "blocked"
	PhaseSubmitting Phase = "submitting"
)

// ValidateFunc adapts an external schema validator: it returns one error
// message per failing field name. The controller has no schema knowledge
// itself.
type ValidateFunc func(ctx context.Context, values map[string]any) (map[string]string, error)

// SubmitFunc receives the validated, compliant value set on submission.
type SubmitFunc func(ctx context.Context, values map[string]any) error

// Config is session-scoped governance configuration. Set once at session
// start; read-only thereafter.
type Config struct {
	PolicyMode      governance.PolicyMode
	Jurisdiction    governance.Jurisdiction
	UserSimRole     governance.SimRole
	AutoRemediation bool

	UserID string
	Region string
	IP     string

	AuditLogCapacity int

	// Callbacks are invoked synchronously after the state transition that
	// produced them, outside the controller's lock.
	OnAudit             func(audit.Meta)
	OnAuditEvent        func(audit.Event)
	OnPolicyViolation   func(fieldID, ruleID string)
	OnAutoRemediation   func(fieldID string)
	OnApprovalRequested func(fieldID string)
	OnRiskScoreChange   func(score int, breakdown risk.Factors)
}

func (c Config) withDefaults() Config {
	if c.PolicyMode == "" {
		c.PolicyMode = governance.PolicyModeEnforce
	}
	if c.Jurisdiction == "" {
		c.Jurisdiction = governance.JurisdictionGlobal
	}
	if c.UserSimRole == "" {
		c.UserSimRole = governance.SimRoleViewer
	}
	if c.UserID == "" {
		c.UserID = "anonymous"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.AuditLogCapacity <= 0 {
		c.AuditLogCapacity = audit.DefaultLogCapacity
	}
	return c
}

// Compliance is the outcome of the latest policy evaluation pass.
type Compliance struct {
	Violations  []governance.Violation `json:"violations"`
	IsCompliant bool                   `json:"is_compliant"`
}

// Snapshot is the full observable state after a transition. All maps and
// slices are copies; observers may retain them freely.
type Snapshot struct {
	Phase        Phase                               `json:"phase"`
	Values       map[string]any                      `json:"values"`
	Errors       map[string]string                   `json:"errors"`
	Touched      map[string]bool                     `json:"touched"`
	Metadata     map[string]governance.FieldMetadata `json:"metadata"`
	Fields       map[string]governance.FieldState    `json:"fields"`
	Compliance   Compliance                          `json:"compliance"`
	Risk         risk.Score                          `json:"risk"`
	Breakdown    risk.Factors                        `json:"breakdown"`
	IsSubmitting bool                                `json:"is_submitting"`
	IsValidating bool                                `json:"is_validating"`
	CanSubmit    bool                                `json:"can_submit"`
}
