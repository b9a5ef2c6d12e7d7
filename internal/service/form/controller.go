package form

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/starterdev/guardian-form-backend/internal/domain/audit"
	apperrors "github.com/starterdev/guardian-form-backend/internal/domain/errors"
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
	"github.com/starterdev/guardian-form-backend/internal/domain/policy"
	"github.com/starterdev/guardian-form-backend/internal/domain/remediation"
	"github.com/starterdev/guardian-form-backend/internal/domain/risk"
	"github.com/starterdev/guardian-form-backend/internal/metrics"
)

// Retention periods stamped onto governance events.
const (
	retentionFieldChange = "90 days"
	retentionGovernance  = "365 days"
)

// Options wires the controller's collaborators. Policies and the validate
// function are caller-supplied and treated opaquely.
type Options struct {
	InitialValues  map[string]any
	FieldRules     []policy.FieldRule
	AggregateRules []policy.AggregateRule
	Validate       ValidateFunc
	OnSubmit       SubmitFunc
	Logger         *zap.Logger
	Metrics        *metrics.Registry
}

// Controller owns a form session's governance state and orchestrates the
// policy engine, both risk models, the audit trail and remediation. All
// transitions run under a single lock; asynchronous validation results are
// marshaled back into it and stale results are discarded by request token.
type Controller struct {
	mu sync.Mutex

	cfg     Config
	logger  *zap.Logger
	metrics *metrics.Registry
	engine  *policy.Engine

	trail *audit.Trail
	log   *audit.Log

	initialValues map[string]any
	values        map[string]any
	errors        map[string]string
	touched       map[string]bool
	metadata      map[string]governance.FieldMetadata
	fields        map[string]governance.FieldState

	phase        Phase
	isSubmitting bool
	isValidating bool
	validateSeq  uint64

	compliance Compliance
	risk       risk.Score
	breakdown  risk.Factors
	lastScore  int

	// rule ids already reported per field, so OnPolicyViolation fires once
	// per new finding rather than on every recompute
	seenRules map[string]map[string]bool

	validate ValidateFunc
	onSubmit SubmitFunc

	pending []func()
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewController creates a form governance session.
func NewController(cfg Config, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()

	c := &Controller{
		cfg:           cfg,
		logger:        logger,
		metrics:       opts.Metrics,
		engine:        policy.NewEngine(opts.FieldRules, opts.AggregateRules),
		trail:         audit.NewTrail(cfg.UserID),
		log:           audit.NewLog(cfg.AuditLogCapacity),
		initialValues: cloneValues(opts.InitialValues),
		values:        cloneValues(opts.InitialValues),
		errors:        map[string]string{},
		touched:       map[string]bool{},
		metadata:      map[string]governance.FieldMetadata{},
		fields:        map[string]governance.FieldState{},
		phase:         PhaseIdle,
		compliance:    Compliance{Violations: []governance.Violation{}, IsCompliant: true},
		risk:          risk.Score{Level: risk.LevelLow},
		breakdown:     risk.Factors{Level: risk.LevelLow},
		lastScore:     -1,
		seenRules:     map[string]map[string]bool{},
		validate:      opts.Validate,
		onSubmit:      opts.OnSubmit,
		subs:          map[int]func(Snapshot){},
	}
	return c
}

// RegisterField registers (or re-registers) a field's governance metadata.
// Re-registration replaces the metadata and extended state wholesale; the
// caller is responsible for re-applying any governance overrides. A field's
// classification is fixed for the session: re-registering under a different
// tier is a conflict.
func (c *Controller) RegisterField(meta governance.FieldMetadata) error {
	if meta.Name == "" {
		return apperrors.NewValidationError("MISSING_FIELD_NAME", "field name is required")
	}
	if !meta.Classification.Valid() {
		return apperrors.NewValidationError("INVALID_CLASSIFICATION",
			fmt.Sprintf("unknown classification %q", meta.Classification))
	}

	c.mu.Lock()
	if prev, ok := c.metadata[meta.Name]; ok && prev.Classification != meta.Classification {
		c.mu.Unlock()
		return apperrors.NewConflictError(
			fmt.Sprintf("field %q is already registered as %s", meta.Name, prev.Classification))
	}
	c.metadata[meta.Name] = meta
	c.fields[meta.Name] = governance.NewFieldState(meta.Name, meta.Classification, meta.Label)
	c.recomputeLocked(context.Background())
	c.mu.Unlock()
	c.flush()
	return nil
}

// SetFieldValue updates a field's value, marks it touched, records a CHANGE
// audit snapshot and schedules governance recomputation. If an asynchronous
// validator is configured, its result commits only while it is still the
// newest request; results from superseded requests are discarded on arrival.
func (c *Controller) SetFieldValue(ctx context.Context, name string, value any) error {
	c.mu.Lock()
	c.values[name] = value
	c.touched[name] = true

	if meta, ok := c.metadata[name]; ok {
		c.trail.Track(name, meta.Classification)
		if cb := c.cfg.OnAudit; cb != nil {
			m := c.trail.GenerateMeta(audit.ActionChange)
			c.pending = append(c.pending, func() { cb(m) })
		}
	}

	if err := c.recomputeLocked(ctx); err != nil {
		c.mu.Unlock()
		c.flush()
		return err
	}

	c.validateSeq++
	seq := c.validateSeq
	c.isValidating = true
	c.phase = PhaseValidating
	fn := c.validate
	values := cloneValues(c.values)
	c.mu.Unlock()
	c.flush()

	if fn == nil {
		c.completeValidation(ctx, seq, map[string]string{}, nil)
		return nil
	}
	go func() {
		errs, err := fn(ctx, values)
		c.completeValidation(ctx, seq, errs, err)
	}()
	return nil
}

// completeValidation commits an asynchronous validation result. Only the
// newest request may commit; IsValidating flips back to false exactly once
// per committed pass, including on error.
func (c *Controller) completeValidation(ctx context.Context, seq uint64, errs map[string]string, err error) {
	c.mu.Lock()
	if seq != c.validateSeq {
		// Superseded by a newer mutation; a stale result must never
		// overwrite fresher state.
		c.mu.Unlock()
		return
	}
	c.isValidating = false
	if err != nil {
		c.logger.Error("validation pass failed", zap.Error(err))
		c.phase = c.phaseFromStateLocked()
		c.mu.Unlock()
		c.flush()
		return
	}
	if errs == nil {
		errs = map[string]string{}
	}
	c.errors = errs
	if rerr := c.recomputeLocked(ctx); rerr != nil {
		c.logger.Error("governance recompute failed", zap.Error(rerr))
	}
	c.phase = c.phaseFromStateLocked()
	c.mu.Unlock()
	c.flush()
}

// UpdateField applies a governance patch to a field's extended state and
// triggers recomputation. The field's classification is fixed for the
// session; mutations to it are ignored. When auto-remediation is enabled,
// fixable violations surfaced by the patch are remediated in the same
// transition.
func (c *Controller) UpdateField(fieldID string, mutate func(*governance.FieldState)) error {
	c.mu.Lock()
	field, ok := c.fields[fieldID]
	if !ok {
		c.mu.Unlock()
		return apperrors.ErrFieldNotFound
	}

	classification := field.Classification
	mutate(&field)
	field.FieldID = fieldID
	field.Classification = classification
	c.fields[fieldID] = field

	c.emitEventLocked(audit.EventFieldChanged, fieldID, retentionFieldChange,
		fmt.Sprintf("Governance setting updated for field %q", fieldID))

	if err := c.recomputeLocked(context.Background()); err != nil {
		c.mu.Unlock()
		c.flush()
		return err
	}

	if c.cfg.AutoRemediation && hasFixable(c.fields[fieldID].Violations) {
		c.remediateFieldLocked(fieldID)
		if err := c.recomputeLocked(context.Background()); err != nil {
			c.logger.Error("recompute after auto-remediation failed", zap.Error(err))
		}
	}

	c.phase = c.phaseFromStateLocked()
	c.mu.Unlock()
	c.flush()
	return nil
}

// RequestApproval (re)opens the sign-off workflow for a field.
func (c *Controller) RequestApproval(fieldID string, approver governance.ApproverRole) error {
	c.mu.Lock()
	field, ok := c.fields[fieldID]
	if !ok {
		c.mu.Unlock()
		return apperrors.ErrFieldNotFound
	}
	field.ApprovalStatus = governance.ApprovalPending
	field.ApproverRole = approver
	c.fields[fieldID] = field

	c.emitEventLocked(audit.EventApprovalRequested, fieldID, retentionGovernance,
		fmt.Sprintf("Approval requested from %s for field %q", approver, fieldID))
	if cb := c.cfg.OnApprovalRequested; cb != nil {
		c.pending = append(c.pending, func() { cb(fieldID) })
	}
	c.mu.Unlock()
	c.flush()
	return nil
}

// ResolveApproval records the sign-off decision for a field.
func (c *Controller) ResolveApproval(fieldID string, status governance.ApprovalStatus) error {
	if status != governance.ApprovalApproved && status != governance.ApprovalRejected {
		return apperrors.NewValidationError("INVALID_APPROVAL_STATUS",
			fmt.Sprintf("approval can only be resolved to %q or %q", governance.ApprovalApproved, governance.ApprovalRejected))
	}
	return c.UpdateField(fieldID, func(f *governance.FieldState) {
		f.ApprovalStatus = status
	})
}

// HandleSubmit forces a fresh evaluation and, if every gate passes, invokes
// the submit callback with the current values. Duplicate submissions are
// rejected, not queued. A blocked submission reports the responsible rule
// ids, fields and approval gaps through the returned error's details.
func (c *Controller) HandleSubmit(ctx context.Context) error {
	c.mu.Lock()
	if c.isSubmitting {
		c.mu.Unlock()
		return apperrors.ErrSubmitInFlight
	}
	c.isSubmitting = true
	c.phase = PhaseSubmitting
	fn := c.validate
	values := cloneValues(c.values)
	c.mu.Unlock()
	c.flush()

	var errs map[string]string
	var verr error
	if fn != nil {
		errs, verr = fn(ctx, values)
	}

	c.mu.Lock()
	if verr != nil {
		c.isSubmitting = false
		c.phase = c.phaseFromStateLocked()
		c.mu.Unlock()
		c.flush()
		return apperrors.NewInternalError("validation pass failed").WithCause(verr)
	}
	if errs == nil {
		errs = map[string]string{}
	}
	c.errors = errs
	// The submit-supplied seq supersedes any in-flight async pass.
	c.validateSeq++
	c.isValidating = false

	if err := c.recomputeLocked(ctx); err != nil {
		c.isSubmitting = false
		c.phase = c.phaseFromStateLocked()
		c.mu.Unlock()
		c.flush()
		return err
	}

	blockers := c.blockingViolationsLocked()
	pendingApproval := c.pendingApprovalLocked()
	enforced := c.cfg.PolicyMode == governance.PolicyModeEnforce

	blocked := len(c.errors) > 0 ||
		(enforced && (len(blockers) > 0 || len(pendingApproval) > 0))

	if blocked {
		c.isSubmitting = false
		c.phase = PhaseBlocked
		c.emitEventLocked(audit.EventSubmitBlocked, "", retentionGovernance,
			fmt.Sprintf("Submission blocked: %d field errors, %d blocking violations, %d approvals pending",
				len(c.errors), len(blockers), len(pendingApproval)))
		if c.metrics != nil {
			c.metrics.SubmitsBlocked.Add(ctx, 1)
		}
		err := c.submitBlockedErrorLocked(blockers, pendingApproval)
		c.mu.Unlock()
		c.flush()
		return err
	}

	var am *audit.Meta
	if cb := c.cfg.OnAudit; cb != nil {
		m := c.trail.GenerateMeta(audit.ActionSubmit)
		am = &m
		c.pending = append(c.pending, func() { cb(*am) })
	}
	submit := c.onSubmit
	c.mu.Unlock()
	c.flush()

	var serr error
	if submit != nil {
		serr = submit(ctx, values)
	}

	c.mu.Lock()
	c.isSubmitting = false
	if serr != nil {
		c.phase = c.phaseFromStateLocked()
	} else {
		c.phase = PhaseIdle
		if c.metrics != nil {
			c.metrics.SubmitsAccepted.Add(ctx, 1)
		}
	}
	c.mu.Unlock()
	c.flush()

	if serr != nil {
		return apperrors.Wrap(serr, "submit callback")
	}
	return nil
}

// ResetForm restores initial values, clears errors, touched flags and the
// audit trail's tracked sets. The persistent event log is untouched.
func (c *Controller) ResetForm() {
	c.mu.Lock()
	c.values = cloneValues(c.initialValues)
	c.errors = map[string]string{}
	c.touched = map[string]bool{}
	c.isSubmitting = false
	c.isValidating = false
	c.validateSeq++
	c.phase = PhaseIdle
	c.trail.Reset()
	if err := c.recomputeLocked(context.Background()); err != nil {
		c.logger.Error("recompute after reset failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.flush()
}

// AutoRemediate resolves a single field's fixable violations.
func (c *Controller) AutoRemediate(fieldID string) (remediation.Result, error) {
	c.mu.Lock()
	if _, ok := c.fields[fieldID]; !ok {
		c.mu.Unlock()
		return remediation.Result{}, apperrors.ErrFieldNotFound
	}
	result := c.remediateFieldLocked(fieldID)
	if err := c.recomputeLocked(context.Background()); err != nil {
		c.logger.Error("recompute after remediation failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.flush()
	return result, nil
}

// RemediateAll applies per-field remediation to every registered field.
func (c *Controller) RemediateAll() []remediation.Result {
	c.mu.Lock()
	results := make([]remediation.Result, 0, len(c.fields))
	for _, id := range c.sortedFieldIDsLocked() {
		field, r := remediation.Remediate(c.fields[id])
		c.fields[id] = field
		results = append(results, r)
		if cb := c.cfg.OnAutoRemediation; cb != nil {
			id := id
			c.pending = append(c.pending, func() { cb(id) })
		}
		if c.metrics != nil {
			c.metrics.RemediationsTotal.Add(context.Background(), 1)
		}
	}
	c.emitEventLocked(audit.EventBulkAction, "", retentionGovernance,
		"Bulk remediation applied to all fields")
	if err := c.recomputeLocked(context.Background()); err != nil {
		c.logger.Error("recompute after bulk remediation failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.flush()
	return results
}

// EncryptAllSensitive enables both encryption flags on every field whose
// classification requires encryption.
func (c *Controller) EncryptAllSensitive() {
	c.mu.Lock()
	for id, field := range c.fields {
		if field.Classification.RequiresEncryption() {
			field.EncryptionAtRest = true
			field.EncryptionInTransit = true
			c.fields[id] = field
		}
	}
	c.emitEventLocked(audit.EventBulkAction, "", retentionGovernance,
		"Enabled encryption for all sensitive fields")
	if err := c.recomputeLocked(context.Background()); err != nil {
		c.logger.Error("recompute after bulk encryption failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.flush()
}

// ApplyFullMasking switches every HIGHLY_SENSITIVE field to full masking.
func (c *Controller) ApplyFullMasking() {
	c.mu.Lock()
	for id, field := range c.fields {
		if field.Classification == governance.ClassificationHighlySensitive {
			field.MaskingMode = governance.MaskingFull
			c.fields[id] = field
		}
	}
	c.emitEventLocked(audit.EventBulkAction, "", retentionGovernance,
		"Applied full masking to all HIGHLY_SENSITIVE fields")
	if err := c.recomputeLocked(context.Background()); err != nil {
		c.logger.Error("recompute after bulk masking failed", zap.Error(err))
	}
	c.mu.Unlock()
	c.flush()
}

// ExportAuditLog serializes the full in-memory event log. The export itself
// is a governance event, recorded after serialization so the export reflects
// the log as it stood when triggered.
func (c *Controller) ExportAuditLog() ([]byte, error) {
	c.mu.Lock()
	data, err := c.log.ExportJSON()
	if err != nil {
		c.mu.Unlock()
		return nil, apperrors.NewInternalError("failed to export audit log").WithCause(err)
	}
	c.emitEventLocked(audit.EventAuditExport, "", retentionGovernance,
		fmt.Sprintf("Audit log exported (%d events)", c.log.Len()))
	c.mu.Unlock()
	c.flush()
	return data, nil
}

// AuditEvents returns the retained governance events, newest first.
func (c *Controller) AuditEvents() []audit.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Events()
}

// Snapshot returns the full current state for observers.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers an observer invoked with the full state after every
// transition. The returned function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// --- internals ---

// recomputeLocked re-runs the policy engine and both risk models against the
// current state. Derived state (violations, risk) is never stored anywhere
// else; this is the only writer.
func (c *Controller) recomputeLocked(ctx context.Context) error {
	violations, err := c.engine.Evaluate(c.values, c.metadata)
	if err != nil {
		c.logger.Error("policy evaluation failed", zap.Error(err))
		return apperrors.NewInternalError("policy evaluation failed").WithCause(err)
	}
	c.compliance = Compliance{
		Violations:  violations,
		IsCompliant: !governance.HasBlocking(violations),
	}

	c.risk = risk.Calculate(c.values, c.metadata, c.errors)

	warns, blocks := 0, 0
	for _, v := range violations {
		if v.IsBlocking() {
			blocks++
		} else {
			warns++
		}
	}

	fieldList := make([]governance.FieldState, 0, len(c.fields))
	for _, id := range c.sortedFieldIDsLocked() {
		field := c.fields[id]
		field.Violations = policy.ComputeFieldViolations(field, c.cfg.Jurisdiction)
		c.fields[id] = field
		fieldList = append(fieldList, field)

		seen := c.seenRules[id]
		if seen == nil {
			seen = map[string]bool{}
			c.seenRules[id] = seen
		}
		for _, v := range field.Violations {
			if v.IsBlocking() {
				blocks++
			} else {
				warns++
			}
			if !seen[v.RuleID] {
				seen[v.RuleID] = true
				if cb := c.cfg.OnPolicyViolation; cb != nil {
					id, rule := id, v.RuleID
					c.pending = append(c.pending, func() { cb(id, rule) })
				}
			}
		}
	}

	c.breakdown = risk.Compute(fieldList, c.cfg.Jurisdiction, c.cfg.UserSimRole)
	if c.breakdown.Total != c.lastScore {
		c.lastScore = c.breakdown.Total
		if cb := c.cfg.OnRiskScoreChange; cb != nil {
			score, breakdown := c.breakdown.Total, c.breakdown
			c.pending = append(c.pending, func() { cb(score, breakdown) })
		}
	}

	if c.metrics != nil {
		c.metrics.RecordEvaluation(ctx, warns, blocks)
		c.metrics.SetRiskScore(c.breakdown.Total)
	}
	return nil
}

func (c *Controller) remediateFieldLocked(fieldID string) remediation.Result {
	field, result := remediation.Remediate(c.fields[fieldID])
	c.fields[fieldID] = field
	c.emitEventLocked(audit.EventRemediation, fieldID, retentionGovernance,
		fmt.Sprintf("Auto-remediation applied: %s", joinOrNone(result.Applied)))
	if cb := c.cfg.OnAutoRemediation; cb != nil {
		c.pending = append(c.pending, func() { cb(fieldID) })
	}
	if c.metrics != nil {
		c.metrics.RemediationsTotal.Add(context.Background(), 1)
	}
	return result
}

func (c *Controller) emitEventLocked(action audit.EventAction, fieldID, retention, details string) {
	event, err := audit.NewEvent(action, c.cfg.UserID, details)
	if err != nil {
		c.logger.Error("failed to create audit event", zap.Error(err))
		return
	}
	if fieldID != "" {
		event = event.WithField(fieldID)
	}
	event = event.WithOrigin(c.cfg.Region, c.cfg.IP).WithRetention(retention)
	c.log.Append(event)
	c.logger.Debug("governance event",
		zap.String("action", string(action)),
		zap.String("field_id", fieldID),
		zap.String("details", details))
	if cb := c.cfg.OnAuditEvent; cb != nil {
		e := event
		c.pending = append(c.pending, func() { cb(e) })
	}
}

// blockingViolationsLocked collects BLOCK findings from both the basic
// evaluation pass and the extended per-field rule table, keyed by field where
// known.
func (c *Controller) blockingViolationsLocked() []governance.Violation {
	blockers := []governance.Violation{}
	for _, v := range c.compliance.Violations {
		if v.IsBlocking() {
			blockers = append(blockers, v)
		}
	}
	for _, id := range c.sortedFieldIDsLocked() {
		for _, v := range c.fields[id].Violations {
			if v.IsBlocking() {
				blockers = append(blockers, v)
			}
		}
	}
	return blockers
}

func (c *Controller) pendingApprovalLocked() []string {
	pending := []string{}
	for _, id := range c.sortedFieldIDsLocked() {
		field := c.fields[id]
		if field.Classification == governance.ClassificationHighlySensitive &&
			field.ApprovalStatus != governance.ApprovalApproved {
			pending = append(pending, id)
		}
	}
	return pending
}

// CanSubmit reports whether submission would pass the policy and approval
// gates. Outside enforce mode violations are informational and do not gate.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Controller) canSubmitLocked() bool {
	if c.cfg.PolicyMode != governance.PolicyModeEnforce {
		return true
	}
	if len(c.blockingViolationsLocked()) > 0 {
		return false
	}
	return len(c.pendingApprovalLocked()) == 0
}

func (c *Controller) submitBlockedErrorLocked(blockers []governance.Violation, pendingApproval []string) error {
	details := map[string]interface{}{}
	if len(c.errors) > 0 {
		details["field_errors"] = cloneErrors(c.errors)
	}
	if len(blockers) > 0 {
		ruleIDs := make([]string, 0, len(blockers))
		for _, v := range blockers {
			ruleIDs = append(ruleIDs, v.RuleID)
		}
		details["violations"] = blockers
		details["rule_ids"] = ruleIDs
	}
	if len(pendingApproval) > 0 {
		details["approval_pending"] = pendingApproval
	}

	if len(c.errors) == 0 && len(blockers) == 0 {
		return apperrors.NewApprovalError(
			fmt.Sprintf("%d highly sensitive field(s) lack approval", len(pendingApproval))).
			WithDetails(details)
	}
	return apperrors.NewPolicyError("SUBMIT_BLOCKED", "submission blocked by validation errors or policy violations").
		WithDetails(details)
}

func (c *Controller) phaseFromStateLocked() Phase {
	if len(c.errors) > 0 || !c.canSubmitLocked() {
		return PhaseBlocked
	}
	return PhaseCompliant
}

func (c *Controller) sortedFieldIDsLocked() []string {
	ids := make([]string, 0, len(c.fields))
	for id := range c.fields {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *Controller) snapshotLocked() Snapshot {
	fields := make(map[string]governance.FieldState, len(c.fields))
	for id, f := range c.fields {
		f.Violations = append([]governance.Violation(nil), f.Violations...)
		fields[id] = f
	}
	metadata := make(map[string]governance.FieldMetadata, len(c.metadata))
	for name, m := range c.metadata {
		metadata[name] = m
	}
	touched := make(map[string]bool, len(c.touched))
	for name, t := range c.touched {
		touched[name] = t
	}
	return Snapshot{
		Phase:    c.phase,
		Values:   cloneValues(c.values),
		Errors:   cloneErrors(c.errors),
		Touched:  touched,
		Metadata: metadata,
		Fields:   fields,
		Compliance: Compliance{
			Violations:  append([]governance.Violation(nil), c.compliance.Violations...),
			IsCompliant: c.compliance.IsCompliant,
		},
		Risk:         c.risk,
		Breakdown:    c.breakdown,
		IsSubmitting: c.isSubmitting,
		IsValidating: c.isValidating,
		CanSubmit:    c.canSubmitLocked(),
	}
}

// flush runs deferred callbacks and notifies subscribers with a fresh
// snapshot, outside the lock so callbacks may call back into the controller.
func (c *Controller) flush() {
	c.mu.Lock()
	callbacks := c.pending
	c.pending = nil
	observers := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		observers = append(observers, fn)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	for _, fn := range observers {
		fn(snap)
	}
}

func hasFixable(violations []governance.Violation) bool {
	for _, v := range violations {
		if v.Fixable {
			return true
		}
	}
	return false
}

func joinOrNone(applied []string) string {
	if len(applied) == 0 {
		return "no changes"
	}
	return strings.Join(applied, ", ")
}

func cloneValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}

func cloneErrors(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
