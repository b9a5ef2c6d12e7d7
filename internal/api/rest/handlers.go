package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/starterdev/guardian-form-backend/internal/domain/errors"
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
	"github.com/starterdev/guardian-form-backend/internal/domain/policy"
	"github.com/starterdev/guardian-form-backend/internal/service/form"
)

type createSessionRequest struct {
	FormName        string         `json:"form_name"`
	UserID          string         `json:"user_id"`
	PolicyMode      string         `json:"policy_mode,omitempty"`
	Jurisdiction    string         `json:"jurisdiction,omitempty"`
	UserSimRole     string         `json:"user_sim_role,omitempty"`
	AutoRemediation bool           `json:"auto_remediation,omitempty"`
	InitialValues   map[string]any `json:"initial_values,omitempty"`

	// Policies selects the session's policy rule set; nil enables the
	// parameterless built-in rules.
	Policies *policySelection `json:"policies,omitempty"`

	// ValidationRules maps field names to validator tag expressions,
	// e.g. {"email": "required,email"}. ValidationMessages optionally
	// overrides the per-field error text.
	ValidationRules    map[string]string `json:"validation_rules,omitempty"`
	ValidationMessages map[string]string `json:"validation_messages,omitempty"`
}

// policySelection configures the built-in policy rules per session. The
// parameterless rules are always on unless Disabled; the parameterized ones
// activate when configured.
type policySelection struct {
	Disabled              bool                 `json:"disabled,omitempty"`
	DataMinimizationLimit *int                 `json:"data_minimization_limit,omitempty"`
	DependentFields       []dependentFieldSpec `json:"dependent_fields,omitempty"`
}

type dependentFieldSpec struct {
	Target    string `json:"target"`
	Dependent string `json:"dependent"`
	Message   string `json:"message,omitempty"`
}

// sessionPolicies expands the request's policy selection into engine rules.
func sessionPolicies(sel *policySelection) ([]policy.FieldRule, []policy.AggregateRule) {
	if sel != nil && sel.Disabled {
		return nil, nil
	}
	fieldRules := []policy.FieldRule{
		policy.NoPlaintextPII(),
		policy.RequireEncryption(),
		policy.MaskHighlySensitive(),
	}
	var aggregates []policy.AggregateRule
	if sel != nil {
		for _, d := range sel.DependentFields {
			msg := d.Message
			if msg == "" {
				msg = fmt.Sprintf("%q is required when %q is provided.", d.Dependent, d.Target)
			}
			fieldRules = append(fieldRules, policy.DependentField(d.Target, governance.Truthy, d.Dependent, msg))
		}
		if sel.DataMinimizationLimit != nil {
			aggregates = append(aggregates, policy.DataMinimization(*sel.DataMinimizationLimit))
		}
	}
	return fieldRules, aggregates
}

type createSessionResponse struct {
	SessionID string        `json:"session_id"`
	State     form.Snapshot `json:"state"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "version": s.cfg.Version})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if req.UserID == "" {
		writeError(w, apperrors.NewValidationError("MISSING_USER_ID", "user_id is required"))
		return
	}

	gcfg := s.cfg.Governance
	cfg := form.Config{
		PolicyMode:       governance.PolicyMode(firstNonEmpty(req.PolicyMode, gcfg.PolicyMode)),
		Jurisdiction:     governance.Jurisdiction(firstNonEmpty(req.Jurisdiction, gcfg.Jurisdiction)),
		UserSimRole:      governance.SimRole(firstNonEmpty(req.UserSimRole, gcfg.UserSimRole)),
		AutoRemediation:  req.AutoRemediation || gcfg.AutoRemediation,
		UserID:           req.UserID,
		Region:           gcfg.Region,
		IP:               clientIP(r),
		AuditLogCapacity: gcfg.AuditLogCapacity,
	}

	initial := req.InitialValues
	if initial == nil && s.store != nil && req.FormName != "" {
		if saved, err := s.store.Load(r.Context(), req.FormName); err == nil {
			initial = saved
		} else if !apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			s.logger.Warn("failed to load persisted session", zap.String("form", req.FormName), zap.Error(err))
		}
	}

	fieldRules, aggregates := sessionPolicies(req.Policies)
	var validate form.ValidateFunc
	if len(req.ValidationRules) > 0 {
		validate = form.NewValidatorAdapter(s.validate, form.FieldRules(req.ValidationRules), req.ValidationMessages)
	}

	controller := form.NewController(cfg, form.Options{
		InitialValues:  initial,
		FieldRules:     fieldRules,
		AggregateRules: aggregates,
		Validate:       validate,
		Logger:         s.logger.Named("form"),
		Metrics:        s.metrics,
	})

	id := s.newSessionID()
	s.mu.Lock()
	s.sessions[id] = &sessionEntry{controller: controller, formName: req.FormName}
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, createSessionResponse{
		SessionID: id,
		State:     controller.Snapshot(),
	})
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

func (s *Server) handleRegisterField(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	var meta governance.FieldMetadata
	if err := json.NewDecoder(r.Body).Decode(&meta); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if err := entry.controller.RegisterField(meta); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

type setValueRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if err := entry.controller.SetFieldValue(r.Context(), r.PathValue("name"), req.Value); err != nil {
		writeError(w, err)
		return
	}
	s.persist(r, entry)
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

// governancePatch carries partial updates; nil pointers leave the setting
// untouched.
type governancePatch struct {
	EncryptionAtRest      *bool                         `json:"encryption_at_rest,omitempty"`
	EncryptionInTransit   *bool                         `json:"encryption_in_transit,omitempty"`
	KMSKey                *string                       `json:"kms_key,omitempty"`
	MaskingMode           *string                       `json:"masking_mode,omitempty"`
	AccessRole            *string                       `json:"access_role,omitempty"`
	AuditLogging          *governance.AuditLoggingFlags `json:"audit_logging,omitempty"`
	RetentionDays         *int                          `json:"retention_days,omitempty"`
	AutoDelete            *bool                         `json:"auto_delete,omitempty"`
	AllowAIProcessing     *bool                         `json:"allow_ai_processing,omitempty"`
	AllowModelTraining    *bool                         `json:"allow_model_training,omitempty"`
	BusinessJustification *string                       `json:"business_justification,omitempty"`
}

func (p governancePatch) apply(f *governance.FieldState) {
	if p.EncryptionAtRest != nil {
		f.EncryptionAtRest = *p.EncryptionAtRest
	}
	if p.EncryptionInTransit != nil {
		f.EncryptionInTransit = *p.EncryptionInTransit
	}
	if p.KMSKey != nil {
		f.KMSKey = governance.KMSKey(*p.KMSKey)
	}
	if p.MaskingMode != nil {
		f.MaskingMode = governance.MaskingMode(*p.MaskingMode)
	}
	if p.AccessRole != nil {
		f.AccessRole = governance.AccessRole(*p.AccessRole)
	}
	if p.AuditLogging != nil {
		f.AuditLogging = *p.AuditLogging
	}
	if p.RetentionDays != nil {
		f.RetentionDays = *p.RetentionDays
	}
	if p.AutoDelete != nil {
		f.AutoDelete = *p.AutoDelete
	}
	if p.AllowAIProcessing != nil {
		f.AllowAIProcessing = *p.AllowAIProcessing
	}
	if p.AllowModelTraining != nil {
		f.AllowModelTraining = *p.AllowModelTraining
	}
	if p.BusinessJustification != nil {
		f.BusinessJustification = *p.BusinessJustification
	}
}

func (s *Server) handlePatchGovernance(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	var patch governancePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	if err := entry.controller.UpdateField(r.PathValue("name"), patch.apply); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

func (s *Server) handleRemediate(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	result, err := entry.controller.AutoRemediate(r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type approvalRequest struct {
	Status   string `json:"status,omitempty"`
	Approver string `json:"approver,omitempty"`
}

func (s *Server) handleApproval(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	name := r.PathValue("name")
	var err error
	if req.Status != "" {
		err = entry.controller.ResolveApproval(name, governance.ApprovalStatus(req.Status))
	} else {
		approver := governance.ApproverRole(req.Approver)
		if approver == "" {
			approver = governance.ApproverLegal
		}
		err = entry.controller.RequestApproval(name, approver)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

type bulkActionRequest struct {
	Action string `json:"action"`
}

func (s *Server) handleBulkAction(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	var req bulkActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.NewValidationError("INVALID_BODY", "request body must be valid JSON"))
		return
	}
	switch req.Action {
	case "remediate-all":
		writeJSON(w, http.StatusOK, entry.controller.RemediateAll())
	case "encrypt-sensitive":
		entry.controller.EncryptAllSensitive()
		writeJSON(w, http.StatusOK, entry.controller.Snapshot())
	case "mask-highly-sensitive":
		entry.controller.ApplyFullMasking()
		writeJSON(w, http.StatusOK, entry.controller.Snapshot())
	default:
		writeError(w, apperrors.NewValidationError("INVALID_BULK_ACTION",
			"action must be one of remediate-all, encrypt-sensitive, mask-highly-sensitive"))
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	if err := entry.controller.HandleSubmit(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	if s.store != nil && entry.formName != "" {
		// A submitted form's persisted draft is no longer needed.
		if err := s.store.Delete(r.Context(), entry.formName); err != nil {
			s.logger.Warn("failed to clear persisted session", zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	entry.controller.ResetForm()
	writeJSON(w, http.StatusOK, entry.controller.Snapshot())
}

func (s *Server) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r.PathValue("id"))
	if !ok {
		writeError(w, apperrors.ErrSessionNotFound)
		return
	}
	data, err := entry.controller.ExportAuditLog()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="governance-audit-log.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) persist(r *http.Request, entry *sessionEntry) {
	if s.store == nil || entry.formName == "" {
		return
	}
	snap := entry.controller.Snapshot()
	if err := s.store.Save(r.Context(), entry.formName, snap.Values); err != nil {
		s.logger.Warn("failed to persist session values",
			zap.String("form", entry.formName), zap.Error(err))
	}
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError(err.Error())
	}
	writeJSON(w, appErr.StatusCode, map[string]any{"error": appErr})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}
