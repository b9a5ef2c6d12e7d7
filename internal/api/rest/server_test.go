package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/starterdev/guardian-form-backend/internal/api/rest"
	"github.com/starterdev/guardian-form-backend/internal/infrastructure/config"
	"github.com/starterdev/guardian-form-backend/internal/service/form"
	"github.com/starterdev/guardian-form-backend/internal/service/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Version:     "test",
		Environment: "test",
		Server: config.ServerConfig{
			Port:         0,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
		Governance: config.GovernanceConfig{
			PolicyMode:       "enforce",
			Jurisdiction:     "GLOBAL",
			UserSimRole:      "viewer",
			AuditLogCapacity: 50,
			Region:           "us-east-1",
		},
	}
}

func newTestServer(t *testing.T, store session.Store) http.Handler {
	t.Helper()
	srv := rest.NewServer(testConfig(), zap.NewNop(), nil, store)
	return srv.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func createSession(t *testing.T, h http.Handler, body map[string]any) string {
	t.Helper()
	if body == nil {
		body = map[string]any{"user_id": "u-1"}
	}
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		SessionID string `json:"session_id"`
	}
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func sessionPath(id, suffix string) string {
	return fmt.Sprintf("/api/v1/sessions/%s%s", id, suffix)
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	decodeBody(t, rec, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestCreateSessionValidation(t *testing.T) {
	h := newTestServer(t, nil)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sessions", map[string]any{"form_name": "onboarding"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownSessionIs404(t *testing.T) {
	h := newTestServer(t, nil)
	rec := doJSON(t, h, http.MethodGet, sessionPath("nope", ""), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFieldLifecycle(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "email",
		"label":          "Email",
		"classification": "PERSONAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, sessionPath(id, "/values/email"), map[string]any{
		"value": "user@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Equal(t, "user@example.com", snap.Values["email"])
	assert.True(t, snap.Touched["email"])
	assert.Equal(t, 20, snap.Risk.Score)

	// Re-registration under a different tier conflicts.
	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "email",
		"label":          "Email",
		"classification": "PUBLIC",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGovernancePatchAndRemediate(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "card",
		"label":          "Card",
		"classification": "FINANCIAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPatch, sessionPath(id, "/fields/card"), map[string]any{
		"retention_days": 180,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Equal(t, 180, snap.Fields["card"].RetentionDays)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields/card/remediate"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result struct {
		FieldID string   `json:"field_id"`
		Applied []string `json:"applied"`
	}
	decodeBody(t, rec, &result)
	assert.Equal(t, "card", result.FieldID)
	assert.NotEmpty(t, result.Applied)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields/ghost/remediate"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkActions(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	for _, f := range []map[string]any{
		{"name": "ssn", "label": "SSN", "classification": "HIGHLY_SENSITIVE"},
		{"name": "card", "label": "Card", "classification": "FINANCIAL"},
	} {
		rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), f)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/bulk"), map[string]any{"action": "encrypt-sensitive"})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.True(t, snap.Fields["ssn"].FullyEncrypted())
	assert.True(t, snap.Fields["card"].FullyEncrypted())

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/bulk"), map[string]any{"action": "mask-highly-sensitive"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/bulk"), map[string]any{"action": "shred-everything"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitBlockedAndUnblocked(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "medical_id",
		"label":          "Medical ID",
		"classification": "HIGHLY_SENSITIVE",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/submit"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errBody struct {
		Error struct {
			Type    string         `json:"type"`
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, rec, &errBody)
	assert.Equal(t, "SUBMIT_BLOCKED", errBody.Error.Code)
	assert.Contains(t, errBody.Error.Details["rule_ids"], "require-encryption")

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/bulk"), map[string]any{"action": "remediate-all"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields/medical_id/approval"), map[string]any{
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/submit"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApprovalRequestFlow(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "ssn",
		"label":          "SSN",
		"classification": "HIGHLY_SENSITIVE",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields/ssn/approval"), map[string]any{
		"approver": "dpo",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Equal(t, "dpo", string(snap.Fields["ssn"].ApproverRole))
	assert.Equal(t, "pending", string(snap.Fields["ssn"].ApprovalStatus))

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/fields/ssn/approval"), map[string]any{
		"status": "sideways",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResetAndAuditExport(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "card",
		"label":          "Card",
		"classification": "FINANCIAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPatch, sessionPath(id, "/fields/card"), map[string]any{
		"encryption_at_rest": true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/reset"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodGet, sessionPath(id, "/audit/export"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "governance-audit-log.json")

	var events []map[string]any
	decodeBody(t, rec, &events)
	require.NotEmpty(t, events)
	assert.Equal(t, "FIELD_CHANGED", events[0]["action"])
}

func TestSessionPersistence(t *testing.T) {
	sealer, err := session.NewSealer(bytes.Repeat([]byte{0x42}, 32))
	require.NoError(t, err)
	store := session.NewMemoryStore(sealer)
	h := newTestServer(t, store)

	id := createSession(t, h, map[string]any{"user_id": "u-1", "form_name": "onboarding"})
	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "dept",
		"label":          "Department",
		"classification": "PUBLIC",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, sessionPath(id, "/values/dept"), map[string]any{"value": "legal"})
	require.Equal(t, http.StatusOK, rec.Code)

	saved, err := store.Load(context.Background(), "onboarding")
	require.NoError(t, err)
	assert.Equal(t, "legal", saved["dept"])

	// A new session for the same form resumes the draft.
	id2 := createSession(t, h, map[string]any{"user_id": "u-2", "form_name": "onboarding"})
	rec = doJSON(t, h, http.MethodGet, sessionPath(id2, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Equal(t, "legal", snap.Values["dept"])

	// Submission clears the draft.
	rec = doJSON(t, h, http.MethodPost, sessionPath(id2, "/submit"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = store.Load(context.Background(), "onboarding")
	assert.Error(t, err)
}

func getState(t *testing.T, h http.Handler, id string) form.Snapshot {
	t.Helper()
	rec := doJSON(t, h, http.MethodGet, sessionPath(id, ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	return snap
}

func complianceRuleIDs(snap form.Snapshot) []string {
	ids := make([]string, 0, len(snap.Compliance.Violations))
	for _, v := range snap.Compliance.Violations {
		ids = append(ids, v.RuleID)
	}
	return ids
}

func TestSessionWiresBuiltinPolicies(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, nil)

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "email",
		"label":          "Email",
		"classification": "PERSONAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPut, sessionPath(id, "/values/email"), map[string]any{
		"value": "test@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Contains(t, complianceRuleIDs(snap), "no-plaintext-pii")
	assert.False(t, snap.Compliance.IsCompliant)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/submit"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errBody struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, rec, &errBody)
	assert.Contains(t, errBody.Error.Details["rule_ids"], "no-plaintext-pii")
}

func TestSessionPolicySelection(t *testing.T) {
	h := newTestServer(t, nil)
	limit := 1
	id := createSession(t, h, map[string]any{
		"user_id": "u-1",
		"policies": map[string]any{
			"data_minimization_limit": limit,
			"dependent_fields": []map[string]any{
				{"target": "ssn", "dependent": "approver"},
			},
		},
	})

	for _, f := range []map[string]any{
		{"name": "email", "label": "Email", "classification": "PERSONAL"},
		{"name": "phone", "label": "Phone", "classification": "PERSONAL"},
		{"name": "ssn", "label": "SSN", "classification": "HIGHLY_SENSITIVE"},
		{"name": "approver", "label": "Approver", "classification": "INTERNAL"},
	} {
		rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), f)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	snap := getState(t, h, id)
	assert.Contains(t, complianceRuleIDs(snap), "data-minimization")

	rec := doJSON(t, h, http.MethodPut, sessionPath(id, "/values/ssn"), map[string]any{
		"value": "123456789",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &snap)
	assert.Contains(t, complianceRuleIDs(snap), "dependent-field")
}

func TestSessionPoliciesDisabled(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, map[string]any{
		"user_id":  "u-1",
		"policies": map[string]any{"disabled": true},
	})

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "email",
		"label":          "Email",
		"classification": "PERSONAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, sessionPath(id, "/values/email"), map[string]any{
		"value": "test@example.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var snap form.Snapshot
	decodeBody(t, rec, &snap)
	assert.Empty(t, snap.Compliance.Violations)
}

func TestSessionValidationRules(t *testing.T) {
	h := newTestServer(t, nil)
	id := createSession(t, h, map[string]any{
		"user_id":          "u-1",
		"validation_rules": map[string]string{"email": "required,email"},
		"validation_messages": map[string]string{
			"email": "A valid email address is required.",
		},
	})

	rec := doJSON(t, h, http.MethodPost, sessionPath(id, "/fields"), map[string]any{
		"name":           "email",
		"label":          "Email",
		"classification": "PERSONAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, h, http.MethodPut, sessionPath(id, "/values/email"), map[string]any{
		"value": "not-an-email",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Validation runs asynchronously; poll until the pass commits.
	require.Eventually(t, func() bool {
		snap := getState(t, h, id)
		return !snap.IsValidating && snap.Errors["email"] == "A valid email address is required."
	}, 2*time.Second, 10*time.Millisecond)

	rec = doJSON(t, h, http.MethodPost, sessionPath(id, "/submit"), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errBody struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	decodeBody(t, rec, &errBody)
	fieldErrors, ok := errBody.Error.Details["field_errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A valid email address is required.", fieldErrors["email"])
}
