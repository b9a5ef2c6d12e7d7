package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/starterdev/guardian-form-backend/internal/domain/errors"
)

// EventAction classifies a governance event.
type EventAction string

const (
	EventFieldChanged      EventAction = "FIELD_CHANGED"
	EventPolicyViolation   EventAction = "POLICY_VIOLATION"
	EventRemediation       EventAction = "REMEDIATION"
	EventBulkAction        EventAction = "BULK_ACTION"
	EventSubmitBlocked     EventAction = "SUBMIT_BLOCKED"
	EventApprovalRequested EventAction = "APPROVAL_REQUESTED"
	EventAuditExport       EventAction = "AUDIT_EXPORT"
)

var validEventActions = map[EventAction]struct{}{
	EventFieldChanged:      {},
	EventPolicyViolation:   {},
	EventRemediation:       {},
	EventBulkAction:        {},
	EventSubmitBlocked:     {},
	EventApprovalRequested: {},
	EventAuditExport:       {},
}

// Event is an immutable record of a governance-relevant state change.
// Constructed once with a fresh id and UTC timestamp, never mutated after.
type Event struct {
	ID              uuid.UUID   `json:"id"`
	Timestamp       time.Time   `json:"timestamp"`
	Action          EventAction `json:"action"`
	FieldID         string      `json:"field_id,omitempty"`
	UserID          string      `json:"user_id"`
	Region          string      `json:"region,omitempty"`
	IP              string      `json:"ip,omitempty"`
	RetentionPeriod string      `json:"retention_period,omitempty"`
	Details         string      `json:"details"`
}

// NewEvent creates a governance event. Validation lives in the constructor:
// an unknown action or missing user is a programming error surfaced
// immediately, not a record to be logged.
func NewEvent(action EventAction, userID, details string) (Event, error) {
	if _, ok := validEventActions[action]; !ok {
		return Event{}, errors.NewValidationError("INVALID_EVENT_ACTION", "event action must be valid")
	}
	if userID == "" {
		return Event{}, errors.NewValidationError("MISSING_USER_ID", "user ID is required")
	}

	return Event{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		UserID:    userID,
		Details:   details,
	}, nil
}

// WithField returns a copy of the event attributed to a field.
func (e Event) WithField(fieldID string) Event {
	e.FieldID = fieldID
	return e
}

// WithOrigin returns a copy of the event carrying request origin data.
func (e Event) WithOrigin(region, ip string) Event {
	e.Region = region
	e.IP = ip
	return e
}

// WithRetention returns a copy of the event carrying its retention period.
func (e Event) WithRetention(period string) Event {
	e.RetentionPeriod = period
	return e
}
