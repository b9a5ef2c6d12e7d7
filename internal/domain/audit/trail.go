package audit

import (
	"sort"
	"time"

	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

// Action labels the interaction captured by a trail snapshot.
type Action string

const (
	ActionChange Action = "CHANGE"
	ActionSubmit Action = "SUBMIT"
	ActionView   Action = "VIEW"
)

// Meta is an immutable, user-attributed snapshot of the session's tracked
// interactions at a point in time.
type Meta struct {
	UserID               string                      `json:"user_id"`
	Timestamp            time.Time                   `json:"timestamp"`
	FieldsTouched        []string                    `json:"fields_touched"`
	ClassificationLevels []governance.Classification `json:"classification_levels"`
	Action               Action                      `json:"action"`
}

// Trail records which fields and classification tiers a session has touched.
// Tracking is additive-only: sets, not counts. The trail is a caller-owned
// value; nothing here persists outside the owning session.
type Trail struct {
	userID  string
	touched map[string]struct{}
	classes map[governance.Classification]struct{}
}

// NewTrail creates an empty trail attributed to userID.
func NewTrail(userID string) *Trail {
	return &Trail{
		userID:  userID,
		touched: make(map[string]struct{}),
		classes: make(map[governance.Classification]struct{}),
	}
}

// Track records an interaction with a field.
func (t *Trail) Track(fieldName string, classification governance.Classification) {
	t.touched[fieldName] = struct{}{}
	t.classes[classification] = struct{}{}
}

// GenerateMeta snapshots the tracked sets into an immutable record with a UTC
// timestamp. It does not clear tracking.
func (t *Trail) GenerateMeta(action Action) Meta {
	fields := make([]string, 0, len(t.touched))
	for name := range t.touched {
		fields = append(fields, name)
	}
	sort.Strings(fields)

	classes := make([]governance.Classification, 0, len(t.classes))
	for c := range t.classes {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Rank() < classes[j].Rank() })

	return Meta{
		UserID:               t.userID,
		Timestamp:            time.Now().UTC(),
		FieldsTouched:        fields,
		ClassificationLevels: classes,
		Action:               action,
	}
}

// Reset clears both tracked sets. Called on form reset, not on submit.
func (t *Trail) Reset() {
	t.touched = make(map[string]struct{})
	t.classes = make(map[governance.Classification]struct{})
}
