package audit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starterdev/guardian-form-backend/internal/domain/audit"
	"github.com/starterdev/guardian-form-backend/internal/domain/governance"
)

func TestTrailTracksSets(t *testing.T) {
	trail := audit.NewTrail("u-1")
	trail.Track("email", governance.ClassificationPersonal)
	trail.Track("email", governance.ClassificationPersonal)
	trail.Track("ssn", governance.ClassificationHighlySensitive)
	trail.Track("dept", governance.ClassificationPublic)

	meta := trail.GenerateMeta(audit.ActionChange)
	assert.Equal(t, "u-1", meta.UserID)
	assert.Equal(t, audit.ActionChange, meta.Action)
	assert.Equal(t, []string{"dept", "email", "ssn"}, meta.FieldsTouched)
	assert.Equal(t, []governance.Classification{
		governance.ClassificationPublic,
		governance.ClassificationPersonal,
		governance.ClassificationHighlySensitive,
	}, meta.ClassificationLevels)
	assert.WithinDuration(t, time.Now().UTC(), meta.Timestamp, time.Second)
}

func TestGenerateMetaDoesNotClear(t *testing.T) {
	trail := audit.NewTrail("u-1")
	trail.Track("email", governance.ClassificationPersonal)

	first := trail.GenerateMeta(audit.ActionSubmit)
	second := trail.GenerateMeta(audit.ActionView)
	assert.Equal(t, first.FieldsTouched, second.FieldsTouched)
	assert.Equal(t, first.ClassificationLevels, second.ClassificationLevels)
}

func TestTrailReset(t *testing.T) {
	trail := audit.NewTrail("u-1")
	trail.Track("email", governance.ClassificationPersonal)
	trail.Reset()

	meta := trail.GenerateMeta(audit.ActionView)
	assert.Empty(t, meta.FieldsTouched)
	assert.Empty(t, meta.ClassificationLevels)
	assert.Equal(t, "u-1", meta.UserID)
}

func TestEmptyTrailMeta(t *testing.T) {
	meta := audit.NewTrail("u-2").GenerateMeta(audit.ActionView)
	require.NotNil(t, meta.FieldsTouched)
	assert.Empty(t, meta.FieldsTouched)
	assert.Empty(t, meta.ClassificationLevels)
}
