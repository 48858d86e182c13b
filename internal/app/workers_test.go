package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/pkg/observability"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestAuditAssessment(t *testing.T) {
	buf := captureLogs(t)
	metrics, err := observability.NewAssessmentMetrics()
	require.NoError(t, err)

	e := event.Assessment{
		Kind:           event.AssessmentCreated,
		ID:             uuid.New(),
		PatientID:      uuid.New(),
		PractitionerID: uuid.New(),
		FinalScore:     50,
		At:             time.Now().UTC(),
	}
	data, err := json.Marshal(e)
	require.NoError(t, err)

	auditAssessment(context.Background(), metrics, "pms.assessment.created", data)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "assessment audit", line["msg"])
	assert.Equal(t, "assessment.created", line["kind"])
	assert.Equal(t, e.ID.String(), line["assessment_id"])
	assert.EqualValues(t, 50, line["final_score"])
}

func TestAuditAssessmentBadPayload(t *testing.T) {
	buf := captureLogs(t)

	auditAssessment(context.Background(), nil, "pms.assessment.created", []byte("{"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "audit_worker: bad payload", line["msg"])
}

func TestSubjectPrefixDefault(t *testing.T) {
	cfg := &config.Config{}
	assert.Equal(t, "pms", subjectPrefix(cfg))
	cfg.Nats.SubjectPrefix = "clinic"
	assert.Equal(t, "clinic", subjectPrefix(cfg))
}

func TestEventPublisherWithoutNats(t *testing.T) {
	pub := ProvideEventPublisher(nil, &config.Config{})
	assert.IsType(t, event.Noop{}, pub)
}
