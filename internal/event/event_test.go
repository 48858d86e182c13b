package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "pms.assessment.created", Subject("pms", AssessmentCreated))
	assert.Equal(t, "pms.assessment.>", AssessmentWildcard("pms"))
}

func TestDecodeWirePayload(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(map[string]any{
		"kind":         "assessment.updated",
		"id":           id,
		"patient":      uuid.Nil,
		"practitioner": uuid.Nil,
		"final_score":  50,
		"at":           at,
	})
	require.NoError(t, err)

	e, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, AssessmentUpdated, e.Kind)
	assert.Equal(t, id, e.ID)
	assert.Equal(t, 50.0, e.FinalScore)
	assert.True(t, at.Equal(e.At))

	_, err = Decode([]byte("{"))
	assert.Error(t, err)
}

func TestRecorderAndNoop(t *testing.T) {
	var r Recorder
	require.NoError(t, r.PublishAssessment(context.Background(), Assessment{Kind: AssessmentDeleted}))
	require.Len(t, r.Events, 1)
	assert.NoError(t, Noop{}.PublishAssessment(context.Background(), Assessment{}))
}
