// Package event publishes domain events to NATS.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

type Kind string

const (
	AssessmentCreated Kind = "assessment.created"
	AssessmentUpdated Kind = "assessment.updated"
	AssessmentDeleted Kind = "assessment.deleted"
)

type Assessment struct {
	Kind           Kind      `json:"kind"`
	ID             uuid.UUID `json:"id"`
	PatientID      uuid.UUID `json:"patient"`
	PractitionerID uuid.UUID `json:"practitioner"`
	FinalScore     float64   `json:"final_score"`
	At             time.Time `json:"at"`
}

// Publisher is called after a write has committed. Failures are the
// caller's to log; they never undo the write.
type Publisher interface {
	PublishAssessment(ctx context.Context, e Assessment) error
}

// Subject returns the NATS subject for kind, e.g. "pms.assessment.created".
func Subject(prefix string, kind Kind) string {
	return prefix + "." + string(kind)
}

// AssessmentWildcard matches every assessment subject under prefix.
func AssessmentWildcard(prefix string) string {
	return prefix + ".assessment.>"
}

type natsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(nc *nats.Conn, prefix string) Publisher {
	return &natsPublisher{nc: nc, prefix: prefix}
}

func (p *natsPublisher) PublishAssessment(_ context.Context, e Assessment) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("event: encode %s: %w", e.Kind, err)
	}
	if err := p.nc.Publish(Subject(p.prefix, e.Kind), data); err != nil {
		return fmt.Errorf("event: publish %s: %w", e.Kind, err)
	}
	return nil
}

// Noop drops every event. It is used when NATS is disabled.
type Noop struct{}

func (Noop) PublishAssessment(context.Context, Assessment) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Assessment
}

func (r *Recorder) PublishAssessment(_ context.Context, e Assessment) error {
	r.Events = append(r.Events, e)
	return nil
}

// Decode parses an assessment event payload.
func Decode(data []byte) (Assessment, error) {
	var e Assessment
	if err := json.Unmarshal(data, &e); err != nil {
		return Assessment{}, fmt.Errorf("event: decode: %w", err)
	}
	return e, nil
}
