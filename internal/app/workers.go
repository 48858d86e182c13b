package app

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/internal/event"
	"github.com/Alijeyrad/pms_backend/pkg/observability"
)

// WorkerModule registers all NATS event workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc  fx.Lifecycle
	NC  *nats.Conn `optional:"true"`
	Cfg *config.Config
}

func RegisterWorkers(p WorkerParams) error {
	if p.NC == nil {
		slog.Info("nats disabled; assessment audit worker not started")
		return nil
	}

	metrics, err := observability.NewAssessmentMetrics()
	if err != nil {
		return err
	}

	var sub *nats.Subscription
	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			sub, err = startAuditWorker(p.NC, subjectPrefix(p.Cfg), metrics)
			return err
		},
		OnStop: func(ctx context.Context) error {
			// The connection itself is drained by ProvideNatsClient.
			if sub != nil {
				return sub.Unsubscribe()
			}
			return nil
		},
	})
	return nil
}

// ---------------------------------------------------------------------------
// audit_worker
// ---------------------------------------------------------------------------

func startAuditWorker(nc *nats.Conn, prefix string, metrics *observability.AssessmentMetrics) (*nats.Subscription, error) {
	subject := event.AssessmentWildcard(prefix)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		auditAssessment(context.Background(), metrics, msg.Subject, msg.Data)
	})
	if err != nil {
		slog.Error("audit_worker: subscribe failed", "subject", subject, "err", err)
		return nil, err
	}
	slog.Info("audit_worker: started", "subject", subject)
	return sub, nil
}

// auditAssessment writes one audit line per assessment event. Deletions
// carry no meaningful score.
func auditAssessment(ctx context.Context, metrics *observability.AssessmentMetrics, subject string, data []byte) {
	e, err := event.Decode(data)
	if err != nil {
		slog.WarnContext(ctx, "audit_worker: bad payload", "subject", subject, "err", err)
		return
	}

	slog.InfoContext(ctx, "assessment audit",
		"kind", string(e.Kind),
		"assessment_id", e.ID,
		"patient_id", e.PatientID,
		"practitioner_id", e.PractitionerID,
		"final_score", e.FinalScore,
		"at", e.At,
	)
	if metrics != nil {
		metrics.Record(ctx, string(e.Kind), e.FinalScore, e.Kind != event.AssessmentDeleted)
	}
}
