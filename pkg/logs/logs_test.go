package logs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
)

func TestFanoutRespectsLevels(t *testing.T) {
	var debug, warn bytes.Buffer
	h := Fanout(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("assessment_id", "a1")

	log.Debug("scored")
	log.Warn("publish failed")

	assert.Contains(t, debug.String(), "scored")
	assert.Contains(t, debug.String(), "publish failed")
	assert.NotContains(t, warn.String(), "scored")
	assert.Contains(t, warn.String(), "assessment_id=a1")
	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug-1))
}

func TestFanoutSingle(t *testing.T) {
	h := slog.NewTextHandler(&bytes.Buffer{}, nil)
	assert.Same(t, h, Fanout(h))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestWithRequestContext(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(WithRequestContext(slog.NewTextHandler(&buf, nil))).With("component", "test")

	uid := uuid.New()
	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-1"})
	ctx = reqctx.WithIdentity(ctx, reqctx.Identity{UserID: uid})
	log.InfoContext(ctx, "handled")
	log.Info("background")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	assert.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "request_id=req-1")
	assert.Contains(t, string(lines[0]), "user_id="+uid.String())
	assert.Contains(t, string(lines[0]), "component=test")
	assert.NotContains(t, string(lines[1]), "request_id")
}
