package logs

import (
	"context"
	"log/slog"

	"github.com/Alijeyrad/pms_backend/pkg/reqctx"
)

// WithRequestContext adds the request id and caller id carried by ctx to
// every record logged through a *Context call.
func WithRequestContext(h slog.Handler) slog.Handler {
	return &contextHandler{Handler: h}
}

type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := reqctx.UserIDFromContext(ctx); ok {
		r.AddAttrs(slog.String("user_id", uid.String()))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
