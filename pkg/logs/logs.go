// Package logs builds the process logger: stdout, a rotated file and Loki,
// fanned out behind one slog.Handler.
package logs

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Alijeyrad/pms_backend/config"
	"github.com/Alijeyrad/pms_backend/pkg/constants"
)

// New builds a logger from config. The returned close func flushes Loki.
func New(cfg *config.Config) (*slog.Logger, func()) {
	level := parseLevel(cfg.Logging.Level)
	isDev := strings.EqualFold(cfg.Server.Environment, "development")
	out := cfg.Logging.Output

	var writers []io.Writer

	// Stdout is the fallback when nothing else is configured.
	if out.Stdout || (!out.File.Enabled && !out.Loki.Enabled) {
		writers = append(writers, os.Stdout)
	}

	if out.File.Enabled {
		writers = append(writers, &lumberjack.Logger{
			Filename:   out.File.Path,
			MaxSize:    out.File.MaxSizeMB,
			MaxBackups: out.File.MaxBackups,
			MaxAge:     out.File.MaxAgeDays,
			Compress:   out.File.Compress,
		})
	}

	var handlers []slog.Handler
	if len(writers) > 0 {
		w := io.MultiWriter(writers...)
		opts := &slog.HandlerOptions{Level: level, AddSource: isDev}
		if strings.EqualFold(cfg.Logging.Format, "json") || !isDev {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(w, opts))
		}
	}

	closer := func() {}
	if out.Loki.Enabled {
		h, stop, err := newLokiHandler(cfg, level)
		if err != nil {
			// Loki is optional; keep logging locally.
			slog.Default().Error("loki handler disabled", "error", err)
		} else {
			handlers = append(handlers, h)
			closer = stop
		}
	}

	return slog.New(WithRequestContext(Fanout(handlers...))).With(
		slog.String("service", cfg.Observability.ServiceName),
		slog.String("version", cfg.Observability.ServiceVersion),
		slog.String("env", cfg.Server.Environment),
	), closer
}

func Default() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h).With(slog.String("service", constants.ServiceName))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
