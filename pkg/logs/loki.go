package logs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/grafana/loki-client-go/loki"
	promcfg "github.com/prometheus/common/config"
	"github.com/prometheus/common/model"
	slogloki "github.com/samber/slog-loki/v3"

	"github.com/Alijeyrad/pms_backend/config"
)

func newLokiHandler(cfg *config.Config, level slog.Level) (slog.Handler, func(), error) {
	lc := cfg.Logging.Output.Loki

	c, err := loki.NewDefaultConfig(strings.TrimRight(lc.Endpoint, "/") + "/loki/api/v1/push")
	if err != nil {
		return nil, nil, fmt.Errorf("loki config: %w", err)
	}
	c.TenantID = lc.TenantID
	c.ExternalLabels.LabelSet = model.LabelSet{
		"service": model.LabelValue(cfg.Observability.ServiceName),
		"env":     model.LabelValue(cfg.Server.Environment),
	}
	if lc.Username != "" {
		c.Client.BasicAuth = &promcfg.BasicAuth{
			Username: lc.Username,
			Password: promcfg.Secret(lc.Password),
		}
	}

	client, err := loki.New(c)
	if err != nil {
		return nil, nil, fmt.Errorf("loki client: %w", err)
	}

	h := slogloki.Option{Level: level, Client: client}.NewLokiHandler()
	return h, client.Stop, nil
}
