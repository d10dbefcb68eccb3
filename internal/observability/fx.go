// Package observability wires logging and tracing into the fx app.
package observability

import (
	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/observability/logger"
	"github.com/govnotify/letterpipe/internal/observability/tracing"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(newTracingConfig),
	fx.Invoke(tracing.NewProvider),
)

func newTracingConfig(cfg config.Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.Tracing.Enabled,
		ServiceName:      "letterpipe",
		Environment:      cfg.Environment,
		ExporterEndpoint: cfg.Tracing.ExporterEndpoint,
		ExporterProtocol: cfg.Tracing.ExporterProtocol,
		SamplingRatio:    cfg.Tracing.SamplingRatio,
	}
}
