// Package logger provides the shared zap logger and request-scoped helpers.
package logger

import (
	"context"
	"strings"

	obscontext "github.com/govnotify/letterpipe/internal/observability/context"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Module = fx.Module("observability.logger",
	fx.Provide(New),
)

// New builds the process-wide logger and installs it as the zap global.
func New() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// FromContext returns the global logger enriched with trace, request and
// letter identifiers found on the context.
func FromContext(ctx context.Context) *zap.Logger {
	log := zap.L()
	if ctx == nil {
		return log
	}

	fields := make([]zap.Field, 0, 4)
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	if requestID := obscontext.RequestIDFromContext(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if serviceID := obscontext.ServiceIDFromContext(ctx); serviceID != "" {
		fields = append(fields, zap.String("service_id", serviceID))
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// Named is a small convenience to keep component naming uniform.
func Named(log *zap.Logger, name string) *zap.Logger {
	if log == nil {
		log = zap.L()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return log
	}
	return log.Named(name)
}
