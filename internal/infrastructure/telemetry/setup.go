package telemetry

import (
	"context"
	"errors"

	"github.com/qms/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Providers bundles the tracer, meter and logger providers of the process
type Providers struct {
	Tracer *TracerProvider
	Meter  *MeterProvider
	Logs   *LoggerProvider

	serviceName string
	logsLevel   zapcore.Level
}

// Setup creates every provider described by cfg. Disabled signals fall back
// to the global no-op implementations, so callers never need to branch.
func Setup(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Providers, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Providers{serviceName: cfg.ServiceName, logsLevel: zapcore.InfoLevel}
	if lvl, err := zapcore.ParseLevel(cfg.LogsLevel); err == nil {
		p.logsLevel = lvl
	}

	var err error
	if p.Tracer, err = NewTracerProvider(ctx, cfg, logger); err != nil {
		return nil, err
	}
	if p.Meter, err = NewMeterProvider(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, p.Tracer.Shutdown(ctx))
	}
	if p.Logs, err = NewLoggerProvider(ctx, cfg, logger); err != nil {
		return nil, errors.Join(err, p.Meter.Shutdown(ctx), p.Tracer.Shutdown(ctx))
	}
	return p, nil
}

// LogCore returns the zap core bridging entries to the OTLP log exporter,
// or a no-op core when log export is disabled
func (p *Providers) LogCore() zapcore.Core {
	return NewZapOTELCore(p.serviceName, p.Logs, p.logsLevel)
}

// Shutdown flushes and stops every provider. Logs go last so records
// emitted while the others shut down are still exported.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.Tracer.Shutdown(ctx),
		p.Meter.Shutdown(ctx),
		p.Logs.Shutdown(ctx),
	)
}
