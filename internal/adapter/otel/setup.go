// Package otel provides OpenTelemetry instrumentation helpers: HTTP span
// middleware and the service's metric instruments. Exporter setup is left
// to the deployment environment (an OTel collector sidecar or the SDK
// autoexport mechanism); this package stays at the API level.
package otel

import (
	"context"
	"log/slog"
)

// ShutdownFunc is called to flush and shut down the trace provider.
type ShutdownFunc func(ctx context.Context) error

// InitTracer returns a no-op shutdown function. Providers are installed by
// the environment; the service only emits via the global API.
func InitTracer(serviceName string) ShutdownFunc {
	slog.Info("otel: using global providers", "service", serviceName)
	return func(_ context.Context) error {
		return nil
	}
}
