package telemetry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

const shutdownTimeout = 5 * time.Second

// NewApplication starts the New Relic agent. It returns nil when no license key
// is configured; every consumer treats a nil application as disabled.
func NewApplication(appName, licenseKey string, logger *slog.Logger) (*newrelic.Application, error) {
	if licenseKey == "" {
		logger.Info("new relic disabled")
		return nil, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(appName),
		newrelic.ConfigLicense(licenseKey),
		newrelic.ConfigDistributedTracerEnabled(true),
		newrelic.ConfigAppLogForwardingEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("init new relic: %w", err)
	}
	logger.Info("new relic enabled", slog.String("app", appName))
	return app, nil
}
