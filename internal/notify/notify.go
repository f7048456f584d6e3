// Package notify delivers operator notifications about devices. Slack is the
// only remote channel; without Slack credentials notifications are logged.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/metrics"
)

// Notification describes one message about a device
type Notification struct {
	DeviceID     string
	CustomerID   string
	CustomerName string
	Brand        string
	Model        string
	HealthScore  int
	RiskLevel    database.RiskLevel
	Severity     database.EventSeverity
	Message      string
}

// Title renders the one-line summary used as a message headline
func (n Notification) Title() string {
	return fmt.Sprintf("[%s] %s %s (%s)", n.Severity, n.Brand, n.Model, n.DeviceID)
}

// Notifier delivers notifications
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Send delivers n through notifier and records the outcome
func Send(ctx context.Context, notifier Notifier, n Notification) error {
	err := notifier.Notify(ctx, n)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.NotificationsTotal.WithLabelValues(notifier.Name(), status).Inc()
	return err
}

// LogNotifier writes notifications to the structured log
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (LogNotifier) Name() string { return "log" }

// Notify logs n at a level matching its severity
func (LogNotifier) Notify(ctx context.Context, n Notification) error {
	logger := logging.FromContext(ctx).With(
		zap.String("device_id", n.DeviceID),
		zap.String("customer_id", n.CustomerID),
		zap.String("severity", string(n.Severity)),
		zap.Int("health_score", n.HealthScore),
	)
	switch n.Severity {
	case database.EventSeverityCritical, database.EventSeverityError:
		logger.Error(n.Title(), zap.String("message", n.Message))
	case database.EventSeverityWarning:
		logger.Warn(n.Title(), zap.String("message", n.Message))
	default:
		logger.Info(n.Title(), zap.String("message", n.Message))
	}
	return nil
}
