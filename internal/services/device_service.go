package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/notify"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

// Telemetry window bounds, in hours
const (
	DefaultTelemetryHours = 24
	MaxTelemetryHours     = 720
)

// DeviceService manages devices and their telemetry
type DeviceService struct {
	db       *gorm.DB
	events   *EventService
	notifier notify.Notifier
	now      func() time.Time
}

// NewDeviceService creates a new device service. A nil notifier logs
// notifications instead of delivering them.
func NewDeviceService(db *gorm.DB, events *EventService, notifier notify.Notifier) *DeviceService {
	if notifier == nil {
		notifier = notify.NewLogNotifier()
	}
	return &DeviceService{
		db:       db,
		events:   events,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// DeviceFilter selects devices for listing. MaxHealthScore keeps devices at or
// below the given score.
type DeviceFilter struct {
	Brand          string
	Channel        string
	RiskLevel      database.RiskLevel
	MaxHealthScore *int
	CustomerID     string
	Search         string
}

// deviceSearchColumns are matched by the free-text search
var deviceSearchColumns = []string{"device_id", "brand", "model", "serial_number", "os_name"}

// deviceOrder ranks riskier, less healthy and more recently seen devices first
var deviceOrder = []string{
	query.RankCase("risk_level", "HIGH", "MEDIUM", "LOW"),
	"health_score ASC",
	"last_seen DESC",
	"device_id ASC",
}

func (f DeviceFilter) spec() *query.Spec {
	return query.New().
		Eq("brand", f.Brand).
		Eq("channel", f.Channel).
		Eq("risk_level", string(f.RiskLevel)).
		Eq("customer_id", f.CustomerID).
		AtMost("health_score", f.MaxHealthScore).
		Search(f.Search, deviceSearchColumns...)
}

// DeviceStats summarizes the filtered devices
type DeviceStats struct {
	Total              int64            `json:"total"`
	ByRiskLevel        map[string]int64 `json:"byRiskLevel"`
	ByBrand            map[string]int64 `json:"byBrand"`
	ByChannel          map[string]int64 `json:"byChannel"`
	AverageHealthScore float64          `json:"averageHealthScore"`
}

// DeviceList is one page of devices
type DeviceList struct {
	Items []database.Device
	Total int64
	Stats DeviceStats
}

// List returns devices in canonical order: risk level descending, then health
// ascending, then most recently seen.
func (s *DeviceService) List(ctx context.Context, f DeviceFilter, offset, limit int) (*DeviceList, error) {
	spec := f.spec().OrderBy(deviceOrder...).Preload("Customer")

	page, err := query.List[database.Device](ctx, s.db, spec, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}

	byRisk, err := query.CountBy[database.Device](ctx, s.db, f.spec(), "risk_level")
	if err != nil {
		return nil, err
	}
	byBrand, err := query.CountBy[database.Device](ctx, s.db, f.spec(), "brand")
	if err != nil {
		return nil, err
	}
	byChannel, err := query.CountBy[database.Device](ctx, s.db, f.spec(), "channel")
	if err != nil {
		return nil, err
	}
	avgHealth, err := query.Avg[database.Device](ctx, s.db, f.spec(), "health_score")
	if err != nil {
		return nil, err
	}

	return &DeviceList{
		Items: page.Items,
		Total: page.Total,
		Stats: DeviceStats{
			Total:              page.Total,
			ByRiskLevel:        stats.Distribution(byRisk),
			ByBrand:            stats.Distribution(byBrand),
			ByChannel:          stats.Distribution(byChannel),
			AverageHealthScore: stats.Average(avgHealth),
		},
	}, nil
}

// DeviceDetail is a device with its customer, tickets and latest telemetry
type DeviceDetail struct {
	database.Device
	Tickets         []database.Ticket        `json:"tickets"`
	RecentTelemetry []database.TelemetryData `json:"recentTelemetry"`
}

// Get returns one device with its customer, tickets and the latest telemetry
func (s *DeviceService) Get(ctx context.Context, id string) (*DeviceDetail, error) {
	device, err := s.find(ctx, id, "Customer")
	if err != nil {
		return nil, err
	}

	detail := &DeviceDetail{
		Device:          *device,
		Tickets:         []database.Ticket{},
		RecentTelemetry: []database.TelemetryData{},
	}
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", id).
		Order(query.RankCase("priority", "CRITICAL", "HIGH", "MEDIUM", "LOW")).
		Order("created_at DESC").
		Limit(10).
		Find(&detail.Tickets).Error; err != nil {
		return nil, fmt.Errorf("load device tickets: %w", err)
	}
	if err := s.db.WithContext(ctx).
		Where("device_id = ?", id).
		Order("recorded_at DESC").
		Limit(10).
		Find(&detail.RecentTelemetry).Error; err != nil {
		return nil, fmt.Errorf("load device telemetry: %w", err)
	}
	return detail, nil
}

func (s *DeviceService) find(ctx context.Context, id string, preloads ...string) (*database.Device, error) {
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var device database.Device
	if err := q.Where("device_id = ?", id).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("get device %s: %w", id, err)
	}
	return &device, nil
}

// Create registers a device for an existing customer, bumps the customer's
// device counter and logs a DEVICE_REGISTERED event. The three writes are
// separate statements; once the device row exists the counter and the event
// are best effort.
func (s *DeviceService) Create(ctx context.Context, device *database.Device) error {
	var customer database.Customer
	if err := s.db.WithContext(ctx).Where("customer_id = ?", device.CustomerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("get customer %s: %w", device.CustomerID, err)
	}

	if device.DeviceID != "" {
		var n int64
		if err := s.db.WithContext(ctx).Model(&database.Device{}).Where("device_id = ?", device.DeviceID).Count(&n).Error; err != nil {
			return fmt.Errorf("check device id: %w", err)
		}
		if n > 0 {
			return ErrDeviceExists
		}
	}

	if err := s.db.WithContext(ctx).Create(device).Error; err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&database.Customer{}).
		Where("customer_id = ?", customer.CustomerID).
		Update("device_count", gorm.Expr("device_count + 1")).Error; err != nil {
		logging.FromContext(ctx).Warn("failed to increment customer device count",
			zap.String("customer_id", customer.CustomerID),
			zap.String("device_id", device.DeviceID),
			zap.Error(err))
	}

	s.events.recordBestEffort(ctx, &database.SystemEvent{
		Type:       database.EventTypeDeviceRegistered,
		Severity:   database.EventSeverityInfo,
		Message:    fmt.Sprintf("Device %s %s registered for %s", device.Brand, device.Model, customer.Name),
		DeviceID:   strPtr(device.DeviceID),
		CustomerID: strPtr(customer.CustomerID),
	})
	return nil
}

// Telemetry returns the device's readings from the last hours, oldest first.
// hours outside 1..720 falls back to 24.
func (s *DeviceService) Telemetry(ctx context.Context, id string, hours int) ([]database.TelemetryData, error) {
	if hours < 1 || hours > MaxTelemetryHours {
		hours = DefaultTelemetryHours
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	since := s.now().Add(-time.Duration(hours) * time.Hour)
	readings := []database.TelemetryData{}
	if err := s.db.WithContext(ctx).
		Where("device_id = ? AND recorded_at >= ?", id, since).
		Order("recorded_at ASC").
		Find(&readings).Error; err != nil {
		return nil, fmt.Errorf("load telemetry for %s: %w", id, err)
	}
	return readings, nil
}

// NotifyInput is an operator notification about a device
type NotifyInput struct {
	Message  string
	Severity database.EventSeverity
}

// NotifyResult reports how a notification was delivered
type NotifyResult struct {
	DeviceID  string    `json:"device_id"`
	Notifier  string    `json:"notifier"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	SentAt    time.Time `json:"sentAt"`
}

// Notify sends a notification about the device and logs NOTIFICATION_SENT.
// A delivery failure is reported in the result, not as an error.
func (s *DeviceService) Notify(ctx context.Context, id string, in NotifyInput) (*NotifyResult, error) {
	device, err := s.find(ctx, id, "Customer")
	if err != nil {
		return nil, err
	}

	if in.Severity == "" {
		in.Severity = severityForRisk(device.RiskLevel)
	}
	if in.Message == "" {
		in.Message = fmt.Sprintf("Device health is %d with %s risk", device.HealthScore, device.RiskLevel)
	}

	n := notify.Notification{
		DeviceID:    device.DeviceID,
		CustomerID:  device.CustomerID,
		Brand:       device.Brand,
		Model:       device.Model,
		HealthScore: device.HealthScore,
		RiskLevel:   device.RiskLevel,
		Severity:    in.Severity,
		Message:     in.Message,
	}
	if device.Customer != nil {
		n.CustomerName = device.Customer.Name
	}

	result := &NotifyResult{DeviceID: device.DeviceID, Notifier: s.notifier.Name(), Delivered: true, SentAt: s.now()}
	if err := notify.Send(ctx, s.notifier, n); err != nil {
		result.Delivered = false
		result.Error = err.Error()
	}

	s.events.recordBestEffort(ctx, &database.SystemEvent{
		Type:       database.EventTypeNotificationSent,
		Severity:   in.Severity,
		Message:    in.Message,
		DeviceID:   strPtr(device.DeviceID),
		CustomerID: strPtr(device.CustomerID),
		Data: map[string]interface{}{
			"notifier":  result.Notifier,
			"delivered": result.Delivered,
		},
	})
	return result, nil
}

func severityForRisk(r database.RiskLevel) database.EventSeverity {
	switch r {
	case database.RiskLevelHigh:
		return database.EventSeverityCritical
	case database.RiskLevelMedium:
		return database.EventSeverityWarning
	default:
		return database.EventSeverityInfo
	}
}
