package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/metrics"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

// EventService writes and reads the append-only system event log
type EventService struct {
	db *gorm.DB
}

// NewEventService creates a new event service
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db}
}

// Record appends an event. The write is independent of whatever mutation
// produced it.
func (s *EventService) Record(ctx context.Context, event *database.SystemEvent) error {
	if event.Severity == "" {
		event.Severity = database.EventSeverityInfo
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("record %s event: %w", event.Type, err)
	}
	metrics.SystemEventsTotal.WithLabelValues(event.Type, string(event.Severity)).Inc()
	return nil
}

// recordBestEffort records an event and only logs a failure, leaving the
// already committed primary write in place.
func (s *EventService) recordBestEffort(ctx context.Context, event *database.SystemEvent) {
	if err := s.Record(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("failed to record system event",
			zap.String("type", event.Type),
			zap.Error(err))
	}
}

// EventFilter selects events for listing
type EventFilter struct {
	Type     string
	Severity database.EventSeverity
	DeviceID string
}

// EventStats summarizes the filtered events
type EventStats struct {
	Total      int64            `json:"total"`
	BySeverity map[string]int64 `json:"bySeverity"`
	ByType     map[string]int64 `json:"byType"`
}

// EventList is one page of events
type EventList struct {
	Items []database.SystemEvent
	Total int64
	Stats EventStats
}

func (f EventFilter) spec() *query.Spec {
	return query.New().
		Eq("type", f.Type).
		Eq("severity", string(f.Severity)).
		Eq("device_id", f.DeviceID)
}

// List returns events newest first
func (s *EventService) List(ctx context.Context, f EventFilter, offset, limit int) (*EventList, error) {
	spec := f.spec().OrderBy("created_at DESC", "id DESC")

	page, err := query.List[database.SystemEvent](ctx, s.db, spec, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	bySeverity, err := query.CountBy[database.SystemEvent](ctx, s.db, f.spec(), "severity")
	if err != nil {
		return nil, err
	}
	byType, err := query.CountBy[database.SystemEvent](ctx, s.db, f.spec(), "type")
	if err != nil {
		return nil, err
	}

	return &EventList{
		Items: page.Items,
		Total: page.Total,
		Stats: EventStats{
			Total:      page.Total,
			BySeverity: stats.Distribution(bySeverity),
			ByType:     stats.Distribution(byType),
		},
	}, nil
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
