package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/query"
	"github.com/fleetpulse/fleetpulse/internal/stats"
)

// TicketService manages support tickets
type TicketService struct {
	db     *gorm.DB
	events *EventService
	now    func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(db *gorm.DB, events *EventService) *TicketService {
	return &TicketService{
		db:     db,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// TicketFilter selects tickets for listing
type TicketFilter struct {
	Status     database.TicketStatus
	Priority   database.TicketPriority
	CustomerID string
	DeviceID   string
	Search     string
}

// ticketSearchColumns are matched by the free-text search
var ticketSearchColumns = []string{"ticket_id", "title", "description", "category"}

func (f TicketFilter) spec() *query.Spec {
	return query.New().
		Eq("status", string(f.Status)).
		Eq("priority", string(f.Priority)).
		Eq("customer_id", f.CustomerID).
		Eq("device_id", f.DeviceID).
		Search(f.Search, ticketSearchColumns...)
}

// TicketStats summarizes the filtered tickets
type TicketStats struct {
	Total             int64            `json:"total"`
	ByStatus          map[string]int64 `json:"byStatus"`
	ByPriority        map[string]int64 `json:"byPriority"`
	OpenTickets       int64            `json:"openTickets"`
	AverageConfidence float64          `json:"averageConfidence"`
}

// TicketList is one page of tickets
type TicketList struct {
	Items []database.Ticket
	Total int64
	Stats TicketStats
}

// List returns tickets by priority, then newest first
func (s *TicketService) List(ctx context.Context, f TicketFilter, offset, limit int) (*TicketList, error) {
	spec := f.spec().
		OrderBy(
			query.RankCase("priority", "CRITICAL", "HIGH", "MEDIUM", "LOW"),
			"created_at DESC",
			"ticket_id ASC",
		).
		Preload("Device", "Customer")

	page, err := query.List[database.Ticket](ctx, s.db, spec, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	byStatus, err := query.CountBy[database.Ticket](ctx, s.db, f.spec(), "status")
	if err != nil {
		return nil, err
	}
	byPriority, err := query.CountBy[database.Ticket](ctx, s.db, f.spec(), "priority")
	if err != nil {
		return nil, err
	}
	avgConfidence, err := query.Avg[database.Ticket](ctx, s.db, f.spec(), "confidence")
	if err != nil {
		return nil, err
	}

	var open int64
	for _, st := range database.OpenTicketStatuses() {
		open += stats.CountOf(byStatus, string(st))
	}

	return &TicketList{
		Items: page.Items,
		Total: page.Total,
		Stats: TicketStats{
			Total:             page.Total,
			ByStatus:          stats.Distribution(byStatus),
			ByPriority:        stats.Distribution(byPriority),
			OpenTickets:       open,
			AverageConfidence: stats.Average(avgConfidence),
		},
	}, nil
}

// Get returns one ticket with its device, customer and telemetry snapshot
func (s *TicketService) Get(ctx context.Context, id string) (*database.Ticket, error) {
	var ticket database.Ticket
	err := s.db.WithContext(ctx).
		Preload("Device").
		Preload("Customer").
		Preload("Telemetry").
		Where("ticket_id = ?", id).
		First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}
	return &ticket, nil
}

// Create opens a ticket against a device. The device and the customer must
// exist and the device must belong to the customer. The optional snapshot is
// stored alongside, then a TICKET_CREATED event is logged.
func (s *TicketService) Create(ctx context.Context, ticket *database.Ticket, snapshot *database.TicketTelemetry) error {
	var device database.Device
	if err := s.db.WithContext(ctx).Where("device_id = ?", ticket.DeviceID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		return fmt.Errorf("get device %s: %w", ticket.DeviceID, err)
	}

	var customer database.Customer
	if err := s.db.WithContext(ctx).Where("customer_id = ?", ticket.CustomerID).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("get customer %s: %w", ticket.CustomerID, err)
	}

	if device.CustomerID != customer.CustomerID {
		return ErrDeviceCustomerMismatch
	}

	ticket.Telemetry = nil
	if err := s.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("create ticket: %w", err)
	}

	if snapshot != nil {
		snapshot.TicketID = ticket.TicketID
		if snapshot.CapturedAt.IsZero() {
			snapshot.CapturedAt = s.now()
		}
		if err := s.db.WithContext(ctx).Create(snapshot).Error; err != nil {
			return fmt.Errorf("store ticket telemetry: %w", err)
		}
		ticket.Telemetry = snapshot
	}

	severity := database.EventSeverityInfo
	if ticket.Priority == database.TicketPriorityCritical || ticket.Status == database.TicketStatusCritical {
		severity = database.EventSeverityCritical
	} else if ticket.Priority == database.TicketPriorityHigh {
		severity = database.EventSeverityWarning
	}
	s.events.recordBestEffort(ctx, &database.SystemEvent{
		Type:       database.EventTypeTicketCreated,
		Severity:   severity,
		Message:    fmt.Sprintf("Ticket %s created: %s", ticket.TicketID, ticket.Title),
		DeviceID:   strPtr(ticket.DeviceID),
		TicketID:   strPtr(ticket.TicketID),
		CustomerID: strPtr(ticket.CustomerID),
		Data: map[string]interface{}{
			"priority": string(ticket.Priority),
			"status":   string(ticket.Status),
		},
	})
	return nil
}

// TicketPatch lists the ticket fields an update may overwrite. Nil fields are
// left unchanged.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *string
	Status      *database.TicketStatus
	Priority    *database.TicketPriority
	Confidence  *int
	AssignedTo  *string
}

// Update overwrites the fields set in patch. Moving the ticket to RESOLVED or
// CLOSED stamps resolvedAt unless it is already set. Transitions between
// statuses are not restricted.
func (s *TicketService) Update(ctx context.Context, id string, patch TicketPatch) (*database.Ticket, error) {
	var ticket database.Ticket
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", id).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket %s: %w", id, err)
	}

	u := map[string]interface{}{}
	setIf(u, "title", patch.Title)
	setIf(u, "description", patch.Description)
	setIf(u, "category", patch.Category)
	setIf(u, "status", patch.Status)
	setIf(u, "priority", patch.Priority)
	setIf(u, "confidence", patch.Confidence)
	setIf(u, "assigned_to", patch.AssignedTo)
	if patch.Status != nil && patch.Status.IsTerminal() && ticket.ResolvedAt == nil {
		u["resolved_at"] = s.now()
	}

	if len(u) > 0 {
		if err := s.db.WithContext(ctx).Model(&ticket).Updates(u).Error; err != nil {
			return nil, fmt.Errorf("update ticket %s: %w", id, err)
		}
	}
	return s.Get(ctx, id)
}

// Delete removes a ticket and its telemetry snapshot when one exists
func (s *TicketService) Delete(ctx context.Context, id string) error {
	var ticket database.Ticket
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", id).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("get ticket %s: %w", id, err)
	}

	if err := s.db.WithContext(ctx).Where("ticket_id = ?", id).Delete(&database.TicketTelemetry{}).Error; err != nil {
		return fmt.Errorf("delete ticket telemetry %s: %w", id, err)
	}
	if err := s.db.WithContext(ctx).Where("ticket_id = ?", id).Delete(&database.Ticket{}).Error; err != nil {
		return fmt.Errorf("delete ticket %s: %w", id, err)
	}
	return nil
}
