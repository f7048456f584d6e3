package api

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// DefaultHealthScore is assigned to devices registered without a score
const DefaultHealthScore = 100

// ToCustomer converts a create request into a customer row
func (r CreateCustomerRequest) ToCustomer() *database.Customer {
	return &database.Customer{
		Name:          strings.TrimSpace(r.Name),
		Contact:       strings.TrimSpace(r.Contact),
		Email:         strings.TrimSpace(r.Email),
		Phone:         strings.TrimSpace(r.Phone),
		Location:      strings.TrimSpace(r.Location),
		SupportLevel:  r.SupportLevel,
		ContractStart: utcPtr(r.ContractStart),
		ContractEnd:   utcPtr(r.ContractEnd),
	}
}

// ToPatch converts an update request into a customer patch
func (r UpdateCustomerRequest) ToPatch() services.CustomerPatch {
	return services.CustomerPatch{
		Name:          trimPtr(r.Name),
		Contact:       trimPtr(r.Contact),
		Email:         trimPtr(r.Email),
		Phone:         trimPtr(r.Phone),
		Location:      trimPtr(r.Location),
		SupportLevel:  r.SupportLevel,
		Status:        r.Status,
		ContractStart: utcPtr(r.ContractStart),
		ContractEnd:   utcPtr(r.ContractEnd),
	}
}

// ToDevice converts a registration request into a device row
func (r CreateDeviceRequest) ToDevice() *database.Device {
	health := DefaultHealthScore
	if r.HealthScore != nil {
		health = *r.HealthScore
	}
	return &database.Device{
		DeviceID:        strings.TrimSpace(r.DeviceID),
		CustomerID:      strings.TrimSpace(r.CustomerID),
		Brand:           strings.TrimSpace(r.Brand),
		Model:           strings.TrimSpace(r.Model),
		SerialNumber:    strings.TrimSpace(r.SerialNumber),
		Channel:         strings.ToUpper(strings.TrimSpace(r.Channel)),
		OSName:          r.OSName,
		OSVersion:       r.OSVersion,
		FirmwareVersion: r.FirmwareVersion,
		HealthScore:     health,
		RiskLevel:       r.RiskLevel,
		WarrantyStatus:  r.WarrantyStatus,
		WarrantyExpiry:  utcPtr(r.WarrantyExpiry),
		BatteryHealth:   r.BatteryHealth,
		CPUUsage:        r.CPUUsage,
		MemoryUsage:     r.MemoryUsage,
		StorageUsage:    r.StorageUsage,
		Temperature:     r.Temperature,
		CrashCount:      r.CrashCount,
	}
}

// ToInput converts a notify request into service input
func (r NotifyDeviceRequest) ToInput() services.NotifyInput {
	return services.NotifyInput{
		Message:  strings.TrimSpace(r.Message),
		Severity: r.Severity,
	}
}

// ToTicket converts a create request into a ticket row and its optional
// telemetry snapshot
func (r CreateTicketRequest) ToTicket() (*database.Ticket, *database.TicketTelemetry) {
	ticket := &database.Ticket{
		DeviceID:    strings.TrimSpace(r.DeviceID),
		CustomerID:  strings.TrimSpace(r.CustomerID),
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Category:    strings.ToUpper(strings.TrimSpace(r.Category)),
		Status:      r.Status,
		Priority:    r.Priority,
		Confidence:  r.Confidence,
		AssignedTo:  r.AssignedTo,
	}
	if r.Telemetry == nil {
		return ticket, nil
	}

	snapshot := &database.TicketTelemetry{
		CPUUsage:      r.Telemetry.CPUUsage,
		MemoryUsage:   r.Telemetry.MemoryUsage,
		StorageUsage:  r.Telemetry.StorageUsage,
		BatteryHealth: r.Telemetry.BatteryHealth,
		Temperature:   r.Telemetry.Temperature,
	}
	if len(r.Telemetry.Metrics) > 0 {
		snapshot.Metrics = datatypes.JSONMap(r.Telemetry.Metrics)
	}
	return ticket, snapshot
}

// ToPatch converts an update request into a ticket patch
func (r UpdateTicketRequest) ToPatch() services.TicketPatch {
	return services.TicketPatch{
		Title:       trimPtr(r.Title),
		Description: r.Description,
		Category:    r.Category,
		Status:      r.Status,
		Priority:    r.Priority,
		Confidence:  r.Confidence,
		AssignedTo:  r.AssignedTo,
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
