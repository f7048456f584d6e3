package api

import (
	"time"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

// ========== Customer Types ==========

// CreateCustomerRequest is the request body for POST /api/customers.
type CreateCustomerRequest struct {
	Name          string                `json:"name" validate:"required,min=1,max=255"`
	Contact       string                `json:"contact" validate:"required,min=1,max=255"`
	Email         string                `json:"email" validate:"omitempty,email,max=255"`
	Phone         string                `json:"phone" validate:"omitempty,max=64"`
	Location      string                `json:"location" validate:"required,min=1,max=255"`
	SupportLevel  database.SupportLevel `json:"supportLevel" validate:"required,enum"`
	ContractStart *time.Time            `json:"contractStart"`
	ContractEnd   *time.Time            `json:"contractEnd"`
}

// UpdateCustomerRequest is the request body for PUT /api/customers/{id}.
// Omitted fields keep their current value.
type UpdateCustomerRequest struct {
	Name          *string                  `json:"name" validate:"omitempty,min=1,max=255"`
	Contact       *string                  `json:"contact" validate:"omitempty,min=1,max=255"`
	Email         *string                  `json:"email" validate:"omitempty,email,max=255"`
	Phone         *string                  `json:"phone" validate:"omitempty,max=64"`
	Location      *string                  `json:"location" validate:"omitempty,min=1,max=255"`
	SupportLevel  *database.SupportLevel   `json:"supportLevel" validate:"omitempty,enum"`
	Status        *database.CustomerStatus `json:"status" validate:"omitempty,enum"`
	ContractStart *time.Time               `json:"contractStart"`
	ContractEnd   *time.Time               `json:"contractEnd"`
}

// ========== Device Types ==========

// CreateDeviceRequest is the request body for POST /api/devices.
type CreateDeviceRequest struct {
	DeviceID        string                  `json:"device_id" validate:"omitempty,max=32"`
	CustomerID      string                  `json:"customer_id" validate:"required"`
	Brand           string                  `json:"brand" validate:"required,max=100"`
	Model           string                  `json:"model" validate:"required,max=100"`
	SerialNumber    string                  `json:"serialNumber" validate:"omitempty,max=100"`
	Channel         string                  `json:"channel" validate:"omitempty,max=50"`
	OSName          string                  `json:"osName" validate:"omitempty,max=100"`
	OSVersion       string                  `json:"osVersion" validate:"omitempty,max=50"`
	FirmwareVersion string                  `json:"firmwareVersion" validate:"omitempty,max=50"`
	HealthScore     *int                    `json:"healthScore" validate:"omitempty,gte=0,lte=100"`
	RiskLevel       database.RiskLevel      `json:"riskLevel" validate:"omitempty,enum"`
	WarrantyStatus  database.WarrantyStatus `json:"warrantyStatus" validate:"omitempty,enum"`
	WarrantyExpiry  *time.Time              `json:"warrantyExpiry"`
	BatteryHealth   float64                 `json:"batteryHealth" validate:"gte=0,lte=100"`
	CPUUsage        float64                 `json:"cpuUsage" validate:"gte=0,lte=100"`
	MemoryUsage     float64                 `json:"memoryUsage" validate:"gte=0,lte=100"`
	StorageUsage    float64                 `json:"storageUsage" validate:"gte=0,lte=100"`
	Temperature     float64                 `json:"temperature" validate:"gte=-50,lte=150"`
	CrashCount      int                     `json:"crashCount" validate:"gte=0"`
}

// NotifyDeviceRequest is the request body for POST /api/devices/{id}/actions/notify.
// Both fields are optional.
type NotifyDeviceRequest struct {
	Message  string                 `json:"message" validate:"omitempty,max=1000"`
	Severity database.EventSeverity `json:"severity" validate:"omitempty,enum"`
}

// ========== Ticket Types ==========

// TelemetrySnapshot is the device state captured when a ticket is opened.
type TelemetrySnapshot struct {
	CPUUsage      float64                `json:"cpuUsage" validate:"gte=0,lte=100"`
	MemoryUsage   float64                `json:"memoryUsage" validate:"gte=0,lte=100"`
	StorageUsage  float64                `json:"storageUsage" validate:"gte=0,lte=100"`
	BatteryHealth float64                `json:"batteryHealth" validate:"gte=0,lte=100"`
	Temperature   float64                `json:"temperature" validate:"gte=-50,lte=150"`
	Metrics       map[string]interface{} `json:"metrics"`
}

// CreateTicketRequest is the request body for POST /api/tickets.
type CreateTicketRequest struct {
	DeviceID    string                  `json:"device_id" validate:"required"`
	CustomerID  string                  `json:"customer_id" validate:"required"`
	Title       string                  `json:"title" validate:"required,min=1,max=255"`
	Description string                  `json:"description" validate:"omitempty,max=10000"`
	Category    string                  `json:"category" validate:"omitempty,max=64"`
	Status      database.TicketStatus   `json:"status" validate:"omitempty,enum"`
	Priority    database.TicketPriority `json:"priority" validate:"omitempty,enum"`
	Confidence  int                     `json:"confidence" validate:"gte=0,lte=100"`
	AssignedTo  string                  `json:"assignedTo" validate:"omitempty,max=255"`
	Telemetry   *TelemetrySnapshot      `json:"telemetry"`
}

// UpdateTicketRequest is the request body for PUT /api/tickets/{id}.
// Omitted fields keep their current value.
type UpdateTicketRequest struct {
	Title       *string                  `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string                  `json:"description" validate:"omitempty,max=10000"`
	Category    *string                  `json:"category" validate:"omitempty,max=64"`
	Status      *database.TicketStatus   `json:"status" validate:"omitempty,enum"`
	Priority    *database.TicketPriority `json:"priority" validate:"omitempty,enum"`
	Confidence  *int                     `json:"confidence" validate:"omitempty,gte=0,lte=100"`
	AssignedTo  *string                  `json:"assignedTo" validate:"omitempty,max=255"`
}
