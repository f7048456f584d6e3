// Package testhelpers provides additional data builders for testing
package testhelpers

import (
	"time"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

// ========================================
// Customer Builder
// ========================================

// CustomerBuilder builds Customer instances for testing
type CustomerBuilder struct {
	customer database.Customer
}

// NewCustomerBuilder creates a new customer builder with defaults
func NewCustomerBuilder() *CustomerBuilder {
	return &CustomerBuilder{
		customer: database.Customer{
			CustomerID:   database.NewID(database.CustomerIDPrefix),
			Name:         "Test Customer",
			Contact:      "Test Contact",
			Location:     "Test Location",
			SupportLevel: database.SupportLevelBasic,
			Status:       database.CustomerStatusActive,
		},
	}
}

// WithID sets the customer ID
func (b *CustomerBuilder) WithID(id string) *CustomerBuilder {
	b.customer.CustomerID = id
	return b
}

// WithName sets the name
func (b *CustomerBuilder) WithName(name string) *CustomerBuilder {
	b.customer.Name = name
	return b
}

// WithLocation sets the location
func (b *CustomerBuilder) WithLocation(location string) *CustomerBuilder {
	b.customer.Location = location
	return b
}

// WithSupportLevel sets the support tier
func (b *CustomerBuilder) WithSupportLevel(level database.SupportLevel) *CustomerBuilder {
	b.customer.SupportLevel = level
	return b
}

// WithStatus sets the account status
func (b *CustomerBuilder) WithStatus(status database.CustomerStatus) *CustomerBuilder {
	b.customer.Status = status
	return b
}

// WithDeviceCount sets the denormalized device counter
func (b *CustomerBuilder) WithDeviceCount(n int) *CustomerBuilder {
	b.customer.DeviceCount = n
	return b
}

// Build returns the constructed customer
func (b *CustomerBuilder) Build() database.Customer {
	return b.customer
}

// ========================================
// Device Builder
// ========================================

// DeviceBuilder builds Device instances for testing
type DeviceBuilder struct {
	device database.Device
}

// NewDeviceBuilder creates a new device builder owned by customerID
func NewDeviceBuilder(customerID string) *DeviceBuilder {
	return &DeviceBuilder{
		device: database.Device{
			DeviceID:       database.NewID(database.DeviceIDPrefix),
			CustomerID:     customerID,
			Brand:          "Dell",
			Model:          "Latitude 7440",
			SerialNumber:   "SN-TEST",
			Channel:        "RETAIL",
			OSName:         "Windows",
			OSVersion:      "11",
			HealthScore:    90,
			RiskLevel:      database.RiskLevelLow,
			LastSeen:       time.Now().UTC(),
			WarrantyStatus: database.WarrantyStatusActive,
		},
	}
}

// WithID sets the device ID
func (b *DeviceBuilder) WithID(id string) *DeviceBuilder {
	b.device.DeviceID = id
	return b
}

// WithBrand sets the brand
func (b *DeviceBuilder) WithBrand(brand string) *DeviceBuilder {
	b.device.Brand = brand
	return b
}

// WithModel sets the model
func (b *DeviceBuilder) WithModel(model string) *DeviceBuilder {
	b.device.Model = model
	return b
}

// WithSerial sets the serial number
func (b *DeviceBuilder) WithSerial(serial string) *DeviceBuilder {
	b.device.SerialNumber = serial
	return b
}

// WithChannel sets the sales channel
func (b *DeviceBuilder) WithChannel(channel string) *DeviceBuilder {
	b.device.Channel = channel
	return b
}

// WithHealth sets the health score
func (b *DeviceBuilder) WithHealth(score int) *DeviceBuilder {
	b.device.HealthScore = score
	return b
}

// WithRisk sets the risk level
func (b *DeviceBuilder) WithRisk(level database.RiskLevel) *DeviceBuilder {
	b.device.RiskLevel = level
	return b
}

// WithLastSeen sets the last contact time
func (b *DeviceBuilder) WithLastSeen(t time.Time) *DeviceBuilder {
	b.device.LastSeen = t.UTC()
	return b
}

// Build returns the constructed device
func (b *DeviceBuilder) Build() database.Device {
	return b.device
}

// ========================================
// Ticket Builder
// ========================================

// TicketBuilder builds Ticket instances for testing
type TicketBuilder struct {
	ticket database.Ticket
}

// NewTicketBuilder creates a ticket for the given device and customer
func NewTicketBuilder(deviceID, customerID string) *TicketBuilder {
	return &TicketBuilder{
		ticket: database.Ticket{
			TicketID:    database.NewID(database.TicketIDPrefix),
			DeviceID:    deviceID,
			CustomerID:  customerID,
			Title:       "Battery degradation detected",
			Description: "Battery health dropped below threshold",
			Category:    "HARDWARE",
			Status:      database.TicketStatusAnalysis,
			Priority:    database.TicketPriorityMedium,
			Confidence:  75,
		},
	}
}

// WithID sets the ticket ID
func (b *TicketBuilder) WithID(id string) *TicketBuilder {
	b.ticket.TicketID = id
	return b
}

// WithTitle sets the title
func (b *TicketBuilder) WithTitle(title string) *TicketBuilder {
	b.ticket.Title = title
	return b
}

// WithStatus sets the status
func (b *TicketBuilder) WithStatus(status database.TicketStatus) *TicketBuilder {
	b.ticket.Status = status
	return b
}

// WithPriority sets the priority
func (b *TicketBuilder) WithPriority(priority database.TicketPriority) *TicketBuilder {
	b.ticket.Priority = priority
	return b
}

// WithConfidence sets the confidence
func (b *TicketBuilder) WithConfidence(confidence int) *TicketBuilder {
	b.ticket.Confidence = confidence
	return b
}

// CreatedAt sets the creation time
func (b *TicketBuilder) CreatedAt(t time.Time) *TicketBuilder {
	b.ticket.CreatedAt = t.UTC()
	return b
}

// Build returns the constructed ticket
func (b *TicketBuilder) Build() database.Ticket {
	return b.ticket
}
