package database

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NewID returns a short prefixed identifier such as "DEV-1A2B3C4D".
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(raw[:8])
}

// ID prefixes per entity
const (
	CustomerIDPrefix = "CUST"
	DeviceIDPrefix   = "DEV"
	TicketIDPrefix   = "TKT"
)

// Customer is a fleet owner. DeviceCount is a denormalized counter and is not
// kept transactionally in sync with the devices table.
type Customer struct {
	CustomerID    string         `gorm:"primaryKey;size:32" json:"customer_id"`
	Name          string         `gorm:"size:255;not null;index" json:"name"`
	Contact       string         `gorm:"size:255" json:"contact"`
	Email         string         `gorm:"size:255" json:"email"`
	Phone         string         `gorm:"size:64" json:"phone"`
	Location      string         `gorm:"size:255" json:"location"`
	SupportLevel  SupportLevel   `gorm:"type:varchar(20);not null;default:'BASIC';index" json:"supportLevel"`
	Status        CustomerStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	DeviceCount   int            `gorm:"not null;default:0" json:"deviceCount"`
	ContractStart *time.Time     `json:"contractStart,omitempty"`
	ContractEnd   *time.Time     `json:"contractEnd,omitempty"`
	CreatedAt     time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`

	Devices []Device `gorm:"foreignKey:CustomerID;references:CustomerID" json:"devices,omitempty"`
}

func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns an identifier and default status
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.CustomerID == "" {
		c.CustomerID = NewID(CustomerIDPrefix)
	}
	if c.Status == "" {
		c.Status = CustomerStatusActive
	}
	return nil
}

// Device is a monitored endpoint owned by one customer. HealthScore and
// RiskLevel are stored independently of each other.
type Device struct {
	DeviceID        string         `gorm:"primaryKey;size:32" json:"device_id"`
	CustomerID      string         `gorm:"size:32;not null;index" json:"customer_id"`
	Brand           string         `gorm:"size:100;index" json:"brand"`
	Model           string         `gorm:"size:100" json:"model"`
	SerialNumber    string         `gorm:"size:100;index" json:"serialNumber"`
	Channel         string         `gorm:"size:50;index" json:"channel"`
	OSName          string         `gorm:"size:100" json:"osName"`
	OSVersion       string         `gorm:"size:50" json:"osVersion"`
	FirmwareVersion string         `gorm:"size:50" json:"firmwareVersion"`
	HealthScore     int            `gorm:"not null;index" json:"healthScore"`
	RiskLevel       RiskLevel      `gorm:"type:varchar(10);not null;default:'LOW';index" json:"riskLevel"`
	LastSeen        time.Time      `gorm:"index" json:"lastSeen"`
	WarrantyStatus  WarrantyStatus `gorm:"type:varchar(10);not null;default:'NONE'" json:"warrantyStatus"`
	WarrantyExpiry  *time.Time     `json:"warrantyExpiry,omitempty"`
	BatteryHealth   float64        `json:"batteryHealth"`
	CPUUsage        float64        `json:"cpuUsage"`
	MemoryUsage     float64        `json:"memoryUsage"`
	StorageUsage    float64        `json:"storageUsage"`
	Temperature     float64        `json:"temperature"`
	CrashCount      int            `json:"crashCount"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	Customer *Customer `gorm:"foreignKey:CustomerID;references:CustomerID" json:"customer,omitempty"`
}

func (Device) TableName() string {
	return "devices"
}

// BeforeCreate assigns an identifier and defaults
func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.DeviceID == "" {
		d.DeviceID = NewID(DeviceIDPrefix)
	}
	if d.RiskLevel == "" {
		d.RiskLevel = RiskLevelLow
	}
	if d.WarrantyStatus == "" {
		d.WarrantyStatus = WarrantyStatusNone
	}
	if d.LastSeen.IsZero() {
		d.LastSeen = time.Now().UTC()
	}
	return nil
}

// Ticket is a support case raised against a device
type Ticket struct {
	TicketID    string         `gorm:"primaryKey;size:32" json:"ticket_id"`
	DeviceID    string         `gorm:"size:32;not null;index" json:"device_id"`
	CustomerID  string         `gorm:"size:32;not null;index" json:"customer_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:64" json:"category"`
	Status      TicketStatus   `gorm:"type:varchar(20);not null;default:'ANALYSIS';index" json:"status"`
	Priority    TicketPriority `gorm:"type:varchar(20);not null;default:'MEDIUM';index" json:"priority"`
	Confidence  int            `gorm:"not null;default:0" json:"confidence"`
	AssignedTo  string         `gorm:"size:255" json:"assignedTo"`
	ResolvedAt  *time.Time     `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Device    *Device          `gorm:"foreignKey:DeviceID;references:DeviceID" json:"device,omitempty"`
	Customer  *Customer        `gorm:"foreignKey:CustomerID;references:CustomerID" json:"customer,omitempty"`
	Telemetry *TicketTelemetry `gorm:"foreignKey:TicketID;references:TicketID" json:"telemetry,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

// BeforeCreate assigns an identifier and defaults
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.TicketID == "" {
		t.TicketID = NewID(TicketIDPrefix)
	}
	if t.Status == "" {
		t.Status = TicketStatusAnalysis
	}
	if t.Priority == "" {
		t.Priority = TicketPriorityMedium
	}
	if t.Status.IsTerminal() && t.ResolvedAt == nil {
		now := time.Now().UTC()
		t.ResolvedAt = &now
	}
	return nil
}

// TelemetryData is a time-stamped metric snapshot reported by a device
type TelemetryData struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	DeviceID      string            `gorm:"size:32;not null;index:idx_telemetry_device_time,priority:1" json:"device_id"`
	RecordedAt    time.Time         `gorm:"not null;index:idx_telemetry_device_time,priority:2" json:"recordedAt"`
	CPUUsage      float64           `json:"cpuUsage"`
	MemoryUsage   float64           `json:"memoryUsage"`
	StorageUsage  float64           `json:"storageUsage"`
	BatteryHealth float64           `json:"batteryHealth"`
	Temperature   float64           `json:"temperature"`
	Metrics       datatypes.JSONMap `json:"metrics,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}

func (TelemetryData) TableName() string {
	return "telemetry_data"
}

// TicketTelemetry is the device snapshot captured when a ticket was opened.
// A ticket owns at most one.
type TicketTelemetry struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	TicketID      string            `gorm:"size:32;not null;uniqueIndex" json:"ticket_id"`
	CPUUsage      float64           `json:"cpuUsage"`
	MemoryUsage   float64           `json:"memoryUsage"`
	StorageUsage  float64           `json:"storageUsage"`
	BatteryHealth float64           `json:"batteryHealth"`
	Temperature   float64           `json:"temperature"`
	Metrics       datatypes.JSONMap `json:"metrics,omitempty"`
	CapturedAt    time.Time         `json:"capturedAt"`
}

func (TicketTelemetry) TableName() string {
	return "ticket_telemetry"
}

// SystemEvent is an append-only log row written as a side effect of mutations
type SystemEvent struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Type       string            `gorm:"size:64;not null;index" json:"type"`
	Severity   EventSeverity     `gorm:"type:varchar(10);not null;default:'INFO';index" json:"severity"`
	Message    string            `gorm:"type:text;not null" json:"message"`
	DeviceID   *string           `gorm:"size:32;index" json:"device_id,omitempty"`
	TicketID   *string           `gorm:"size:32;index" json:"ticket_id,omitempty"`
	CustomerID *string           `gorm:"size:32;index" json:"customer_id,omitempty"`
	Data       datatypes.JSONMap `json:"data,omitempty"`
	CreatedAt  time.Time         `gorm:"index" json:"createdAt"`
}

func (SystemEvent) TableName() string {
	return "system_events"
}

// Analytics holds the rollup counters of one calendar day (UTC)
type Analytics struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Date               time.Time `gorm:"not null;uniqueIndex" json:"date"`
	TotalDevices       int64     `json:"totalDevices"`
	ActiveDevices      int64     `json:"activeDevices"`
	HighRiskDevices    int64     `json:"highRiskDevices"`
	TicketsCreated     int64     `json:"ticketsCreated"`
	TicketsResolved    int64     `json:"ticketsResolved"`
	AverageHealthScore float64   `json:"averageHealthScore"`
	CriticalEvents     int64     `json:"criticalEvents"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (Analytics) TableName() string {
	return "analytics"
}

// DayStart truncates t to midnight UTC, the key of an Analytics row
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AllModels lists every persisted model in migration order
func AllModels() []interface{} {
	return []interface{}{
		&Customer{},
		&Device{},
		&Ticket{},
		&TelemetryData{},
		&TicketTelemetry{},
		&SystemEvent{},
		&Analytics{},
	}
}
