package database

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm/logger"
)

func TestNewID(t *testing.T) {
	id := NewID(DeviceIDPrefix)
	if !strings.HasPrefix(id, "DEV-") {
		t.Errorf("expected DEV- prefix, got %q", id)
	}
	if len(id) != len("DEV-")+8 {
		t.Errorf("expected 8 suffix characters, got %q", id)
	}
	if strings.ToUpper(id) != id {
		t.Errorf("expected upper case id, got %q", id)
	}
	if NewID(DeviceIDPrefix) == id {
		t.Error("expected distinct ids")
	}
}

func TestTableNames(t *testing.T) {
	tests := []struct {
		model interface{ TableName() string }
		want  string
	}{
		{Customer{}, "customers"},
		{Device{}, "devices"},
		{Ticket{}, "tickets"},
		{TelemetryData{}, "telemetry_data"},
		{TicketTelemetry{}, "ticket_telemetry"},
		{SystemEvent{}, "system_events"},
		{Analytics{}, "analytics"},
	}
	for _, tt := range tests {
		if got := tt.model.TableName(); got != tt.want {
			t.Errorf("TableName() = %q, want %q", got, tt.want)
		}
	}
}

func TestEnums_Valid(t *testing.T) {
	tests := []struct {
		name  string
		value Enum
		want  bool
	}{
		{"risk high", RiskLevelHigh, true},
		{"risk lowercase", RiskLevel("high"), false},
		{"status waiting", TicketStatusWaiting, true},
		{"status unknown", TicketStatus("OPEN"), false},
		{"priority critical", TicketPriorityCritical, true},
		{"support enterprise", SupportLevelEnterprise, true},
		{"support gold", SupportLevel("GOLD"), false},
		{"customer suspended", CustomerStatusSuspended, true},
		{"warranty none", WarrantyStatusNone, true},
		{"severity empty", EventSeverity(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRiskLevel_Rank(t *testing.T) {
	if !(RiskLevelHigh.Rank() > RiskLevelMedium.Rank() && RiskLevelMedium.Rank() > RiskLevelLow.Rank()) {
		t.Error("expected HIGH > MEDIUM > LOW")
	}
	if RiskLevel("UNKNOWN").Rank() != 0 {
		t.Error("expected unknown risk level to rank 0")
	}
}

func TestTicketStatus_IsTerminal(t *testing.T) {
	for _, s := range []TicketStatus{TicketStatusResolved, TicketStatusClosed} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range OpenTicketStatuses() {
		if s.IsTerminal() {
			t.Errorf("expected %s to be open", s)
		}
	}
}

func TestDayStart(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 3, 2, 2, 30, 0, 0, loc) // 2026-03-01 21:30 UTC
	got := DayStart(in)
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayStart() = %v, want %v", got, want)
	}
}

func TestHooks_AssignDefaults(t *testing.T) {
	db, err := Connect(DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	customer := Customer{Name: "Acme", SupportLevel: SupportLevelBasic}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if !strings.HasPrefix(customer.CustomerID, "CUST-") {
		t.Errorf("customer id = %q", customer.CustomerID)
	}
	if customer.Status != CustomerStatusActive {
		t.Errorf("status = %q, want ACTIVE", customer.Status)
	}

	device := Device{CustomerID: customer.CustomerID, Brand: "Dell", HealthScore: 80}
	if err := db.Create(&device).Error; err != nil {
		t.Fatalf("create device: %v", err)
	}
	if device.RiskLevel != RiskLevelLow || device.WarrantyStatus != WarrantyStatusNone {
		t.Errorf("unexpected defaults: %q %q", device.RiskLevel, device.WarrantyStatus)
	}
	if device.LastSeen.IsZero() {
		t.Error("expected lastSeen to be set")
	}

	ticket := Ticket{DeviceID: device.DeviceID, CustomerID: customer.CustomerID, Title: "Disk", Status: TicketStatusClosed}
	if err := db.Create(&ticket).Error; err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if ticket.Priority != TicketPriorityMedium {
		t.Errorf("priority = %q, want MEDIUM", ticket.Priority)
	}
	if ticket.ResolvedAt == nil {
		t.Error("expected resolvedAt for a ticket created closed")
	}
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	if _, err := Connect("oracle", "", logger.Silent); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestConnect_SQLiteEnforcesForeignKeys(t *testing.T) {
	db, err := Connect(DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer Close(db)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	var enabled int
	if err := db.Raw("PRAGMA foreign_keys").Scan(&enabled).Error; err != nil {
		t.Fatalf("read pragma: %v", err)
	}
	if enabled != 1 {
		t.Fatalf("foreign_keys = %d, want 1", enabled)
	}

	orphan := Device{CustomerID: "CUST-MISSING", Brand: "Dell", HealthScore: 50}
	if err := db.Create(&orphan).Error; err == nil {
		t.Error("expected device with unknown customer to be rejected")
	}

	snapshot := TicketTelemetry{TicketID: "TKT-MISSING", CPUUsage: 10}
	if err := db.Create(&snapshot).Error; err == nil {
		t.Error("expected snapshot for unknown ticket to be rejected")
	}
}

func TestConnect_LogsConnectionOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	db, err := Connect(DriverSQLite, ":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer Close(db)

	entries := logs.FilterMessage("database connection established").All()
	if len(entries) != 1 {
		t.Fatalf("expected one connection log line, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["driver"]; got != DriverSQLite {
		t.Errorf("driver field = %v, want %s", got, DriverSQLite)
	}
}
