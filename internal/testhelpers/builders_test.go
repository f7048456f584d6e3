package testhelpers

import (
	"strings"
	"testing"
	"time"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

func TestCustomerBuilder(t *testing.T) {
	c := NewCustomerBuilder().
		WithName("Acme").
		WithSupportLevel(database.SupportLevelEnterprise).
		WithDeviceCount(4).
		Build()

	if !strings.HasPrefix(c.CustomerID, "CUST-") {
		t.Errorf("unexpected id %q", c.CustomerID)
	}
	if c.Name != "Acme" || c.SupportLevel != database.SupportLevelEnterprise || c.DeviceCount != 4 {
		t.Errorf("unexpected customer %+v", c)
	}
	if c.Status != database.CustomerStatusActive {
		t.Errorf("expected ACTIVE default, got %s", c.Status)
	}
}

func TestDeviceBuilder(t *testing.T) {
	seen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	d := NewDeviceBuilder("CUST-1").
		WithBrand("HP").
		WithHealth(42).
		WithRisk(database.RiskLevelHigh).
		WithLastSeen(seen).
		Build()

	if d.CustomerID != "CUST-1" || d.Brand != "HP" || d.HealthScore != 42 {
		t.Errorf("unexpected device %+v", d)
	}
	if d.RiskLevel != database.RiskLevelHigh {
		t.Errorf("expected HIGH, got %s", d.RiskLevel)
	}
	if !d.LastSeen.Equal(seen) {
		t.Errorf("expected lastSeen %v, got %v", seen, d.LastSeen)
	}
}

func TestTicketBuilder(t *testing.T) {
	tk := NewTicketBuilder("DEV-1", "CUST-1").
		WithStatus(database.TicketStatusWaiting).
		WithPriority(database.TicketPriorityCritical).
		Build()

	if !strings.HasPrefix(tk.TicketID, "TKT-") {
		t.Errorf("unexpected id %q", tk.TicketID)
	}
	if tk.Status != database.TicketStatusWaiting || tk.Priority != database.TicketPriorityCritical {
		t.Errorf("unexpected ticket %+v", tk)
	}
}
