package testhelpers

import (
	"net/http"
	"testing"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

func TestNewTestDB_MigratesAllTables(t *testing.T) {
	db := NewTestDB(t)

	for _, model := range database.AllModels() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("expected table for %T", model)
		}
	}
}

func TestMustCreateAndCountRows(t *testing.T) {
	db := NewTestDB(t)

	customer := NewCustomerBuilder().WithID("CUST-00000001").Build()
	d1 := NewDeviceBuilder(customer.CustomerID).WithRisk(database.RiskLevelHigh).Build()
	d2 := NewDeviceBuilder(customer.CustomerID).Build()
	MustCreate(t, db, &customer, &d1, &d2)

	if got := CountRows(t, db, &database.Device{}); got != 2 {
		t.Errorf("expected 2 devices, got %d", got)
	}
	if got := CountRows(t, db, &database.Device{}, "risk_level = ?", "HIGH"); got != 1 {
		t.Errorf("expected 1 HIGH device, got %d", got)
	}
}

func TestHTTPTestContext_WithHeader(t *testing.T) {
	ctx := NewHTTPTestContext(t, http.MethodGet, "/test", nil)
	ctx.WithHeader("X-Custom", "value")

	if ctx.Request.Header.Get("X-Custom") != "value" {
		t.Error("header not set correctly")
	}
}

func TestHTTPTestContext_DecodeEnvelope(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true,"data":{"name":"x"},"pagination":{"currentPage":2,"totalItems":11},"timestamp":"now"}`))
	})

	var data struct {
		Name string `json:"name"`
	}
	env := NewHTTPTestContext(t, http.MethodPost, "/test", nil).
		WithJSONBody(map[string]string{"a": "b"}).
		Execute(handler).
		AssertStatus(http.StatusOK).
		AssertHeader("Content-Type", "application/json").
		DecodeEnvelope(&data)

	if !env.Success {
		t.Error("expected success")
	}
	if data.Name != "x" {
		t.Errorf("expected data name x, got %q", data.Name)
	}
	if env.Pagination == nil || env.Pagination.CurrentPage != 2 || env.Pagination.TotalItems != 11 {
		t.Errorf("unexpected pagination: %+v", env.Pagination)
	}
}
