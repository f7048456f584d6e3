package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fleetpulse/fleetpulse/internal/database"
)

func TestDecodeJSON_CustomerRequest(t *testing.T) {
	r := newRequest(`{"name":"Acme","contact":"Jane","location":"Berlin","supportLevel":"PREMIUM"}`)

	var req CreateCustomerRequest
	if err := DecodeJSON(r, &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Name != "Acme" || req.Location != "Berlin" {
		t.Errorf("decoded %+v", req)
	}
	if req.SupportLevel != database.SupportLevelPremium {
		t.Errorf("supportLevel = %q, want PREMIUM", req.SupportLevel)
	}
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"empty body", "", "request body is empty"},
		{"malformed", `{invalid}`, "malformed JSON"},
		{"type mismatch", `{"healthScore":"high"}`, "invalid value"},
		{"unknown field", `{"brand":"Dell","colour":"red"}`, "unknown field"},
		{"oversized", `{"model":"` + strings.Repeat("x", MaxBodySize+1) + `"}`, "exceeds maximum size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateDeviceRequest
			err := DecodeJSON(newRequest(tt.body), &req)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestDecodeJSON_NilBody(t *testing.T) {
	r, _ := http.NewRequest(http.MethodPost, "/api/tickets", nil)

	var req CreateTicketRequest
	err := DecodeJSON(r, &req)
	if err == nil || err.Error() != "request body is empty" {
		t.Errorf("error = %v, want request body is empty", err)
	}
}

func TestQueryParams_OptionalInt(t *testing.T) {
	q := NewQueryParams(httptest.NewRequest("GET", "/api/devices?healthScore=50&crashes=x&score=101", nil))

	if v := q.OptionalInt("healthScore", 0, 100); v == nil || *v != 50 {
		t.Errorf("healthScore = %v, want 50", v)
	}
	if v := q.OptionalInt("missing", 0, 100); v != nil {
		t.Errorf("missing = %v, want nil", *v)
	}
	if v := q.OptionalInt("crashes", 0, 100); v != nil {
		t.Errorf("crashes = %v, want nil", *v)
	}
	if v := q.OptionalInt("score", 0, 100); v != nil {
		t.Errorf("score = %v, want nil", *v)
	}

	errs := q.Errors()
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want crashes and score", errs)
	}
	if errs["score"] != "must be an integer between 0 and 100" {
		t.Errorf("score error = %q", errs["score"])
	}
}

func TestQueryParams_Int(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{"absent", "", 24, false},
		{"in range", "?hours=48", 48, false},
		{"upper bound", "?hours=720", 720, false},
		{"above range falls back", "?hours=9999", 24, false},
		{"below range falls back", "?hours=0", 24, false},
		{"not an integer", "?hours=abc", 24, true},
		{"fractional", "?hours=1.5", 24, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewQueryParams(httptest.NewRequest("GET", "/api/devices/DEV-1/telemetry"+tt.query, nil))
			if got := q.Int("hours", 24, 1, 720); got != tt.want {
				t.Errorf("hours = %d, want %d", got, tt.want)
			}
			errs := q.Errors()
			if tt.wantErr && errs["hours"] != "must be an integer" {
				t.Errorf("errors = %v, want hours error", errs)
			}
			if !tt.wantErr && errs != nil {
				t.Errorf("unexpected errors %v", errs)
			}
		})
	}
}

func TestQueryParams_OneOf(t *testing.T) {
	q := NewQueryParams(httptest.NewRequest("GET", "/api/analytics/dashboard?timeRange=30d", nil))
	if got := q.OneOf("timeRange", "7d", "24h", "7d", "30d", "90d"); got != "30d" {
		t.Errorf("timeRange = %q, want 30d", got)
	}
	if q.Errors() != nil {
		t.Errorf("unexpected errors %v", q.Errors())
	}

	q = NewQueryParams(httptest.NewRequest("GET", "/api/analytics/dashboard?timeRange=1y", nil))
	if got := q.OneOf("timeRange", "7d", "24h", "7d"); got != "7d" {
		t.Errorf("timeRange = %q, want fallback 7d", got)
	}
	if q.Errors()["timeRange"] != "must be one of: 24h, 7d" {
		t.Errorf("errors = %v", q.Errors())
	}
}

func TestQueryEnum(t *testing.T) {
	q := NewQueryParams(httptest.NewRequest("GET", "/api/devices?riskLevel=high&status=bogus", nil))

	if got := QueryEnum[database.RiskLevel](q, "riskLevel"); got != database.RiskLevelHigh {
		t.Errorf("riskLevel = %q, want HIGH", got)
	}
	if got := QueryEnum[database.TicketStatus](q, "status"); got != "" {
		t.Errorf("status = %q, want empty", got)
	}
	if got := QueryEnum[database.TicketPriority](q, "priority"); got != "" {
		t.Errorf("priority = %q, want empty", got)
	}

	errs := q.Errors()
	if len(errs) != 1 || !strings.HasPrefix(errs["status"], "must be one of: ") {
		t.Errorf("errors = %v", errs)
	}
}

// newRequest creates an http.Request with the given JSON body.
func newRequest(body string) *http.Request {
	r, _ := http.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return r
}
