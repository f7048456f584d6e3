package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(SystemEventsTotal.WithLabelValues("TEST_EVENT", "INFO"))
	SystemEventsTotal.WithLabelValues("TEST_EVENT", "INFO").Inc()
	after := testutil.ToFloat64(SystemEventsTotal.WithLabelValues("TEST_EVENT", "INFO"))

	if after-before != 1 {
		t.Errorf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestHandler_ExposesNamespace(t *testing.T) {
	RollupRunsTotal.WithLabelValues("success").Inc()

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "fleetpulse_rollup_runs_total") {
		t.Error("expected rollup counter in exposition")
	}
}
