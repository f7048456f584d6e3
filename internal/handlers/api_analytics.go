package handlers

import (
	"net/http"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

const (
	defaultPredictionLimit = 10
	maxPredictionLimit     = 50
)

// handleDashboard handles GET /api/analytics/dashboard
func (h *APIHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	timeRange := q.OneOf("timeRange", services.DefaultTimeRange, services.TimeRanges()...)
	if errs := q.Errors(); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	dashboard, err := h.analytics.Dashboard(r.Context(), timeRange)
	if err != nil {
		respondServiceError(w, r, err, "build dashboard")
		return
	}
	api.RespondSuccess(w, http.StatusOK, dashboard)
}

// handleTrends handles GET /api/analytics/trends
func (h *APIHandler) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	days := q.Int("days", services.DefaultTrendDays, 1, services.MaxTrendDays)
	if errs := q.Errors(); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}
	api.RespondSuccess(w, http.StatusOK, h.analytics.Trends(days))
}

// handlePredictions handles GET /api/analytics/predictions
func (h *APIHandler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	limit := q.Int("limit", defaultPredictionLimit, 1, maxPredictionLimit)
	if errs := q.Errors(); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	predictions, err := h.analytics.Predictions(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err, "build predictions")
		return
	}
	api.RespondSuccess(w, http.StatusOK, predictions)
}
