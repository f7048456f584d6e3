package handlers

import (
	"net/http"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// handleListDevices handles GET /api/devices
func (h *APIHandler) handleListDevices(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	filter := services.DeviceFilter{
		Brand:          q.String("brand"),
		Channel:        q.String("channel"),
		RiskLevel:      api.QueryEnum[database.RiskLevel](q, "riskLevel"),
		MaxHealthScore: q.OptionalInt("healthScore", 0, 100),
		CustomerID:     q.String("customerId"),
		Search:         q.String("search"),
	}
	p, ok := listParams(w, r, q)
	if !ok {
		return
	}

	list, err := h.devices.List(r.Context(), filter, p.Offset(), p.Limit)
	if err != nil {
		respondServiceError(w, r, err, "list devices")
		return
	}
	api.RespondList(w, list.Items, p.Meta(list.Total), list.Stats)
}

// handleGetDevice handles GET /api/devices/{id}
func (h *APIHandler) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	detail, err := h.devices.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err, "get device")
		return
	}
	api.RespondSuccess(w, http.StatusOK, detail)
}

// handleCreateDevice handles POST /api/devices
func (h *APIHandler) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req api.CreateDeviceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	device := req.ToDevice()
	if err := h.devices.Create(r.Context(), device); err != nil {
		respondServiceError(w, r, err, "create device")
		return
	}
	api.RespondSuccess(w, http.StatusCreated, device)
}

// handleDeviceTelemetry handles GET /api/devices/{id}/telemetry.
// Out-of-range hours fall back to the default window.
func (h *APIHandler) handleDeviceTelemetry(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	hours := q.Int("hours", services.DefaultTelemetryHours, 1, services.MaxTelemetryHours)
	if errs := q.Errors(); errs != nil {
		api.RespondValidationError(w, errs)
		return
	}

	readings, err := h.devices.Telemetry(r.Context(), r.PathValue("id"), hours)
	if err != nil {
		respondServiceError(w, r, err, "get telemetry")
		return
	}
	api.RespondSuccess(w, http.StatusOK, readings)
}

// handleNotifyDevice handles POST /api/devices/{id}/actions/notify
func (h *APIHandler) handleNotifyDevice(w http.ResponseWriter, r *http.Request) {
	var req api.NotifyDeviceRequest
	if r.ContentLength != 0 && !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.devices.Notify(r.Context(), r.PathValue("id"), req.ToInput())
	if err != nil {
		respondServiceError(w, r, err, "notify device")
		return
	}
	api.RespondSuccess(w, http.StatusOK, result)
}
