package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/logging"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// APIHandler serves the /api endpoints
type APIHandler struct {
	customers *services.CustomerService
	devices   *services.DeviceService
	tickets   *services.TicketService
	events    *services.EventService
	analytics *services.AnalyticsService
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(customers *services.CustomerService, devices *services.DeviceService, tickets *services.TicketService, events *services.EventService, analytics *services.AnalyticsService) *APIHandler {
	return &APIHandler{
		customers: customers,
		devices:   devices,
		tickets:   tickets,
		events:    events,
		analytics: analytics,
	}
}

// SetupRoutes sets up all API routes
func (h *APIHandler) SetupRoutes(mux *http.ServeMux) {
	// Devices
	mux.HandleFunc("GET /api/devices", h.handleListDevices)
	mux.HandleFunc("POST /api/devices", h.handleCreateDevice)
	mux.HandleFunc("GET /api/devices/{id}", h.handleGetDevice)
	mux.HandleFunc("GET /api/devices/{id}/telemetry", h.handleDeviceTelemetry)
	mux.HandleFunc("POST /api/devices/{id}/actions/notify", h.handleNotifyDevice)

	// Tickets
	mux.HandleFunc("GET /api/tickets", h.handleListTickets)
	mux.HandleFunc("POST /api/tickets", h.handleCreateTicket)
	mux.HandleFunc("GET /api/tickets/{id}", h.handleGetTicket)
	mux.HandleFunc("PUT /api/tickets/{id}", h.handleUpdateTicket)
	mux.HandleFunc("DELETE /api/tickets/{id}", h.handleDeleteTicket)

	// Customers
	mux.HandleFunc("GET /api/customers", h.handleListCustomers)
	mux.HandleFunc("POST /api/customers", h.handleCreateCustomer)
	mux.HandleFunc("GET /api/customers/{id}", h.handleGetCustomer)
	mux.HandleFunc("PUT /api/customers/{id}", h.handleUpdateCustomer)

	// Analytics
	mux.HandleFunc("GET /api/analytics/dashboard", h.handleDashboard)
	mux.HandleFunc("GET /api/analytics/trends", h.handleTrends)
	mux.HandleFunc("GET /api/analytics/predictions", h.handlePredictions)

	// Event log
	mux.HandleFunc("GET /api/events", h.handleListEvents)
}

// decodeAndValidate reads a JSON body into dst and runs the struct validator.
// It writes the 400 response itself and reports whether the caller may go on.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := api.DecodeJSON(r, dst); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if errs := api.Validate(dst); errs != nil {
		api.RespondValidationError(w, errs)
		return false
	}
	return true
}

// listParams parses pagination and any query filters. It writes the 400
// response when either is invalid.
func listParams(w http.ResponseWriter, r *http.Request, q *api.QueryParams) (api.PaginationParams, bool) {
	p, errs := api.ParsePagination(r)
	for k, v := range q.Errors() {
		if errs == nil {
			errs = map[string]string{}
		}
		errs[k] = v
	}
	if errs != nil {
		api.RespondValidationError(w, errs)
		return p, false
	}
	return p, true
}

// respondServiceError maps service errors to HTTP responses. Unknown errors
// are logged and reported as a generic 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, services.ErrCustomerNotFound):
		api.RespondError(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, services.ErrDeviceNotFound):
		api.RespondError(w, http.StatusNotFound, "Device not found")
	case errors.Is(err, services.ErrTicketNotFound):
		api.RespondError(w, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, services.ErrDeviceCustomerMismatch):
		api.RespondError(w, http.StatusBadRequest, "Device does not belong to the specified customer")
	case errors.Is(err, services.ErrDeviceExists):
		api.RespondError(w, http.StatusConflict, "Device already exists")
	default:
		logging.FromContext(r.Context()).Error("request failed",
			zap.String("action", action),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		api.RespondError(w, http.StatusInternalServerError, "Failed to "+action)
	}
}
