package handlers

import (
	"net/http"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// handleListTickets handles GET /api/tickets
func (h *APIHandler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	filter := services.TicketFilter{
		Status:     api.QueryEnum[database.TicketStatus](q, "status"),
		Priority:   api.QueryEnum[database.TicketPriority](q, "priority"),
		CustomerID: q.String("customerId"),
		DeviceID:   q.String("deviceId"),
		Search:     q.String("search"),
	}
	p, ok := listParams(w, r, q)
	if !ok {
		return
	}

	list, err := h.tickets.List(r.Context(), filter, p.Offset(), p.Limit)
	if err != nil {
		respondServiceError(w, r, err, "list tickets")
		return
	}
	api.RespondList(w, list.Items, p.Meta(list.Total), list.Stats)
}

// handleGetTicket handles GET /api/tickets/{id}
func (h *APIHandler) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.tickets.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err, "get ticket")
		return
	}
	api.RespondSuccess(w, http.StatusOK, ticket)
}

// handleCreateTicket handles POST /api/tickets
func (h *APIHandler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req api.CreateTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, snapshot := req.ToTicket()
	if err := h.tickets.Create(r.Context(), ticket, snapshot); err != nil {
		respondServiceError(w, r, err, "create ticket")
		return
	}
	api.RespondSuccess(w, http.StatusCreated, ticket)
}

// handleUpdateTicket handles PUT /api/tickets/{id}
func (h *APIHandler) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.tickets.Update(r.Context(), r.PathValue("id"), req.ToPatch())
	if err != nil {
		respondServiceError(w, r, err, "update ticket")
		return
	}
	api.RespondSuccess(w, http.StatusOK, ticket)
}

// handleDeleteTicket handles DELETE /api/tickets/{id}
func (h *APIHandler) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	if err := h.tickets.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondServiceError(w, r, err, "delete ticket")
		return
	}
	api.RespondMessage(w, http.StatusOK, "Ticket deleted")
}
