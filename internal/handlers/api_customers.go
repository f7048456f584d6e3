package handlers

import (
	"net/http"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// handleListCustomers handles GET /api/customers
func (h *APIHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	filter := services.CustomerFilter{
		SupportLevel: api.QueryEnum[database.SupportLevel](q, "supportLevel"),
		Status:       api.QueryEnum[database.CustomerStatus](q, "status"),
		Search:       q.String("search"),
	}
	p, ok := listParams(w, r, q)
	if !ok {
		return
	}

	list, err := h.customers.List(r.Context(), filter, p.Offset(), p.Limit)
	if err != nil {
		respondServiceError(w, r, err, "list customers")
		return
	}
	api.RespondList(w, list.Items, p.Meta(list.Total), list.Stats)
}

// handleGetCustomer handles GET /api/customers/{id}
func (h *APIHandler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	detail, err := h.customers.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err, "get customer")
		return
	}
	api.RespondSuccess(w, http.StatusOK, detail)
}

// handleCreateCustomer handles POST /api/customers
func (h *APIHandler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req api.CreateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer := req.ToCustomer()
	if err := h.customers.Create(r.Context(), customer); err != nil {
		respondServiceError(w, r, err, "create customer")
		return
	}
	api.RespondSuccess(w, http.StatusCreated, customer)
}

// handleUpdateCustomer handles PUT /api/customers/{id}
func (h *APIHandler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateCustomerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	customer, err := h.customers.Update(r.Context(), r.PathValue("id"), req.ToPatch())
	if err != nil {
		respondServiceError(w, r, err, "update customer")
		return
	}
	api.RespondSuccess(w, http.StatusOK, customer)
}
