package handlers

import (
	"net/http"

	"github.com/fleetpulse/fleetpulse/internal/api"
	"github.com/fleetpulse/fleetpulse/internal/database"
	"github.com/fleetpulse/fleetpulse/internal/services"
)

// handleListEvents handles GET /api/events
func (h *APIHandler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	q := api.NewQueryParams(r)
	filter := services.EventFilter{
		Type:     q.String("type"),
		Severity: api.QueryEnum[database.EventSeverity](q, "severity"),
		DeviceID: q.String("deviceId"),
	}
	p, ok := listParams(w, r, q)
	if !ok {
		return
	}

	list, err := h.events.List(r.Context(), filter, p.Offset(), p.Limit)
	if err != nil {
		respondServiceError(w, r, err, "list events")
		return
	}
	api.RespondList(w, list.Items, p.Meta(list.Total), list.Stats)
}
