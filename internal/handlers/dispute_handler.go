package handlers

import (
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type DisputeHandler struct {
	Responder
	Service *services.DisputeService
}

func (h *DisputeHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	f := models.DisputeFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status")}
	disputes, total, err := h.Service.ListDisputes(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, disputes, f.ListParams, total)
}

func (h *DisputeHandler) GetDispute(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	dispute, err := h.Service.GetDispute(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, dispute)
}

func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req models.ResolveDisputeRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	dispute, err := h.Service.Resolve(r.Context(), actorOf(r).UserID, id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, dispute)
}
