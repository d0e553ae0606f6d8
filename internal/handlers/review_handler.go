package handlers

import (
	"net/http"
	"strconv"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type ReviewHandler struct {
	Responder
	Service *services.ReviewService
}

func (h *ReviewHandler) reviewFilter(r *http.Request) (models.ReviewFilter, error) {
	f := models.ReviewFilter{ListParams: parseListParams(r)}
	var err error
	if f.ServiceID, err = queryInt64(r, "service_id"); err != nil {
		return f, err
	}
	if f.SellerID, err = queryInt64(r, "seller_id"); err != nil {
		return f, err
	}
	if raw := r.URL.Query().Get("rating"); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 5 {
			return f, fieldError(r, "rating")
		}
		f.Rating = &rating
	}
	return f, nil
}

func (h *ReviewHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	var req models.ReviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	review, err := h.Service.CreateReview(r.Context(), actorOf(r).UserID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.created(w, review)
}

// ListForService handles GET /services/:id/reviews.
func (h *ReviewHandler) ListForService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	f, err := h.reviewFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	reviews, total, err := h.Service.ListForService(r.Context(), id, f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, reviews, f.ListParams, total)
}

func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req models.ReviewReplyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	review, err := h.Service.Reply(r.Context(), actorOf(r).UserID, id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, review)
}

func (h *ReviewHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	f, err := h.reviewFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	reviews, total, err := h.Service.ListAdmin(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, reviews, f.ListParams, total)
}

func (h *ReviewHandler) SetHidden(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req struct {
		Hidden *bool `json:"hidden" validate:"required"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.SetHidden(r.Context(), id, *req.Hidden); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.DeleteReview(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
