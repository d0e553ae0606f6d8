package handlers

import (
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type CategoryHandler struct {
	Responder
	Service *services.CategoryService
}

// Tree returns active categories nested under their parents.
func (h *CategoryHandler) Tree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.Service.Tree(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, tree)
}

func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.ListAll(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, categories)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	category, err := h.Service.GetCategory(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, category)
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	category, err := h.Service.CreateCategory(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.created(w, category)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req models.CategoryRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	category, err := h.Service.UpdateCategory(r.Context(), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.DeleteCategory(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
