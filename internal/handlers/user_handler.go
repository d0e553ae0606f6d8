package handlers

import (
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type UserHandler struct {
	Responder
	Service *services.UserService
}

type authResponse struct {
	User   models.User   `json:"user"`
	Tokens models.Tokens `json:"tokens"`
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	user, tokens, err := h.Service.SignUp(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.created(w, authResponse{User: user, Tokens: tokens})
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	user, tokens, err := h.Service.SignIn(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, authResponse{User: user, Tokens: tokens})
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	tokens, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, tokens)
}

func (h *UserHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.SignOut(r.Context(), req.RefreshToken); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetProfile(r.Context(), actorOf(r).UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	user, err := h.Service.UpdateProfile(r.Context(), actorOf(r).UserID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, user)
}

func (h *UserHandler) SetPayoutAccount(w http.ResponseWriter, r *http.Request) {
	var req models.PayoutAccountRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.SetPayoutAccount(r.Context(), actorOf(r), req); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	var req models.DeviceTokenRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.RegisterDevice(r.Context(), actorOf(r).UserID, req); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) RemoveDevice(w http.ResponseWriter, r *http.Request) {
	token := getParam(r, "token")
	if token == "" {
		h.handleError(w, r, fieldError(r, "token"))
		return
	}
	if err := h.Service.RemoveDevice(r.Context(), actorOf(r).UserID, token); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Admin endpoints.

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := parseListParams(r)
	f := models.UserFilter{ListParams: p, Role: q.Get("role"), Status: q.Get("status")}
	users, total, err := h.Service.ListUsers(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, users, p, total)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	detail, err := h.Service.GetUserDetail(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, detail)
}

type statusBody struct {
	Action string `json:"action" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// UpdateStatus handles PATCH /admin/users/:id/status.
func (h *UserHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	req, err := h.singleStatus(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.UpdateStatus(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.singleResult(w, r, res)
}

// BulkUpdateStatus handles PATCH /admin/users/status.
func (h *UserHandler) BulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.UpdateStatus(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.bulkResult(w, r, res)
}

func (h *UserHandler) SetVerified(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req struct {
		Verified *bool `json:"verified" validate:"required"`
	}
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.SetVerified(r.Context(), id, *req.Verified); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
