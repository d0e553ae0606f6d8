package handlers

import (
	"io"
	"net/http"
	"time"

	"khidmaBack/internal/fsm"
	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/services"
)

const maxWebhookBytes = 64 << 10

type OrderHandler struct {
	Responder
	Service *services.OrderService
}

func (h *OrderHandler) orderFilter(r *http.Request) (models.OrderFilter, error) {
	f := models.OrderFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status")}
	if f.Status != "" && !fsm.Valid(f.Status) {
		return f, fieldError(r, "status")
	}
	var err error
	if f.BuyerID, err = queryInt64(r, "buyer_id"); err != nil {
		return f, err
	}
	if f.SellerID, err = queryInt64(r, "seller_id"); err != nil {
		return f, err
	}
	if f.ServiceID, err = queryInt64(r, "service_id"); err != nil {
		return f, err
	}
	if f.From, err = queryDate(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		return f, err
	}
	if f.To != nil {
		end := f.To.Add(24 * time.Hour)
		f.To = &end
	}
	return f, nil
}

// PlaceOrder creates a PENDING order and returns the payment client secret.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	resp, err := h.Service.PlaceOrder(r.Context(), actorOf(r), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.created(w, resp)
}

// ListMine lists the caller's orders; as=seller switches to sales.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	f, err := h.orderFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	asSeller := r.URL.Query().Get("as") == models.RoleSeller
	orders, total, err := h.Service.ListMine(r.Context(), actorOf(r), asSeller, f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, orders, f.ListParams, total)
}

func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	detail, err := h.Service.GetOrderDetail(r.Context(), actorOf(r), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, detail)
}

// ChangeStatus serves both participants and admins for a single order.
func (h *OrderHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	var req models.OrderStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	order, err := h.Service.ChangeStatus(r.Context(), actorOf(r), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, order)
}

func (h *OrderHandler) BulkChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.BulkChangeStatus(r.Context(), actorOf(r), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.bulkResult(w, r, res)
}

func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	f, err := h.orderFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	orders, total, err := h.Service.ListAll(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, orders, f.ListParams, total)
}

func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.DeleteOrder(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Webhook receives payment processor events. The raw body is needed for the
// signature check, so it is not decoded here.
func (h *OrderHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
	if err != nil {
		h.handleError(w, r, errInvalidJSON)
		return
	}
	if err := h.Service.HandleWebhook(r.Context(), body, r.Header.Get(pay.SignatureHeader)); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, map[string]bool{"received": true})
}
