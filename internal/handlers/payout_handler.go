package handlers

import (
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type PayoutHandler struct {
	Responder
	Service *services.PayoutService
	Refunds *services.RefundService
}

// Balances lists payable balances; seller_ids narrows the list.
func (h *PayoutHandler) Balances(w http.ResponseWriter, r *http.Request) {
	ids, err := queryIDs(r, "seller_ids")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	balances, err := h.Service.Balances(r.Context(), ids)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, balances)
}

func (h *PayoutHandler) ListPayouts(w http.ResponseWriter, r *http.Request) {
	f := models.PayoutFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status")}
	var err error
	if f.SellerID, err = queryInt64(r, "seller_id"); err != nil {
		h.handleError(w, r, err)
		return
	}
	payouts, total, err := h.Service.ListPayouts(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, payouts, f.ListParams, total)
}

// Process pays the listed sellers, or every eligible seller when none are given.
func (h *PayoutHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessPayoutsRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.Process(r.Context(), req.SellerIDs)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, res)
}

func (h *PayoutHandler) MyBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.Service.SellerBalance(r.Context(), actorOf(r).UserID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, balance)
}

func (h *PayoutHandler) MyPayouts(w http.ResponseWriter, r *http.Request) {
	sellerID := actorOf(r).UserID
	f := models.PayoutFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status"), SellerID: &sellerID}
	payouts, total, err := h.Service.ListPayouts(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, payouts, f.ListParams, total)
}

func (h *PayoutHandler) ListRefunds(w http.ResponseWriter, r *http.Request) {
	f := models.RefundFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status")}
	var err error
	if f.OrderID, err = queryInt64(r, "order_id"); err != nil {
		h.handleError(w, r, err)
		return
	}
	refunds, total, err := h.Refunds.ListRefunds(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, refunds, f.ListParams, total)
}
