package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
	"khidmaBack/internal/pay"
	"khidmaBack/internal/validation"
)

const maxBodyBytes = 1 << 20

var (
	errInvalidID   = errors.New("invalid id")
	errInvalidJSON = errors.New("invalid json body")
)

// Logger is the minimal logging interface required by handlers.
type Logger interface {
	Infof(string, ...interface{})
	Errorf(string, ...interface{})
}

// Responder decodes and validates requests and writes the JSON envelope.
type Responder struct {
	Logger    Logger
	Validator *validation.Validator
}

type envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Fields     validation.FieldErrors `json:"fields,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *Responder) ok(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, envelope{Data: data})
}

func (h *Responder) created(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusCreated, envelope{Data: data})
}

func (h *Responder) list(w http.ResponseWriter, data interface{}, p models.ListParams, total int) {
	pg := models.NewPagination(p.Page, p.Limit, total)
	writeJSON(w, http.StatusOK, envelope{Data: data, Pagination: &pg})
}

func (h *Responder) fail(w http.ResponseWriter, r *http.Request, status int, key string) {
	writeJSON(w, status, envelope{Error: i18n.T(i18n.FromContext(r.Context()), key)})
}

// decode reads a JSON body into dst and validates it.
func (h *Responder) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return h.validate(r, dst)
}

func (h *Responder) validate(r *http.Request, v interface{}) error {
	if h.Validator == nil {
		return nil
	}
	return h.Validator.Struct(i18n.FromContext(r.Context()), v)
}

func fieldError(r *http.Request, name string) validation.FieldErrors {
	return validation.FieldErrors{name: i18n.T(i18n.FromContext(r.Context()), "field.invalid")}
}

type errorMapping struct {
	target error
	status int
	key    string
}

var errorMappings = []errorMapping{
	{errInvalidJSON, http.StatusBadRequest, "error.invalid_json"},
	{errInvalidID, http.StatusBadRequest, "error.invalid_id"},
	{pay.ErrInvalidSignature, http.StatusBadRequest, "error.invalid_signature"},

	{models.ErrInvalidCredentials, http.StatusUnauthorized, "error.invalid_credentials"},
	{models.ErrSessionExpired, http.StatusUnauthorized, "error.unauthorized"},
	{models.ErrUserBlocked, http.StatusForbidden, "error.blocked"},
	{models.ErrForbidden, http.StatusForbidden, "error.forbidden"},

	{models.ErrNoRecord, http.StatusNotFound, "error.not_found"},
	{models.ErrUserNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrServiceNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrPackageNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrOrderNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrReviewNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrCategoryNotFound, http.StatusNotFound, "error.not_found"},
	{models.ErrDisputeNotFound, http.StatusNotFound, "error.not_found"},

	{models.ErrDuplicateEmail, http.StatusConflict, "error.duplicate_email"},
	{models.ErrDuplicateSlug, http.StatusConflict, "error.duplicate"},
	{models.ErrAlreadyReviewed, http.StatusConflict, "error.already_reviewed"},
	{models.ErrStatusChanged, http.StatusConflict, "error.conflict"},
	{models.ErrDisputeResolved, http.StatusConflict, "error.dispute_resolved"},

	{models.ErrInvalidTransition, http.StatusBadRequest, "error.invalid_transition"},
	{models.ErrOwnService, http.StatusBadRequest, "error.own_service"},
	{models.ErrServiceNotActive, http.StatusBadRequest, "error.service_inactive"},
	{models.ErrServiceHasOrders, http.StatusBadRequest, "error.service_has_orders"},
	{models.ErrOrderNotCompleted, http.StatusBadRequest, "error.order_not_completed"},
	{models.ErrOrderNotTerminal, http.StatusBadRequest, "error.order_not_terminal"},
	{models.ErrCategoryInUse, http.StatusBadRequest, "error.category_in_use"},
	{models.ErrInvalidAmount, http.StatusBadRequest, "error.invalid_amount"},
	{models.ErrInvalidAction, http.StatusBadRequest, "error.invalid_action"},
	{models.ErrReasonRequired, http.StatusBadRequest, "error.reason_required"},
	{models.ErrNoPayoutAccount, http.StatusBadRequest, "error.no_payout_account"},
	{models.ErrBelowPayoutMinimum, http.StatusBadRequest, "error.below_minimum"},
	{models.ErrTooManyImages, http.StatusBadRequest, "error.too_many_images"},
	{models.ErrInvalidFile, http.StatusBadRequest, "error.invalid_file"},
	{models.ErrInvalidDateRange, http.StatusBadRequest, "error.invalid_date_range"},

	{models.ErrPaymentFailed, http.StatusBadGateway, "error.payment_failed"},
}

// handleError maps domain errors to a status and localized message. Anything
// unknown is logged and reported as a generic 500.
func (h *Responder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.FromContext(r.Context())

	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, envelope{Error: i18n.T(lang, "error.validation"), Fields: fields})
		return
	}
	if errors.Is(err, models.ErrReasonTooShort) {
		writeJSON(w, http.StatusBadRequest, envelope{
			Error:  i18n.T(lang, "error.validation"),
			Fields: validation.FieldErrors{"note": i18n.T(lang, "field.reason_length", models.MinDisputeReasonLength)},
		})
		return
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.fail(w, r, http.StatusRequestEntityTooLarge, "error.bad_request")
		return
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			h.fail(w, r, m.status, m.key)
			return
		}
	}
	switch {
	case isForeignKeyConstraintError(err):
		h.fail(w, r, http.StatusBadRequest, "error.bad_request")
		return
	case isDuplicateKeyError(err):
		h.fail(w, r, http.StatusConflict, "error.duplicate")
		return
	}

	h.Logger.Errorf("%s %s: %v", r.Method, r.URL.RequestURI(), err)
	h.fail(w, r, http.StatusInternalServerError, "error.internal")
}

// bulkResult localizes per-id failure keys.
func (h *Responder) bulkResult(w http.ResponseWriter, r *http.Request, res models.BulkResult) {
	lang := i18n.FromContext(r.Context())
	out := struct {
		Updated []int64          `json:"updated"`
		Failed  map[int64]string `json:"failed,omitempty"`
	}{Updated: res.Updated}
	if len(res.Failed) > 0 {
		out.Failed = make(map[int64]string, len(res.Failed))
		for id, key := range res.Failed {
			out.Failed[id] = i18n.T(lang, key)
		}
	}
	h.ok(w, out)
}

// singleResult answers a one-id bulk action with the status of its outcome.
func (h *Responder) singleResult(w http.ResponseWriter, r *http.Request, res models.BulkResult) {
	for _, key := range res.Failed {
		h.fail(w, r, statusForKey(key), key)
		return
	}
	h.ok(w, res)
}

func statusForKey(key string) int {
	switch key {
	case "error.not_found":
		return http.StatusNotFound
	case "error.forbidden":
		return http.StatusForbidden
	case "error.conflict", "error.dispute_resolved":
		return http.StatusConflict
	case "error.internal":
		return http.StatusInternalServerError
	}
	if strings.HasPrefix(key, "error.") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// singleStatus reads a one-id status body and returns it as a bulk request.
func (h *Responder) singleStatus(w http.ResponseWriter, r *http.Request) (models.BulkStatusRequest, error) {
	id, err := parseID(r, "id")
	if err != nil {
		return models.BulkStatusRequest{}, err
	}
	var body statusBody
	if err := h.decode(w, r, &body); err != nil {
		return models.BulkStatusRequest{}, err
	}
	return models.BulkStatusRequest{IDs: []int64{id}, Action: body.Action, Reason: body.Reason}, nil
}
