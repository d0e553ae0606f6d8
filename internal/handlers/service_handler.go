package handlers

import (
	"net/http"

	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

type ServiceHandler struct {
	Responder
	Service *services.ServiceService
}

var publicSorts = map[string]bool{"newest": true, "price_asc": true, "price_desc": true, "rating": true}

func (h *ServiceHandler) serviceFilter(r *http.Request) (models.ServiceFilter, error) {
	f := models.ServiceFilter{ListParams: parseListParams(r), Status: r.URL.Query().Get("status")}
	if f.Sort != "" && !publicSorts[f.Sort] {
		return f, fieldError(r, "sort")
	}
	var err error
	if f.CategoryID, err = queryInt64(r, "category_id"); err != nil {
		return f, err
	}
	if f.SellerID, err = queryInt64(r, "seller_id"); err != nil {
		return f, err
	}
	if f.MinPrice, err = queryInt64(r, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = queryInt64(r, "max_price"); err != nil {
		return f, err
	}
	if f.Featured, err = queryBool(r, "featured"); err != nil {
		return f, err
	}
	return f, nil
}

// ListServices is the public catalogue of approved listings.
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	f, err := h.serviceFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	items, total, err := h.Service.ListPublic(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, items, f.ListParams, total)
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	svc, err := h.Service.GetService(r.Context(), viewerOf(r), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, svc)
}

func (h *ServiceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	f, err := h.serviceFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	items, total, err := h.Service.ListMine(r.Context(), actorOf(r).UserID, f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, items, f.ListParams, total)
}

// readServiceRequest accepts either a JSON body or a multipart form with a
// "payload" JSON field and "images" files.
func (h *ServiceHandler) readServiceRequest(w http.ResponseWriter, r *http.Request) (models.ServiceRequest, []uploadedFile, error) {
	var req models.ServiceRequest
	if !isMultipart(r) {
		return req, nil, h.decode(w, r, &req)
	}
	r.Body = http.MaxBytesReader(w, r.Body, 11*maxImageBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return req, nil, errInvalidJSON
	}
	if err := decodeFormPayload(r.MultipartForm, &req); err != nil {
		return req, nil, err
	}
	if err := h.validate(r, &req); err != nil {
		return req, nil, err
	}
	files, err := readImageFiles(collectImageFiles(r.MultipartForm, "images", "images[]"))
	return req, files, err
}

func (h *ServiceHandler) uploadAll(r *http.Request, svc models.Service, files []uploadedFile) (models.Service, error) {
	for _, f := range files {
		updated, err := h.Service.UploadImage(r.Context(), actorOf(r), svc.ID, f.Name, f.Data)
		if err != nil {
			return svc, err
		}
		svc.Images = updated.Images
	}
	return svc, nil
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	req, files, err := h.readServiceRequest(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	svc, err := h.Service.CreateService(r.Context(), actorOf(r).UserID, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if svc, err = h.uploadAll(r, svc, files); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.created(w, svc)
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	req, files, err := h.readServiceRequest(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	svc, err := h.Service.UpdateService(r.Context(), actorOf(r), id, req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if svc, err = h.uploadAll(r, svc, files); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, svc)
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.DeleteService(r.Context(), actorOf(r), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadImages appends multipart "images" files to an existing listing.
func (h *ServiceHandler) UploadImages(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, 11*maxImageBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.handleError(w, r, models.ErrInvalidFile)
		return
	}
	files, err := readImageFiles(collectImageFiles(r.MultipartForm, "images", "images[]"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if len(files) == 0 {
		h.handleError(w, r, models.ErrInvalidFile)
		return
	}
	svc, err := h.uploadAll(r, models.Service{ID: id}, files)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, svc.Images)
}

func (h *ServiceHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		h.handleError(w, r, fieldError(r, "path"))
		return
	}
	svc, err := h.Service.RemoveImage(r.Context(), actorOf(r), id, path)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, svc.Images)
}

// Admin endpoints.

func (h *ServiceHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	f, err := h.serviceFilter(r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	items, total, err := h.Service.ListAdmin(r.Context(), f)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.list(w, items, f.ListParams, total)
}

func (h *ServiceHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	admin := actorOf(r)
	svc, err := h.Service.GetService(r.Context(), &admin, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, svc)
}

func (h *ServiceHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	req, err := h.singleStatus(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.Moderate(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.singleResult(w, r, res)
}

func (h *ServiceHandler) BulkModerate(w http.ResponseWriter, r *http.Request) {
	var req models.BulkStatusRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	res, err := h.Service.Moderate(r.Context(), req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.bulkResult(w, r, res)
}

func (h *ServiceHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if err := h.Service.AdminDelete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
