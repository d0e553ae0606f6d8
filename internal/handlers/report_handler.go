package handlers

import (
	"fmt"
	"net/http"
	"time"

	"khidmaBack/internal/i18n"
	"khidmaBack/internal/models"
	"khidmaBack/internal/services"
)

const defaultReportDays = 30

type ReportHandler struct {
	Responder
	Service *services.ReportService
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.ok(w, d)
}

// Financial serves the revenue report as JSON or, with format=csv, as a file.
// Both from and to are inclusive calendar days; the last 30 days are the default.
func (h *ReportHandler) Financial(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "from")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	to, err := queryDate(r, "to")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	if to != nil {
		end = *to
	}
	start := end.AddDate(0, 0, -defaultReportDays+1)
	if from != nil {
		start = *from
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		h.handleError(w, r, fieldError(r, "format"))
		return
	}

	req := models.ReportRequest{From: start, To: end.AddDate(0, 0, 1), GroupBy: r.URL.Query().Get("group_by")}
	rep, err := h.Service.Financial(r.Context(), req, i18n.FromContext(r.Context()))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if format != "csv" {
		h.ok(w, rep)
		return
	}

	name := fmt.Sprintf("report_%s_%s.csv", start.Format(dateLayout), end.Format(dateLayout))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := services.WriteCSV(w, rep); err != nil {
		h.Logger.Errorf("write report csv: %v", err)
	}
}
