package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-pos/httpx"
	"github.com/diewo77/go-pos/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Sales serves the paid-order summary. ?top=N sizes the best seller list.
func (h *ReportHandler) Sales(w http.ResponseWriter, r *http.Request) {
	top := 0
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fail(w, r, http.StatusBadRequest, services.CodeValidationFailed, map[string]string{"top": "must_be_positive"})
			return
		}
		top = n
	}
	rep, err := h.reports.Sales(r.Context(), top)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rep)
}
