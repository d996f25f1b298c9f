package http

import (
	"net/http"
	"strconv"

	"librental-backend/internal/service"
)

type ReportHandler struct {
	reportSvc service.ReportService
}

func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reportSvc.GetDashboardStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *ReportHandler) TodaysRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.reportSvc.ListTodaysRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rentals)
}

func (h *ReportHandler) ActiveRentals(w http.ResponseWriter, r *http.Request) {
	limit := int32(100)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 && v <= 500 {
		limit = int32(v)
	}
	rentals, err := h.reportSvc.ListActiveRentals(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rentals)
}

func (h *ReportHandler) OverdueRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.reportSvc.ListOverdueRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rentals)
}

func (h *ReportHandler) DueSoonRentals(w http.ResponseWriter, r *http.Request) {
	rentals, err := h.reportSvc.ListDueSoonRentals(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rentals)
}
