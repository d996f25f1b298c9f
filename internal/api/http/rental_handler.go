package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	validate  *validator.Validate
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, validate: validator.New()}
}

type assignBookRequest struct {
	UserID     int32 `json:"user_id" validate:"required,gt=0"`
	BookID     int32 `json:"book_id" validate:"required,gt=0"`
	RentalDays int   `json:"rental_days" validate:"omitempty,gt=0,lte=90"`
}

func (h *RentalHandler) Assign(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req assignBookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("User id and book id are required; rental days must be between 1 and 90"))
		return
	}

	rental, err := h.rentalSvc.AssignBook(r.Context(), claims.UserID, req.UserID, req.BookID, req.RentalDays)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, rental)
}

type returnBookRequest struct {
	Mode string `json:"mode" validate:"omitempty,oneof=MANAGER_RETURN AUTO_RETURN LOST_RETURN"`
}

func (h *RentalHandler) Return(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	// The body is optional; an empty one means a plain manager return.
	var req returnBookRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, apperr.Validation("Mode must be MANAGER_RETURN, AUTO_RETURN or LOST_RETURN"))
			return
		}
	}
	mode := domain.ReturnModeManager
	if req.Mode != "" {
		mode = domain.ReturnMode(req.Mode)
	}

	rental, err := h.rentalSvc.ReturnBook(r.Context(), claims.UserID, id, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rental)
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, rental)
}

func (h *RentalHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize := pagination(r)
	status := domain.RentalStatus(r.URL.Query().Get("status"))

	rentals, total, err := h.rentalSvc.ListUserRentals(r.Context(), userID, status, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagedResponse{Items: rentals, Total: total, Page: page, PageSize: pageSize})
}

func (h *RentalHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	eligibility, err := h.rentalSvc.CheckEligibility(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, eligibility)
}
