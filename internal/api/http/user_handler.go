package http

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

type UserHandler struct {
	userSvc  service.UserService
	validate *validator.Validate
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc, validate: validator.New()}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := h.userSvc.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := pagination(r)

	users, total, err := h.userSvc.ListUsers(r.Context(),
		domain.UserRole(q.Get("role")), domain.UserStatus(q.Get("status")), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagedResponse{Items: users, Total: total, Page: page, PageSize: pageSize})
}

type blockUserRequest struct {
	Block  bool   `json:"block"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request) {
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

	var req blockUserRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.userSvc.BlockUser(r.Context(), claims.UserID, id, req.Block, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"blocked": req.Block})
}

type penaltyRequest struct {
	Until  string `json:"until" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

func (h *UserHandler) ApplyPenalty(w http.ResponseWriter, r *http.Request) {
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

	var req penaltyRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("A penalty end date is required"))
		return
	}
	until, err := time.Parse("2006-01-02", req.Until)
	if err != nil {
		writeError(w, apperr.Validation("Until must be a date in YYYY-MM-DD format"))
		return
	}

	if err := h.userSvc.ApplyPenalty(r.Context(), claims.UserID, id, until, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"penalty_until": req.Until})
}

func (h *UserHandler) ClearPenalty(w http.ResponseWriter, r *http.Request) {
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

	if err := h.userSvc.ClearPenalty(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"account_status": string(domain.AccountStatusActive)})
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.userSvc.DeleteUser(r.Context(), claims.UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}
