package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

type RequestHandler struct {
	requestSvc service.RequestService
	validate   *validator.Validate
}

func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc, validate: validator.New()}
}

type createRequestRequest struct {
	StudentID int32  `json:"student_id" validate:"required,gt=0"`
	BookID    int32  `json:"book_id" validate:"required,gt=0"`
	Type      string `json:"type" validate:"required,oneof=issue return"`
	Reason    string `json:"reason" validate:"omitempty,max=500"`
}

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createRequestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("Student id, book id and a type of issue or return are required"))
		return
	}

	request, err := h.requestSvc.CreateRequest(r.Context(), claims.UserID, req.StudentID, req.BookID, domain.RequestType(req.Type), req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, request)
}

type decideRequestRequest struct {
	Notes string `json:"notes" validate:"omitempty,max=500"`
}

func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
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

	var req decideRequestRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	request, err := h.requestSvc.ApproveRequest(r.Context(), claims.UserID, id, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
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

	var req decideRequestRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	request, err := h.requestSvc.RejectRequest(r.Context(), claims.UserID, id, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	request, err := h.requestSvc.GetRequest(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, request)
}

func (h *RequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	requests, total, err := h.requestSvc.ListPendingRequests(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagedResponse{Items: requests, Total: total, Page: page, PageSize: pageSize})
}

func (h *RequestHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}
	page, pageSize := pagination(r)
	requests, total, err := h.requestSvc.ListFacultyRequests(r.Context(), claims.UserID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagedResponse{Items: requests, Total: total, Page: page, PageSize: pageSize})
}
