package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/service"
)

type BookHandler struct {
	bookSvc  service.BookService
	validate *validator.Validate
}

func NewBookHandler(bookSvc service.BookService) *BookHandler {
	return &BookHandler{bookSvc: bookSvc, validate: validator.New()}
}

type bookRequest struct {
	Title  string   `json:"title" validate:"required"`
	Author string   `json:"author" validate:"required"`
	ISBN   *string  `json:"isbn,omitempty"`
	Genres []string `json:"genres,omitempty"`
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, err := callerClaims(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("Title and author are required"))
		return
	}

	book := &domain.Book{
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Genres: req.Genres,
	}
	if err := h.bookSvc.AddBook(r.Context(), claims.UserID, book); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, book)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	book, err := h.bookSvc.GetBook(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, book)
}

func (h *BookHandler) GetByISBN(w http.ResponseWriter, r *http.Request) {
	book, err := h.bookSvc.GetBookByISBN(r.Context(), mux.Vars(r)["isbn"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var req bookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("Title and author are required"))
		return
	}

	book := &domain.Book{
		ID:     id,
		Title:  req.Title,
		Author: req.Author,
		ISBN:   req.ISBN,
		Genres: req.Genres,
	}
	if err := h.bookSvc.UpdateBook(r.Context(), claims.UserID, book); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, book)
}

func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := pagination(r)

	books, total, err := h.bookSvc.SearchBooks(r.Context(),
		q.Get("q"), q.Get("genre"), domain.BookStatus(q.Get("status")), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, pagedResponse{Items: books, Total: total, Page: page, PageSize: pageSize})
}

type bookStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=AVAILABLE UNDER_INVESTIGATION LOST"`
}

func (h *BookHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
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

	var req bookStatusRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperr.Validation("Status must be AVAILABLE, UNDER_INVESTIGATION or LOST"))
		return
	}

	if err := h.bookSvc.SetBookStatus(r.Context(), claims.UserID, id, domain.BookStatus(req.Status)); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"status": req.Status})
}
