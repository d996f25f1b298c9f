package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"librental-backend/internal/apperr"
)

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return int32(id), nil
}

// pagination reads page/page_size query parameters with sane bounds.
func pagination(r *http.Request) (page, pageSize int32) {
	page = 1
	pageSize = 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}

// pagedResponse wraps list results with their total count.
type pagedResponse struct {
	Items    interface{} `json:"items"`
	Total    int32       `json:"total"`
	Page     int32       `json:"page"`
	PageSize int32       `json:"page_size"`
}
