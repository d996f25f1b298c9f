package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"librental-backend/internal/security"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Auth         *AuthHandler
	Book         *BookHandler
	User         *UserHandler
	Rental       *RentalHandler
	Request      *RequestHandler
	Report       *ReportHandler
	Notification *NotificationHandler
}

// NewRouter builds the full route table. Auth endpoints are public;
// everything else requires a valid access token.
func NewRouter(h Handlers, tokens security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost)

	// Protected routes
	protected := api.NewRoute().Subrouter()
	protected.Use(AuthMiddleware(tokens))

	protected.HandleFunc("/books", h.Book.Search).Methods(http.MethodGet)
	protected.HandleFunc("/books", h.Book.Create).Methods(http.MethodPost)
	protected.HandleFunc("/books/isbn/{isbn}", h.Book.GetByISBN).Methods(http.MethodGet)
	protected.HandleFunc("/books/{id}", h.Book.Get).Methods(http.MethodGet)
	protected.HandleFunc("/books/{id}", h.Book.Update).Methods(http.MethodPut)
	protected.HandleFunc("/books/{id}/status", h.Book.SetStatus).Methods(http.MethodPut)

	protected.HandleFunc("/users", h.User.List).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", h.User.Get).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}", h.User.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{id}/block", h.User.Block).Methods(http.MethodPost)
	protected.HandleFunc("/users/{id}/penalty", h.User.ApplyPenalty).Methods(http.MethodPost)
	protected.HandleFunc("/users/{id}/penalty", h.User.ClearPenalty).Methods(http.MethodDelete)
	protected.HandleFunc("/users/{id}/eligibility", h.Rental.Eligibility).Methods(http.MethodGet)
	protected.HandleFunc("/users/{id}/rentals", h.Rental.ListForUser).Methods(http.MethodGet)

	protected.HandleFunc("/rentals", h.Rental.Assign).Methods(http.MethodPost)
	protected.HandleFunc("/rentals/{id}", h.Rental.Get).Methods(http.MethodGet)
	protected.HandleFunc("/rentals/{id}/return", h.Rental.Return).Methods(http.MethodPost)

	protected.HandleFunc("/requests", h.Request.Create).Methods(http.MethodPost)
	protected.HandleFunc("/requests/pending", h.Request.ListPending).Methods(http.MethodGet)
	protected.HandleFunc("/requests/mine", h.Request.ListMine).Methods(http.MethodGet)
	protected.HandleFunc("/requests/{id}", h.Request.Get).Methods(http.MethodGet)
	protected.HandleFunc("/requests/{id}/approve", h.Request.Approve).Methods(http.MethodPost)
	protected.HandleFunc("/requests/{id}/reject", h.Request.Reject).Methods(http.MethodPost)

	protected.HandleFunc("/reports/dashboard", h.Report.Dashboard).Methods(http.MethodGet)
	protected.HandleFunc("/reports/rentals/today", h.Report.TodaysRentals).Methods(http.MethodGet)
	protected.HandleFunc("/reports/rentals/active", h.Report.ActiveRentals).Methods(http.MethodGet)
	protected.HandleFunc("/reports/rentals/overdue", h.Report.OverdueRentals).Methods(http.MethodGet)
	protected.HandleFunc("/reports/rentals/due-soon", h.Report.DueSoonRentals).Methods(http.MethodGet)

	protected.HandleFunc("/notifications", h.Notification.List).Methods(http.MethodGet)
	protected.HandleFunc("/notifications/{id}/read", h.Notification.MarkAsRead).Methods(http.MethodPost)

	return r
}
