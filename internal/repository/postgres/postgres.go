package postgres

import (
	"context"
	"database/sql"

	"librental-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.BookRepository
	repository.RentalRepository
	repository.BookRequestRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		BookRepository:         NewBookRepository(db),
		RentalRepository:       NewRentalRepository(db),
		BookRequestRepository:  NewBookRequestRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// BeginTx starts the transaction that scopes one mutating core operation.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// runner is the common surface of *sql.DB and *sql.Tx used by methods
// that optionally join a caller transaction.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}
