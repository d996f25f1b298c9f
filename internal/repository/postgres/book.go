package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"

	"github.com/lib/pq"
)

type bookRepository struct {
	db *sql.DB
}

func NewBookRepository(db *sql.DB) repository.BookRepository {
	return &bookRepository{db: db}
}

const bookColumns = `id, isbn, title, author, genres, rental_status, current_rental_id, current_holder_id, total_rentals, last_rented_on, created_on, updated_on`

func scanBook(row interface{ Scan(...interface{}) error }) (*domain.Book, error) {
	b := &domain.Book{}
	err := row.Scan(&b.ID, &b.ISBN, &b.Title, &b.Author, pq.Array(&b.Genres), &b.RentalStatus, &b.CurrentRentalID, &b.CurrentHolderID, &b.TotalRentals, &b.LastRentedOn, &b.CreatedOn, &b.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `INSERT INTO books (isbn, title, author, genres, rental_status, total_rentals, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, 0, $6, $6) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, b.ISBN, b.Title, b.Author, pq.Array(b.Genres), b.RentalStatus, now).Scan(&b.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	b.CreatedOn = now
	b.UpdatedOn = now
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`
	return scanBook(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1 FOR UPDATE`
	return scanBook(tx.QueryRowContext(ctx, query, id))
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE isbn = $1`
	return scanBook(r.db.QueryRowContext(ctx, query, isbn))
}

func (r *bookRepository) Update(ctx context.Context, b *domain.Book) error {
	query := `UPDATE books SET isbn=$1, title=$2, author=$3, genres=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, b.ISBN, b.Title, b.Author, pq.Array(b.Genres), time.Now(), b.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
	}
	return err
}

func (r *bookRepository) SetStatus(ctx context.Context, id int32, status domain.BookStatus) error {
	// Status overrides apply only while no open rental references the book.
	query := `UPDATE books SET rental_status=$1, updated_on=$2 WHERE id=$3 AND current_rental_id IS NULL`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrUnavailable)
}

func (r *bookRepository) MarkRented(ctx context.Context, tx *sql.Tx, bookID, rentalID, holderID int32, now time.Time) error {
	// The availability check and the flip are one conditional write, so
	// two concurrent rent attempts cannot both succeed.
	query := `UPDATE books
	          SET rental_status = $1, current_rental_id = $2, current_holder_id = $3,
	              total_rentals = total_rentals + 1, last_rented_on = $4, updated_on = $4
	          WHERE id = $5 AND rental_status = $6`
	res, err := tx.ExecContext(ctx, query, domain.BookStatusRented, rentalID, holderID, now, bookID, domain.BookStatusAvailable)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrUnavailable)
}

func (r *bookRepository) Release(ctx context.Context, tx *sql.Tx, bookID int32, status domain.BookStatus) error {
	query := `UPDATE books
	          SET rental_status = $1, current_rental_id = NULL, current_holder_id = NULL, updated_on = $2
	          WHERE id = $3`
	res, err := tx.ExecContext(ctx, query, status, time.Now(), bookID)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrNotFound)
}

func (r *bookRepository) Search(ctx context.Context, query, genre string, status domain.BookStatus, page, pageSize int32) ([]domain.Book, int32, error) {
	offset := (page - 1) * pageSize
	sqlQuery := `SELECT ` + bookColumns + ` FROM books WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if query != "" {
		sqlQuery += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+query+"%")
		argIdx++
	}
	if genre != "" {
		sqlQuery += fmt.Sprintf(" AND $%d = ANY(genres)", argIdx)
		args = append(args, genre)
		argIdx++
	}
	if status != "" {
		sqlQuery += fmt.Sprintf(" AND rental_status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + sqlQuery + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	sqlQuery += fmt.Sprintf(" ORDER BY title LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		books = append(books, *b)
	}
	return books, count, rows.Err()
}

func (r *bookRepository) CountByStatus(ctx context.Context) (map[domain.BookStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT rental_status, count(*) FROM books GROUP BY rental_status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.BookStatus]int32)
	for rows.Next() {
		var status domain.BookStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
