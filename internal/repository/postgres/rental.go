package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, user_id, book_id, issued_on, due_on, returned_on, status, renewal_count, user_name, user_email, enrollment_number, book_title, book_author, book_isbn, created_on, updated_on`

func scanRental(row interface{ Scan(...interface{}) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.UserID, &rt.BookID, &rt.IssuedOn, &rt.DueOn, &rt.ReturnedOn, &rt.Status, &rt.RenewalCount, &rt.UserName, &rt.UserEmail, &rt.EnrollmentNumber, &rt.BookTitle, &rt.BookAuthor, &rt.BookISBN, &rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, tx *sql.Tx, rt *domain.Rental) error {
	query := `INSERT INTO rentals (user_id, book_id, issued_on, due_on, status, renewal_count, user_name, user_email, enrollment_number, book_title, book_author, book_isbn, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, 0, $6, $7, $8, $9, $10, $11, $12, $12) RETURNING id`
	now := time.Now()
	return tx.QueryRowContext(ctx, query, rt.UserID, rt.BookID, rt.IssuedOn, rt.DueOn, rt.Status, rt.UserName, rt.UserEmail, rt.EnrollmentNumber, rt.BookTitle, rt.BookAuthor, rt.BookISBN, now).Scan(&rt.ID)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1 FOR UPDATE`
	return scanRental(tx.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) GetOpenByUserAndBook(ctx context.Context, tx *sql.Tx, userID, bookID int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE user_id = $1 AND book_id = $2 AND status IN ($3, $4) FOR UPDATE`
	return scanRental(tx.QueryRowContext(ctx, query, userID, bookID, domain.RentalStatusActive, domain.RentalStatusOverdue))
}

func (r *rentalRepository) Close(ctx context.Context, tx *sql.Tx, id int32, status domain.RentalStatus, returnedOn time.Time) error {
	query := `UPDATE rentals SET status = $1, returned_on = $2, updated_on = $2
	          WHERE id = $3 AND status IN ($4, $5)`
	res, err := tx.ExecContext(ctx, query, status, returnedOn, id, domain.RentalStatusActive, domain.RentalStatusOverdue)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrUnavailable)
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.Rental, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE user_id = $1`

	args := []interface{}{userID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) ListOpenByDueDate(ctx context.Context, limit int32) ([]domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status IN ($1, $2) ORDER BY due_on ASC LIMIT $3`
	return r.queryRentals(ctx, query, domain.RentalStatusActive, domain.RentalStatusOverdue, limit)
}

func (r *rentalRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Rental, error) {
	// Overdue is open + past due; the stored OVERDUE stamp is included so
	// swept rentals keep showing up.
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status IN ($1, $2) AND due_on < $3 ORDER BY due_on ASC`
	return r.queryRentals(ctx, query, domain.RentalStatusActive, domain.RentalStatusOverdue, now)
}

func (r *rentalRepository) ListDueWithin(ctx context.Context, now time.Time, days int) ([]domain.Rental, error) {
	until := now.AddDate(0, 0, days)
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE status IN ($1, $2) AND due_on >= $3 AND due_on <= $4 ORDER BY due_on ASC`
	return r.queryRentals(ctx, query, domain.RentalStatusActive, domain.RentalStatusOverdue, now, until)
}

func (r *rentalRepository) ListIssuedOn(ctx context.Context, day time.Time) ([]domain.Rental, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE issued_on >= $1 AND issued_on < $2 ORDER BY issued_on DESC`
	return r.queryRentals(ctx, query, start, end)
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...interface{}) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

func (r *rentalRepository) CountByStatus(ctx context.Context) (map[domain.RentalStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, count(*) FROM rentals GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RentalStatus]int32)
	for rows.Next() {
		var status domain.RentalStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *rentalRepository) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE rentals SET status = $1, updated_on = $2
	          WHERE status = $3 AND due_on < $2`
	res, err := r.db.ExecContext(ctx, query, domain.RentalStatusOverdue, now, domain.RentalStatusActive)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
