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

type bookRequestRepository struct {
	db *sql.DB
}

func NewBookRequestRepository(db *sql.DB) repository.BookRequestRepository {
	return &bookRequestRepository{db: db}
}

const requestColumns = `id, student_id, faculty_id, book_id, type, status, reason, manager_notes, requested_on, decided_on, decided_by, student_name, student_enrollment, faculty_name, book_title, book_author`

func scanRequest(row interface{ Scan(...interface{}) error }) (*domain.BookRequest, error) {
	req := &domain.BookRequest{}
	err := row.Scan(&req.ID, &req.StudentID, &req.FacultyID, &req.BookID, &req.Type, &req.Status, &req.Reason, &req.ManagerNotes, &req.RequestedOn, &req.DecidedOn, &req.DecidedBy, &req.StudentName, &req.StudentEnrollment, &req.FacultyName, &req.BookTitle, &req.BookAuthor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

func (r *bookRequestRepository) Create(ctx context.Context, req *domain.BookRequest) error {
	// A partial unique index on (student_id, book_id, type) WHERE
	// status = 'pending' backs the one-pending-request rule.
	query := `INSERT INTO book_requests (student_id, faculty_id, book_id, type, status, reason, manager_notes, requested_on, student_name, student_enrollment, faculty_name, book_title, book_author)
	          VALUES ($1, $2, $3, $4, $5, $6, '', $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, req.StudentID, req.FacultyID, req.BookID, req.Type, domain.RequestStatusPending, req.Reason, now, req.StudentName, req.StudentEnrollment, req.FacultyName, req.BookTitle, req.BookAuthor).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	req.Status = domain.RequestStatusPending
	req.RequestedOn = now
	return nil
}

func (r *bookRequestRepository) GetByID(ctx context.Context, id int32) (*domain.BookRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM book_requests WHERE id = $1`
	return scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *bookRequestRepository) GetPendingForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.BookRequest, error) {
	// Locking the pending row makes approve/reject terminal exactly
	// once: a second caller finds no pending row and gets ErrNotFound.
	query := `SELECT ` + requestColumns + ` FROM book_requests WHERE id = $1 AND status = $2 FOR UPDATE`
	return scanRequest(tx.QueryRowContext(ctx, query, id, domain.RequestStatusPending))
}

func (r *bookRequestRepository) Decide(ctx context.Context, tx *sql.Tx, id int32, status domain.RequestStatus, managerID int32, notes string, decidedOn time.Time) error {
	query := `UPDATE book_requests SET status = $1, decided_by = $2, manager_notes = $3, decided_on = $4
	          WHERE id = $5 AND status = $6`
	res, err := tx.ExecContext(ctx, query, status, managerID, notes, decidedOn, id, domain.RequestStatusPending)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrNotFound)
}

func (r *bookRequestRepository) HasPending(ctx context.Context, studentID, bookID int32, reqType domain.RequestType) (bool, error) {
	var count int32
	query := `SELECT count(*) FROM book_requests WHERE student_id = $1 AND book_id = $2 AND type = $3 AND status = $4`
	err := r.db.QueryRowContext(ctx, query, studentID, bookID, reqType, domain.RequestStatusPending).Scan(&count)
	return count > 0, err
}

func (r *bookRequestRepository) ListPending(ctx context.Context, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	return r.list(ctx, `status = $1`, []interface{}{domain.RequestStatusPending}, page, pageSize)
}

func (r *bookRequestRepository) ListByFaculty(ctx context.Context, facultyID int32, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	return r.list(ctx, `faculty_id = $1`, []interface{}{facultyID}, page, pageSize)
}

func (r *bookRequestRepository) list(ctx context.Context, where string, args []interface{}, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	offset := (page - 1) * pageSize

	var count int32
	countQuery := `SELECT count(*) FROM book_requests WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + requestColumns + ` FROM book_requests WHERE ` + where +
		fmt.Sprintf(" ORDER BY requested_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []domain.BookRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, *req)
	}
	return reqs, count, rows.Err()
}
