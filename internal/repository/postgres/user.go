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

const uniqueViolation = "23505"

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, enrollment_number, role, account_status, status, active_rentals, total_rentals, penalty_until, assigned_faculty_id, created_on, updated_on`

func scanUser(row interface{ Scan(...interface{}) error }) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.EnrollmentNumber, &u.Role, &u.AccountStatus, &u.Status, &u.ActiveRentals, &u.TotalRentals, &u.PenaltyUntil, &u.AssignedFacultyID, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Exactly one active manager may exist. The check shares the insert's
	// transaction so two concurrent manager signups cannot both pass.
	if u.Role == domain.UserRoleManager {
		var count int32
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM users WHERE role = $1 AND status = $2`,
			domain.UserRoleManager, domain.UserStatusActive).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			return repository.ErrDuplicate
		}
	}

	query := `INSERT INTO users (email, password_hash, name, enrollment_number, role, account_status, status, active_rentals, total_rentals, penalty_until, assigned_faculty_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8, $9, $10, $10) RETURNING id`
	now := time.Now()
	err = tx.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.EnrollmentNumber, u.Role, u.AccountStatus, u.Status, u.PenaltyUntil, u.AssignedFacultyID, now).Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
		return err
	}
	u.CreatedOn = now
	u.UpdatedOn = now
	return tx.Commit()
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, tx *sql.Tx, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, name=$2, enrollment_number=$3, assigned_faculty_id=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.EnrollmentNumber, u.AssignedFacultyID, time.Now(), u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return repository.ErrDuplicate
		}
	}
	return err
}

func (r *userRepository) SetAccountStatus(ctx context.Context, id int32, status domain.AccountStatus, penaltyUntil *time.Time) error {
	query := `UPDATE users SET account_status=$1, penalty_until=$2, updated_on=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, status, penaltyUntil, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrNotFound)
}

func (r *userRepository) SetStatus(ctx context.Context, id int32, status domain.UserStatus) error {
	query := `UPDATE users SET status=$1, updated_on=$2 WHERE id=$3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrNotFound)
}

func (r *userRepository) AdjustRentalCounts(ctx context.Context, tx *sql.Tx, id int32, activeDelta, totalDelta int32) error {
	query := `UPDATE users SET active_rentals = active_rentals + $1, total_rentals = total_rentals + $2, updated_on = $3 WHERE id = $4`
	res, err := tx.ExecContext(ctx, query, activeDelta, totalDelta, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRowsAffected(res, repository.ErrNotFound)
}

func (r *userRepository) List(ctx context.Context, role domain.UserRole, status domain.UserStatus, page, pageSize int32) ([]domain.User, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if role != "" {
		query += fmt.Sprintf(" AND role = $%d", argIdx)
		args = append(args, role)
		argIdx++
	}
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

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *u)
	}
	return users, count, rows.Err()
}

func (r *userRepository) CountByRole(ctx context.Context) (map[domain.UserRole]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role, count(*) FROM users WHERE status != $1 GROUP BY role`, domain.UserStatusDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.UserRole]int32)
	for rows.Next() {
		var role domain.UserRole
		var n int32
		if err := rows.Scan(&role, &n); err != nil {
			return nil, err
		}
		counts[role] = n
	}
	return counts, rows.Err()
}

func (r *userRepository) CountByAccountStatus(ctx context.Context) (map[domain.AccountStatus]int32, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT account_status, count(*) FROM users WHERE status != $1 GROUP BY account_status`, domain.UserStatusDeleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.AccountStatus]int32)
	for rows.Next() {
		var status domain.AccountStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func requireRowsAffected(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
