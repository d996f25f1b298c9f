package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/logger"
	"librental-backend/internal/repository"
)

type requestService struct {
	rentalLifecycle
	db       *sql.DB
	reqRepo  repository.BookRequestRepository
	noteRepo repository.NotificationRepository
	emailSvc EmailService
}

func NewRequestService(
	db *sql.DB,
	reqRepo repository.BookRequestRepository,
	rentalRepo repository.RentalRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) RequestService {
	return &requestService{
		rentalLifecycle: rentalLifecycle{
			rentalRepo: rentalRepo,
			bookRepo:   bookRepo,
			userRepo:   userRepo,
		},
		db:       db,
		reqRepo:  reqRepo,
		noteRepo: noteRepo,
		emailSvc: emailSvc,
	}
}

func (s *requestService) CreateRequest(ctx context.Context, facultyID, studentID, bookID int32, reqType domain.RequestType, reason string) (*domain.BookRequest, error) {
	if reqType != domain.RequestTypeIssue && reqType != domain.RequestTypeReturn {
		return nil, apperr.Validation("Request type must be issue or return")
	}

	faculty, err := s.userRepo.GetByID(ctx, facultyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Faculty not found")
		}
		return nil, apperr.Internal(err)
	}
	if faculty.Role != domain.UserRoleFaculty || faculty.Status != domain.UserStatusActive {
		return nil, apperr.Forbidden("Only faculty can submit book requests")
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Student not found")
		}
		return nil, apperr.Internal(err)
	}
	if student.Role != domain.UserRoleStudent {
		return nil, apperr.Validation("Requests can only be made on behalf of students")
	}
	if student.AssignedFacultyID == nil || *student.AssignedFacultyID != faculty.ID {
		return nil, apperr.Forbidden("Student is not assigned to this faculty")
	}

	book, err := s.bookRepo.GetByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Internal(err)
	}

	switch reqType {
	case domain.RequestTypeIssue:
		if !book.Rentable() {
			return nil, apperr.Conflict("Book is not available")
		}
	case domain.RequestTypeReturn:
		if book.CurrentHolderID == nil || *book.CurrentHolderID != student.ID {
			return nil, apperr.Validation("Student does not currently hold this book")
		}
	}

	pending, err := s.reqRepo.HasPending(ctx, studentID, bookID, reqType)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if pending {
		return nil, apperr.Conflict(fmt.Sprintf("A pending %s request already exists for this student and book", reqType))
	}

	req := &domain.BookRequest{
		StudentID:         student.ID,
		FacultyID:         faculty.ID,
		BookID:            book.ID,
		Type:              reqType,
		Reason:            reason,
		StudentName:       student.Name,
		StudentEnrollment: student.EnrollmentNumber,
		FacultyName:       faculty.Name,
		BookTitle:         book.Title,
		BookAuthor:        book.Author,
	}
	if err := s.reqRepo.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict(fmt.Sprintf("A pending %s request already exists for this student and book", reqType))
		}
		return nil, apperr.Internal(err)
	}

	s.notifyManager(ctx, req)

	return req, nil
}

func (s *requestService) ApproveRequest(ctx context.Context, managerID, requestID int32, notes string) (*domain.BookRequest, error) {
	manager, err := s.requireManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback()

	req, err := s.reqRepo.GetPendingForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Request not found or already processed")
		}
		return nil, apperr.Internal(err)
	}

	now := time.Now()

	switch req.Type {
	case domain.RequestTypeIssue:
		// The request's own snapshots identify student and book;
		// eligibility was the faculty's call at submission time.
		student, err := s.userRepo.GetByIDForUpdate(ctx, tx, req.StudentID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		book, err := s.bookRepo.GetByIDForUpdate(ctx, tx, req.BookID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		// Availability is re-verified at flip time; a lost race leaves
		// the request pending.
		if _, err := s.createRentalTx(ctx, tx, student, book, domain.DefaultRentalDays, now, "Book is no longer available"); err != nil {
			return nil, err
		}
	case domain.RequestTypeReturn:
		rental, err := s.rentalRepo.GetOpenByUserAndBook(ctx, tx, req.StudentID, req.BookID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.NotFound("No active rental found")
			}
			return nil, apperr.Internal(err)
		}
		if err := s.closeRentalTx(ctx, tx, rental, domain.ReturnModeRequestApproved, now); err != nil {
			return nil, err
		}
	}

	if err := s.reqRepo.Decide(ctx, tx, req.ID, domain.RequestStatusApproved, manager.ID, notes, now); err != nil {
		return nil, apperr.Internal(err)
	}

	note := &domain.Notification{
		UserID:  req.FacultyID,
		Title:   "Request Approved",
		Message: fmt.Sprintf("Your %s request for %s (%s) was approved", req.Type, req.BookTitle, req.StudentName),
		Attributes: map[string]string{
			"type":       "REQUEST_APPROVED",
			"request_id": fmt.Sprintf("%d", req.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, tx, note); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}

	req.Status = domain.RequestStatusApproved
	req.DecidedBy = &manager.ID
	req.DecidedOn = &now
	req.ManagerNotes = notes

	s.notifyFacultyDecision(ctx, req, true, notes)

	return req, nil
}

func (s *requestService) RejectRequest(ctx context.Context, managerID, requestID int32, notes string) (*domain.BookRequest, error) {
	manager, err := s.requireManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer tx.Rollback()

	req, err := s.reqRepo.GetPendingForUpdate(ctx, tx, requestID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Request not found or already processed")
		}
		return nil, apperr.Internal(err)
	}

	now := time.Now()
	// Rejection touches nothing but the request row.
	if err := s.reqRepo.Decide(ctx, tx, req.ID, domain.RequestStatusRejected, manager.ID, notes, now); err != nil {
		return nil, apperr.Internal(err)
	}

	note := &domain.Notification{
		UserID:  req.FacultyID,
		Title:   "Request Rejected",
		Message: fmt.Sprintf("Your %s request for %s (%s) was rejected", req.Type, req.BookTitle, req.StudentName),
		Attributes: map[string]string{
			"type":       "REQUEST_REJECTED",
			"request_id": fmt.Sprintf("%d", req.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, tx, note); err != nil {
		return nil, apperr.Internal(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal(err)
	}

	req.Status = domain.RequestStatusRejected
	req.DecidedBy = &manager.ID
	req.DecidedOn = &now
	req.ManagerNotes = notes

	s.notifyFacultyDecision(ctx, req, false, notes)

	return req, nil
}

func (s *requestService) GetRequest(ctx context.Context, id int32) (*domain.BookRequest, error) {
	req, err := s.reqRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Request not found")
		}
		return nil, apperr.Internal(err)
	}
	return req, nil
}

func (s *requestService) ListPendingRequests(ctx context.Context, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	reqs, count, err := s.reqRepo.ListPending(ctx, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return reqs, count, nil
}

func (s *requestService) ListFacultyRequests(ctx context.Context, facultyID int32, page, pageSize int32) ([]domain.BookRequest, int32, error) {
	reqs, count, err := s.reqRepo.ListByFaculty(ctx, facultyID, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return reqs, count, nil
}

// notifyManager tells the active manager about a new pending request.
// Best-effort: failures are logged and never surfaced.
func (s *requestService) notifyManager(ctx context.Context, req *domain.BookRequest) {
	managers, _, err := s.userRepo.List(ctx, domain.UserRoleManager, domain.UserStatusActive, 1, 1)
	if err != nil || len(managers) == 0 {
		logger.Warn("No active manager to notify for request", "request_id", req.ID, "error", err)
		return
	}
	manager := managers[0]

	note := &domain.Notification{
		UserID:  manager.ID,
		Title:   "New Book Request",
		Message: fmt.Sprintf("%s submitted a %s request for %s (%s)", req.FacultyName, req.Type, req.BookTitle, req.StudentName),
		Attributes: map[string]string{
			"type":       "REQUEST_SUBMITTED",
			"request_id": fmt.Sprintf("%d", req.ID),
		},
	}
	if err := s.noteRepo.Create(ctx, nil, note); err != nil {
		logger.Warn("Failed to create manager notification", "request_id", req.ID, "error", err)
	}

	if err := s.emailSvc.SendRequestSubmittedNotification(ctx, manager.Email, req.FacultyName, req.StudentName, req.BookTitle, req.Type); err != nil {
		logger.Warn("Failed to send request submission email", "request_id", req.ID, "error", err)
	}
}

// notifyFacultyDecision emails the requesting faculty after a decision.
// Best-effort: failures are logged and never surfaced.
func (s *requestService) notifyFacultyDecision(ctx context.Context, req *domain.BookRequest, approved bool, notes string) {
	faculty, err := s.userRepo.GetByID(ctx, req.FacultyID)
	if err != nil {
		logger.Warn("Failed to load faculty for decision email", "request_id", req.ID, "error", err)
		return
	}

	if approved {
		err = s.emailSvc.SendRequestApprovedNotification(ctx, faculty.Email, req.StudentName, req.BookTitle, req.Type, notes)
	} else {
		err = s.emailSvc.SendRequestRejectedNotification(ctx, faculty.Email, req.StudentName, req.BookTitle, req.Type, notes)
	}
	if err != nil {
		logger.Warn("Failed to send request decision email", "request_id", req.ID, "error", err)
	}
}
