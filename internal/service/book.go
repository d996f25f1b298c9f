package service

import (
	"context"
	"errors"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
)

type bookService struct {
	bookRepo repository.BookRepository
	userRepo repository.UserRepository
}

func NewBookService(bookRepo repository.BookRepository, userRepo repository.UserRepository) BookService {
	return &bookService{bookRepo: bookRepo, userRepo: userRepo}
}

func (s *bookService) AddBook(ctx context.Context, managerID int32, book *domain.Book) error {
	if err := s.requireManager(ctx, managerID); err != nil {
		return err
	}
	if book.Title == "" || book.Author == "" {
		return apperr.Validation("Title and author are required")
	}

	book.RentalStatus = domain.BookStatusAvailable
	if err := s.bookRepo.Create(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("A book with this ISBN already exists")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *bookService) GetBook(ctx context.Context, id int32) (*domain.Book, error) {
	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Internal(err)
	}
	return book, nil
}

func (s *bookService) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	if isbn == "" {
		return nil, apperr.Validation("ISBN is required")
	}
	book, err := s.bookRepo.GetByISBN(ctx, isbn)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Internal(err)
	}
	return book, nil
}

func (s *bookService) UpdateBook(ctx context.Context, managerID int32, book *domain.Book) error {
	if err := s.requireManager(ctx, managerID); err != nil {
		return err
	}
	if book.Title == "" || book.Author == "" {
		return apperr.Validation("Title and author are required")
	}

	if _, err := s.bookRepo.GetByID(ctx, book.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return apperr.Internal(err)
	}

	if err := s.bookRepo.Update(ctx, book); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Conflict("A book with this ISBN already exists")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *bookService) SearchBooks(ctx context.Context, query, genre string, status domain.BookStatus, page, pageSize int32) ([]domain.Book, int32, error) {
	books, count, err := s.bookRepo.Search(ctx, query, genre, status, page, pageSize)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return books, count, nil
}

func (s *bookService) SetBookStatus(ctx context.Context, managerID, bookID int32, status domain.BookStatus) error {
	if err := s.requireManager(ctx, managerID); err != nil {
		return err
	}
	if status != domain.BookStatusUnderInvestigation && status != domain.BookStatusLost && status != domain.BookStatusAvailable {
		return apperr.Validation("Status must be AVAILABLE, UNDER_INVESTIGATION or LOST")
	}

	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("Book not found")
		}
		return apperr.Internal(err)
	}

	// A rented book cannot be overridden here; the rental must be closed
	// first so counters stay consistent.
	if err := s.bookRepo.SetStatus(ctx, bookID, status); err != nil {
		if errors.Is(err, repository.ErrUnavailable) {
			return apperr.Conflict("Book is currently rented; close the rental first")
		}
		return apperr.Internal(err)
	}
	return nil
}

func (s *bookService) requireManager(ctx context.Context, managerID int32) error {
	if managerID == 0 {
		return apperr.Validation("Manager id is required")
	}
	manager, err := s.userRepo.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.Forbidden("Only the manager can perform this action")
		}
		return apperr.Internal(err)
	}
	if !manager.IsManager() {
		return apperr.Forbidden("Only the manager can perform this action")
	}
	return nil
}
