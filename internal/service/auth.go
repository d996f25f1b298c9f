package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"librental-backend/internal/apperr"
	"librental-backend/internal/domain"
	"librental-backend/internal/repository"
	"librental-backend/internal/security"
)

type authService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens}
}

func (s *authService) Register(ctx context.Context, params RegisterParams) (*domain.User, error) {
	params.Email = strings.TrimSpace(strings.ToLower(params.Email))
	if params.Name == "" || params.Email == "" || params.Password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	if len(params.Password) < 8 {
		return nil, apperr.Validation("Password must be at least 8 characters")
	}

	switch params.Role {
	case domain.UserRoleStudent:
		if params.AssignedFacultyID == nil {
			return nil, apperr.Validation("Students must be assigned to a faculty")
		}
		faculty, err := s.userRepo.GetByID(ctx, *params.AssignedFacultyID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperr.Validation("Assigned faculty not found")
			}
			return nil, apperr.Internal(err)
		}
		if faculty.Role != domain.UserRoleFaculty || faculty.Status != domain.UserStatusActive {
			return nil, apperr.Validation("Assigned faculty must be an active faculty user")
		}
	case domain.UserRoleFaculty, domain.UserRoleManager:
		if params.AssignedFacultyID != nil {
			return nil, apperr.Validation("Only students can have an assigned faculty")
		}
	default:
		return nil, apperr.Validation("Role must be student, faculty or manager")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &domain.User{
		Email:             params.Email,
		PasswordHash:      string(hash),
		Name:              params.Name,
		EnrollmentNumber:  params.EnrollmentNumber,
		Role:              params.Role,
		AccountStatus:     domain.AccountStatusActive,
		Status:            domain.UserStatusActive,
		AssignedFacultyID: params.AssignedFacultyID,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if params.Role == domain.UserRoleManager {
				return nil, apperr.Conflict("An active manager already exists")
			}
			return nil, apperr.Conflict("A user with this email or enrollment number already exists")
		}
		return nil, apperr.Internal(err)
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation("Invalid email or password")
		}
		return nil, apperr.Internal(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperr.Forbidden("Your account is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Validation("Invalid email or password")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err == nil {
		err = claims.RequireType(security.TokenTypeRefresh)
	}
	if err != nil {
		return "", "", apperr.Forbidden("Invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", apperr.Forbidden("Invalid refresh token")
		}
		return "", "", apperr.Internal(err)
	}
	if user.Status != domain.UserStatusActive {
		return "", "", apperr.Forbidden("Your account is inactive")
	}

	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	return access, refresh, nil
}
