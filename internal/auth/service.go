package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/money"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

type RepositoryAPI interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	CreateUser(ctx context.Context, u *User, passwordHash string) error
	GetCredentialsByEmail(ctx context.Context, email string) (userID int64, passwordHash string, err error)
	GetUserByID(ctx context.Context, userID int64) (*User, error)
}

type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Register creates an account. The email is normalized before the uniqueness check.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		s.logger.Warn("registration rejected: email taken", "email", dto.Email)
		return nil, internal.ErrEmailTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Name:   dto.Name,
		Email:  dto.Email,
		Budget: money.Round(dto.Budget),
	}
	if err := s.repo.CreateUser(ctx, u, hash); err != nil {
		if errors.Is(err, internal.ErrEmailTaken) {
			return nil, internal.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate returns the same error for an unknown email and a wrong password.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	userID, storedHash, err := s.repo.GetCredentialsByEmail(ctx, validation.NormalizeEmail(dto.Username))
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return TokenResponse{}, internal.ErrInvalidCredentials
		}
		return TokenResponse{}, fmt.Errorf("load credentials: %w", err)
	}

	if err := VerifyPassword(storedHash, dto.Password); err != nil {
		return TokenResponse{}, internal.ErrInvalidCredentials
	}

	accessToken, _, err := s.tokenGenerator.GenerateAccessToken(userID)
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken: accessToken,
		TokenType:   TokenTypeBearer,
	}, nil
}

// ResolveToken maps a bearer token to the user it was issued for. A subject that no
// longer exists is reported as an invalid token.
func (s *Service) ResolveToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, internal.ErrMissingToken
	}

	userID, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return nil, internal.ErrInvalidToken
		}
		return nil, fmt.Errorf("load token subject: %w", err)
	}

	return u, nil
}
