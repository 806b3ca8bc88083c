package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*User, error)
	// Update locks the row, applies mutate and saves it in one transaction.
	Update(ctx context.Context, userID int64, mutate func(*User) error) (*User, error)
	// Delete removes the user and every owned expense in one transaction.
	Delete(ctx context.Context, userID int64) (expensesRemoved int64, err error)
}

type Service struct {
	repo       Repository
	events     events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:       repo,
		events:     publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateSelf(ctx context.Context, userID int64, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	// Hash before the transaction so the row lock is not held across bcrypt.
	var hash string
	if dto.Password.Present() {
		h, err := auth.HashPassword(dto.Password.Value, s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	u, err := s.repo.Update(ctx, userID, func(u *User) error {
		dto.Apply(u, hash)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "user_id", userID)
	return u, nil
}

func (s *Service) DeleteSelf(ctx context.Context, userID int64) error {
	removed, err := s.repo.Delete(ctx, userID)
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID, "expenses_removed", removed)
	if s.events != nil {
		if err := s.events.Publish(ctx, events.NewUserDeletedEvent(userID, removed)); err != nil {
			s.logger.Error("failed to publish user deleted event", "user_id", userID, "error", err)
		}
	}
	return nil
}
