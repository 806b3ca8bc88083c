package category

import (
	"context"
	"log/slog"

	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

type RepositoryAPI interface {
	// TotalsByUser groups the user's expenses by category, ordered by name.
	TotalsByUser(ctx context.Context, userID int64) ([]*categoryDatamodel.CategoryTotal, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetBreakdown(ctx context.Context, userID int64) ([]Category, error) {
	rows, err := s.repo.TotalsByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get category totals", "user_id", userID, "error", err)
		return nil, err
	}

	categories := FromDataModelSlice(rows)
	s.logger.Debug("retrieved category breakdown", "user_id", userID, "count", len(categories))
	return categories, nil
}
