package expense

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
)

type Repository interface {
	Create(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, id int64) (*Expense, error)
	// ListByUserID returns the owner's expenses newest first.
	ListByUserID(ctx context.Context, userID int64, q ListQuery) ([]*Expense, error)
	// Update locks the row, applies mutate and saves it in one transaction.
	Update(ctx context.Context, id int64, mutate func(*Expense) error) (*Expense, error)
	// Delete locks the row, runs check and removes it in one transaction.
	Delete(ctx context.Context, id int64, check func(*Expense) error) (*Expense, error)
	UserExists(ctx context.Context, userID int64) (bool, error)
	Summary(ctx context.Context, userID int64) (*Summary, error)
}

type Service struct {
	repo   Repository
	events events.Publisher
	logger *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, callerID int64, dto CreateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.UserExists(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		// the token outlived its user
		return nil, internal.ErrInvalidToken
	}

	e := NewExpense(callerID, dto)
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error("failed to create expense", "error", err, "user_id", callerID)
		return nil, err
	}

	s.logger.Info("expense created", "expense_id", e.ID, "user_id", callerID, "amount", e.Amount, "paid", e.Paid)
	s.publish(ctx, events.NewExpenseCreatedEvent(e.ID, e.UserID, e.Amount, e.Paid))
	if e.Paid {
		s.watchBudget(ctx, callerID)
	}
	return e, nil
}

func (s *Service) ListMine(ctx context.Context, callerID int64, q ListQuery) ([]*Expense, error) {
	expenses, err := s.repo.ListByUserID(ctx, callerID, q)
	if err != nil {
		return nil, err
	}
	if expenses == nil {
		expenses = []*Expense{}
	}
	return expenses, nil
}

func (s *Service) Get(ctx context.Context, callerID, id int64) (*Expense, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.OwnedBy(callerID) {
		s.logger.Warn("expense access denied", "expense_id", id, "user_id", callerID)
		return nil, internal.ErrUnauthorizedAccess
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, callerID, id int64, dto UpdateExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	e, err := s.repo.Update(ctx, id, func(e *Expense) error {
		if !e.OwnedBy(callerID) {
			return internal.ErrUnauthorizedAccess
		}
		dto.Apply(e)
		return nil
	})
	if err != nil {
		s.logDenied(err, id, callerID)
		return nil, err
	}

	s.logger.Info("expense updated", "expense_id", id, "user_id", callerID)
	s.publish(ctx, events.NewExpenseUpdatedEvent(e.ID, e.UserID, e.Amount, e.Paid))
	if e.Paid {
		s.watchBudget(ctx, callerID)
	}
	return e, nil
}

func (s *Service) TogglePaid(ctx context.Context, callerID, id int64) (*Expense, error) {
	e, err := s.repo.Update(ctx, id, func(e *Expense) error {
		if !e.OwnedBy(callerID) {
			return internal.ErrUnauthorizedAccess
		}
		e.TogglePaid()
		return nil
	})
	if err != nil {
		s.logDenied(err, id, callerID)
		return nil, err
	}

	s.logger.Info("expense paid toggled", "expense_id", id, "user_id", callerID, "paid", e.Paid)
	s.publish(ctx, events.NewExpensePaidToggledEvent(e.ID, e.UserID, e.Amount, e.Paid))
	if e.Paid {
		s.watchBudget(ctx, callerID)
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, callerID, id int64) error {
	e, err := s.repo.Delete(ctx, id, func(e *Expense) error {
		if !e.OwnedBy(callerID) {
			return internal.ErrUnauthorizedAccess
		}
		return nil
	})
	if err != nil {
		s.logDenied(err, id, callerID)
		return err
	}

	s.logger.Info("expense deleted", "expense_id", id, "user_id", callerID)
	s.publish(ctx, events.NewExpenseDeletedEvent(e.ID, e.UserID, e.Amount, e.Paid))
	return nil
}

func (s *Service) Summary(ctx context.Context, callerID int64) (*Summary, error) {
	summary, err := s.repo.Summary(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// watchBudget announces budget.exceeded once paid spending passes the budget.
// Failures are logged and never reach the caller.
func (s *Service) watchBudget(ctx context.Context, userID int64) {
	if s.events == nil {
		return
	}
	summary, err := s.repo.Summary(ctx, userID)
	if err != nil {
		s.logger.Error("failed to compute summary for budget check", "user_id", userID, "error", err)
		return
	}
	if !summary.OverBudget() {
		return
	}
	s.publish(ctx, events.NewBudgetExceededEvent(userID, summary.User, summary.Budget, summary.TotalPaid, summary.RemainingBudget))
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}

func (s *Service) logDenied(err error, expenseID, callerID int64) {
	if errors.Is(err, internal.ErrUnauthorizedAccess) {
		s.logger.Warn("expense access denied", "expense_id", expenseID, "user_id", callerID)
	}
}
