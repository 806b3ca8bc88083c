package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// ExpenseRepository keeps row-level CRUD on gorm and the aggregates on sqlx.
// Both handles share one pool.
type ExpenseRepository struct {
	db           *gorm.DB
	sqlx         *sqlx.DB
	queryTimeout time.Duration
}

func NewExpenseRepository(db *gorm.DB, sdb *sqlx.DB, queryTimeout time.Duration) *ExpenseRepository {
	return &ExpenseRepository{db: db, sqlx: sdb, queryTimeout: queryTimeout}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := expense.ToDataModel(e)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return internal.ErrInvalidToken.WithCause(err)
		}
		return fmt.Errorf("insert expense: %w", err)
	}

	e.ID = row.ID
	e.CreatedAt = row.CreatedAt
	return nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var row expenseDatamodel.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&row), nil
}

func (r *ExpenseRepository) ListByUserID(ctx context.Context, userID int64, q expense.ListQuery) ([]*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var rows []*expenseDatamodel.Expense
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expense.FromDataModelSlice(rows), nil
}

func (r *ExpenseRepository) Update(ctx context.Context, id int64, mutate func(*expense.Expense) error) (*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var updated *expense.Expense
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockExpense(tx, id)
		if err != nil {
			return err
		}

		e := expense.FromDataModel(row)
		if err := mutate(e); err != nil {
			return err
		}

		next := expense.ToDataModel(e)
		next.ID = row.ID
		next.UserID = row.UserID
		next.CreatedAt = row.CreatedAt
		// Select("*") so zero values (paid=false, cleared columns) are written too.
		if err := tx.Model(next).Select("*").Omit("id", "user_id", "created_at").Updates(next).Error; err != nil {
			return fmt.Errorf("save expense: %w", err)
		}

		updated = expense.FromDataModel(next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64, check func(*expense.Expense) error) (*expense.Expense, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var deleted *expense.Expense
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockExpense(tx, id)
		if err != nil {
			return err
		}

		e := expense.FromDataModel(row)
		if err := check(e); err != nil {
			return err
		}

		if err := tx.Delete(&expenseDatamodel.Expense{}, id).Error; err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		deleted = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func lockExpense(tx *gorm.DB, id int64) (*expenseDatamodel.Expense, error) {
	var row expenseDatamodel.Expense
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &row, nil
}
