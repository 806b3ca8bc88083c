package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// One statement, so every figure comes from the same snapshot.
const summaryQuery = `
SELECT
	u.name AS user_name,
	u.budget AS budget,
	COALESCE(SUM(e.amount), 0) AS total_expenses,
	COALESCE(SUM(CASE WHEN e.paid THEN e.amount ELSE 0 END), 0) AS total_paid,
	COUNT(e.id) AS total_count,
	COALESCE(SUM(CASE WHEN e.paid THEN 1 ELSE 0 END), 0) AS paid_count
FROM users u
LEFT JOIN expenses e ON e.user_id = u.id
WHERE u.id = ?
GROUP BY u.id, u.name, u.budget`

const userExistsQuery = `SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`

func (r *ExpenseRepository) Summary(ctx context.Context, userID int64) (*expense.Summary, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var row expenseDatamodel.SummaryRow
	if err := r.sqlx.GetContext(ctx, &row, r.sqlx.Rebind(summaryQuery), userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, internal.ErrUserNotFound
		}
		return nil, fmt.Errorf("summary query: %w", err)
	}
	return expense.NewSummary(&row), nil
}

func (r *ExpenseRepository) UserExists(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var exists bool
	if err := r.sqlx.GetContext(ctx, &exists, r.sqlx.Rebind(userExistsQuery), userID); err != nil {
		return false, fmt.Errorf("user exists query: %w", err)
	}
	return exists, nil
}
