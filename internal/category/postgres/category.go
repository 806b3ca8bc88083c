package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/expense-tracker/internal"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

const totalsByUserQuery = `
SELECT
	COALESCE(NULLIF(category, ''), 'uncategorized') AS name,
	COALESCE(SUM(amount), 0) AS total,
	COALESCE(SUM(CASE WHEN paid THEN amount ELSE 0 END), 0) AS paid_total,
	COUNT(*) AS count
FROM expenses
WHERE user_id = ?
GROUP BY COALESCE(NULLIF(category, ''), 'uncategorized')
ORDER BY name`

type CategoryRepository struct {
	db           *sqlx.DB
	queryTimeout time.Duration
}

func NewCategoryRepository(db *sqlx.DB, queryTimeout time.Duration) *CategoryRepository {
	return &CategoryRepository{db: db, queryTimeout: queryTimeout}
}

func (r *CategoryRepository) TotalsByUser(ctx context.Context, userID int64) ([]*categoryDatamodel.CategoryTotal, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var rows []*categoryDatamodel.CategoryTotal
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(totalsByUserQuery), userID); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return rows, nil
}
