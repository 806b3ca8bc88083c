package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/frahmantamala/expense-tracker/internal"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
	userDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/user"
	"github.com/frahmantamala/expense-tracker/internal/user"
)

type UserRepository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewUserRepository(db *gorm.DB, queryTimeout time.Duration) *UserRepository {
	return &UserRepository{db: db, queryTimeout: queryTimeout}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*user.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var row userDatamodel.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&row), nil
}

func (r *UserRepository) Update(ctx context.Context, userID int64, mutate func(*user.User) error) (*user.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var updated *user.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userDatamodel.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return err
		}

		u := user.FromDataModel(&row)
		previousEmail := u.Email
		if err := mutate(u); err != nil {
			return err
		}

		if u.Email != previousEmail {
			var taken int64
			if err := tx.Model(&userDatamodel.User{}).
				Where("email = ? AND id <> ?", u.Email, userID).
				Count(&taken).Error; err != nil {
				return err
			}
			if taken > 0 {
				return internal.ErrEmailTaken
			}
		}

		next := user.ToDataModel(u)
		next.ID = row.ID
		next.CreatedAt = row.CreatedAt
		if err := tx.Save(next).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return internal.ErrEmailTaken.WithCause(err)
			}
			return fmt.Errorf("save user: %w", err)
		}

		updated = user.FromDataModel(next)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes owned expenses explicitly so the cascade holds even where the
// foreign key is not enforced.
func (r *UserRepository) Delete(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row userDatamodel.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").Where("id = ?", userID).Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrUserNotFound
			}
			return err
		}

		res := tx.Where("user_id = ?", userID).Delete(&expenseDatamodel.Expense{})
		if res.Error != nil {
			return fmt.Errorf("delete expenses: %w", res.Error)
		}
		removed = res.RowsAffected

		if err := tx.Delete(&userDatamodel.User{}, userID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
