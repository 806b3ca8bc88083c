package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	userDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/user"
)

type Repository struct {
	db           *gorm.DB
	queryTimeout time.Duration
}

func NewRepository(db *gorm.DB, queryTimeout time.Duration) *Repository {
	return &Repository{
		db:           db,
		queryTimeout: queryTimeout,
	}
}

func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateUser inserts the user and fills in ID and CreatedAt. A unique violation on
// email is returned as internal.ErrEmailTaken.
func (r *Repository) CreateUser(ctx context.Context, u *auth.User, passwordHash string) error {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	row := &userDatamodel.User{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: passwordHash,
		Budget:       u.Budget,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrEmailTaken.WithCause(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}

	u.ID = row.ID
	u.CreatedAt = row.CreatedAt
	return nil
}

func (r *Repository) GetCredentialsByEmail(ctx context.Context, email string) (int64, string, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "password_hash").
		Where("email = ?", email).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, "", internal.ErrUserNotFound
		}
		return 0, "", err
	}
	return row.ID, row.PasswordHash, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	ctx, cancel := internal.WithTimeout(ctx, r.queryTimeout)
	defer cancel()

	var row userDatamodel.User
	err := r.db.WithContext(ctx).
		Select("id", "name", "email", "budget", "created_at").
		Where("id = ?", userID).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return &auth.User{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Budget:    row.Budget,
		CreatedAt: row.CreatedAt,
	}, nil
}
