package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	appErrors "github.com/unclebandit/mailing-backend/internal/errors"
	"github.com/unclebandit/mailing-backend/internal/model"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type UserRepository struct {
	DB *sql.DB
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	query := `SELECT id, email, is_active, is_manager FROM users WHERE id=$1`
	var u model.User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.IsActive, &u.IsManager)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewUserNotFound(id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return &u, nil
}

func (r *UserRepository) SetActive(ctx context.Context, id int, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET is_active=$1 WHERE id=$2`, active, id)
	if err != nil {
		return fmt.Errorf("update user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.NewUserNotFound(id)
	}
	return nil
}

var _ UserRepositoryInterface = (*UserRepository)(nil)
