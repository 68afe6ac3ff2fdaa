package repository

import (
	"context"
	"errors"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type UserRepository struct {
	*config.Database
}

func NewUserRepository(database *config.Database) *UserRepository {
	return &UserRepository{database}
}

// CreateUser : сохраняет нового владельца, повтор email даёт Conflict
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, email, password_hash)
	VALUES ($1, $2, $3)
	RETURNING uuid, email, created_at
	`

	createdUser := &model.User{}
	err := exec.QueryRowxContext(ctx, query, user.UUID, user.Email, user.PasswordHash).
		Scan(&createdUser.UUID, &createdUser.Email, &createdUser.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, apperror.Wrap(err, apperror.CodeConflict, "User already exists")
		}
		return nil, util.LogError("[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, password_changed_at, created_at FROM users WHERE uuid = $1`
	var user model.User
	if err := sqlx.GetContext(ctx, exec, &user, query, uuid); err != nil {
		return nil, notFoundOr(err, "User not found", "[UserRepo] не удалось найти пользователя в БД")
	}
	return &user, nil
}

// FindByEmail : email сравнивается без учёта регистра
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT uuid, email, password_hash, password_changed_at, created_at FROM users WHERE lower(email) = lower($1)`
	var user model.User
	if err := sqlx.GetContext(ctx, exec, &user, query, email); err != nil {
		return nil, notFoundOr(err, "User not found", "[UserRepo] не удалось найти пользователя по email")
	}
	return &user, nil
}

// UpdatePassword : меняет пароль пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error {
	result, err := exec.ExecContext(ctx, `UPDATE users SET password_hash = $2, password_changed_at = NOW() WHERE uuid = $1`, uuid, newPasswordHash)
	return expectAffected(result, err, apperror.NotFound("User not found"), "[UserRepo] не удалось обновить пароль")
}
