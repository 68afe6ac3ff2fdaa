package ports

import (
	"context"
	"esign-web-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error
}

type UserService interface {
	Register(ctx context.Context, registrationToken, email, password, userAgent, ipAddress string) (*model.TokensPair, error)
	GetCurrentUser(ctx context.Context) (*model.User, error)
	UpdatePassword(ctx context.Context, newPassword string) error
}
