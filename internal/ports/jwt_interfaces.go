package ports

import (
	"context"
	"esign-web-server/internal/model"
	"esign-web-server/internal/security"
)

type JWTRepositoryInterface interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
	MarkRefreshTokenUsedByUUID(ctx context.Context, uuid string) error
	SaveRefreshToken(ctx context.Context, token *model.RefreshToken) error
}

type JWTServiceInterface interface {
	GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error)
	ValidateJWT(tokenString string) (*security.Claims, error)
	// ParseAccessToken : разбирает токен без проверки срока действия (для refresh и logout)
	ParseAccessToken(tokenStr string) (*security.Claims, error)
}
