package security

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"esign-web-server/config"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

const issuer = "esign-web-server"

var ErrUnauthorized = errors.New("пользователь не авторизован")

type Claims struct {
	UserUUID         string `json:"user_uuid"`
	RefreshTokenUUID string `json:"refresh_token_id"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secretKey       []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	accessTTL, err := time.ParseDuration(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("некорректный access_token_ttl: %w", err)
	}
	refreshTTL, err := time.ParseDuration(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("некорректный refresh_token_ttl: %w", err)
	}

	return &JWTService{
		secretKey:       []byte(cfg.SecretKey),
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
	}, nil
}

func (service *JWTService) GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error) {
	refreshToken, refreshTokenStr, err := GenerateRefreshToken()
	if err != nil {
		return nil, nil, util.LogError("ошибка генерации рефреш токена", err)
	}

	now := time.Now()
	refreshToken.UserUUID = userUUID
	refreshToken.ExpireAt = now.Add(service.refreshTokenTTL)

	claims := Claims{
		UserUUID:         userUUID,
		RefreshTokenUUID: refreshToken.UUID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(service.accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString(service.secretKey)
	if err != nil {
		return nil, nil, util.LogError("ошибка подписи токена", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenStr,
	}, refreshToken, nil
}

func GenerateRefreshToken() (*model.RefreshToken, string, error) {
	jwtTokenBytes := make([]byte, 32)
	_, err := rand.Read(jwtTokenBytes)
	if err != nil {
		return nil, "", util.LogError("ошибка генерации", err)
	}
	refreshTokenStr := base64.StdEncoding.EncodeToString(jwtTokenBytes)

	hashedToken, err := bcrypt.GenerateFromPassword([]byte(refreshTokenStr), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", util.LogError("ошибка хэширования", err)
	}

	// refreshTokenStr отдается клиенту
	// hashedToken сохраняется в БД
	return &model.RefreshToken{
		UUID:      uuid.New().String(),
		TokenHash: string(hashedToken),
		Used:      false,
	}, refreshTokenStr, nil
}

func (service *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if token.Method.Alg() != jwt.SigningMethodHS512.Alg() {
		return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
	}
	return service.secretKey, nil
}

// ValidateJWT : проверяет подпись и срок действия
func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, service.keyFunc, jwt.WithIssuer(issuer))
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if !jwtToken.Valid {
		return nil, errors.New("невалидный токен")
	}

	return claims, nil
}

// ParseAccessToken : проверяет подпись, но принимает истёкший токен
func (service *JWTService) ParseAccessToken(jwtTokenStr string) (*Claims, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(jwtTokenStr, claims, service.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if claims.UserUUID == "" || claims.RefreshTokenUUID == "" {
		return nil, errors.New("в токене нет обязательных полей")
	}

	return claims, nil
}

// RefreshTokenFinder : хранилище refresh токенов для проверки, что сессия не завершена
type RefreshTokenFinder interface {
	FindByUUID(ctx context.Context, uuid string) (*model.RefreshToken, error)
}

func JWTMiddleware(jwtService *JWTService, refreshTokens RefreshTokenFinder) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, refreshTokens, next))
	}
}

func handleAuthentication(jwtService *JWTService, refreshTokens RefreshTokenFinder, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			util.HandleError(writer, "authentication required", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := jwtService.ValidateJWT(token)
		if err != nil {
			zap.L().Debug("невалидный токен", zap.Error(err))
			util.HandleError(writer, "authentication required", http.StatusUnauthorized)
			return
		}

		refreshToken, err := refreshTokens.FindByUUID(request.Context(), claims.RefreshTokenUUID)
		if err != nil {
			zap.L().Debug("рефреш токен не найден", zap.String("refresh_token_uuid", claims.RefreshTokenUUID), zap.Error(err))
			util.HandleError(writer, "authentication required", http.StatusUnauthorized)
			return
		}

		if refreshToken.Used {
			zap.L().Debug("рефреш токен был использован", zap.String("refresh_token_uuid", claims.RefreshTokenUUID))
			util.HandleError(writer, "authentication required", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(writer, request.WithContext(WithClaims(request.Context(), claims)))
	}
}

func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil || claims.UserUUID == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}
