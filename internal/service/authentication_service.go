package service

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/security"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "invalid email or password"

type AuthenticationService struct {
	tx             ports.TxManager
	jwtRepository  ports.JWTRepositoryInterface
	jwtService     ports.JWTServiceInterface
	userRepository ports.UserRepository
	now            func() time.Time
}

func NewAuthenticationService(
	tx ports.TxManager,
	jwtRepository ports.JWTRepositoryInterface,
	jwtService ports.JWTServiceInterface,
	userRepository ports.UserRepository,
) *AuthenticationService {
	return &AuthenticationService{
		tx:             tx,
		jwtRepository:  jwtRepository,
		jwtService:     jwtService,
		userRepository: userRepository,
		now:            utcNow,
	}
}

// Login : неизвестный email и неверный пароль дают одинаковую ошибку
func (s *AuthenticationService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	user, err := s.userRepository.FindByEmail(ctx, s.tx.Executor(), strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotFound {
			return nil, apperror.Unauthenticated(invalidCredentials)
		}
		return nil, err
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, apperror.Unauthenticated(invalidCredentials)
	}

	return s.issue(ctx, user.UUID, userAgent, ipAddress)
}

// RefreshToken обновляет пару токенов.
//  1. Обновить можно только той парой, которая была выдана вместе.
//  2. Смена User-Agent запрещает обновление и гасит refresh-токен.
//  3. Новый IP не запрещает обновление, но попадает в лог.
func (s *AuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	claims, err := s.jwtService.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnauthenticated, "invalid token")
	}

	refreshTokenUUID := claims.RefreshTokenUUID
	stored, err := s.jwtRepository.FindByUUID(ctx, refreshTokenUUID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnauthenticated, "invalid token")
	}

	logger := zap.L().With(zap.String("refresh_token_uuid", refreshTokenUUID))

	if stored.Used {
		logger.Warn("[AuthService] refresh токен уже использован")
		return nil, apperror.Unauthenticated("invalid token")
	}
	if stored.Expired(s.now()) {
		logger.Info("[AuthService] refresh токен просрочен")
		return nil, apperror.Unauthenticated("invalid token")
	}
	if stored.UserUUID != claims.UserUUID {
		logger.Warn("[AuthService] refresh токен принадлежит другому пользователю")
		return nil, apperror.Unauthenticated("invalid token")
	}

	if stored.UserAgent != userAgent {
		if err := s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
			logger.Error("[AuthService] не удалось пометить токен использованным", zap.Error(err))
		}
		logger.Warn("[AuthService] попытка обновления с другого User-Agent")
		return nil, apperror.Unauthenticated("invalid token")
	}

	if stored.IPAddress != ipAddress {
		logger.Warn("[AuthService] обновление токенов с нового IP",
			zap.String("user_uuid", claims.UserUUID),
			zap.String("previous_ip", stored.IPAddress),
			zap.String("ip", ipAddress))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored.TokenHash), []byte(refreshToken)); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnauthenticated, "invalid token")
	}

	if err := s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID); err != nil {
		return nil, err
	}

	return s.issue(ctx, claims.UserUUID, userAgent, ipAddress)
}

// Logout : refresh-токен помечается использованным
func (s *AuthenticationService) Logout(ctx context.Context, refreshTokenUUID string) error {
	return s.jwtRepository.MarkRefreshTokenUsedByUUID(ctx, refreshTokenUUID)
}

func (s *AuthenticationService) issue(ctx context.Context, userUUID, userAgent, ipAddress string) (*model.TokensPair, error) {
	return issueTokens(ctx, s.jwtService, s.jwtRepository, userUUID, userAgent, ipAddress)
}

func issueTokens(ctx context.Context, jwtService ports.JWTServiceInterface, jwtRepository ports.JWTRepositoryInterface, userUUID, userAgent, ipAddress string) (*model.TokensPair, error) {
	tokens, refreshToken, err := jwtService.GenerateAccessRefreshTokens(userUUID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to generate tokens")
	}

	refreshToken.UserAgent = userAgent
	refreshToken.IPAddress = ipAddress

	if err := jwtRepository.SaveRefreshToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	return tokens, nil
}
