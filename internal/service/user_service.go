package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/security"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService struct {
	tx             ports.TxManager
	userRepository ports.UserRepository
	jwtService     ports.JWTServiceInterface
	jwtRepository  ports.JWTRepositoryInterface
	admin          *config.AdminConfig
}

func NewUserService(
	tx ports.TxManager,
	userRepository ports.UserRepository,
	jwtService ports.JWTServiceInterface,
	jwtRepository ports.JWTRepositoryInterface,
	admin *config.AdminConfig,
) *UserService {
	return &UserService{
		tx:             tx,
		userRepository: userRepository,
		jwtService:     jwtService,
		jwtRepository:  jwtRepository,
		admin:          admin,
	}
}

// Register : регистрация владельца документов. Если задан admin.registration_token,
// без него регистрация закрыта
func (s *UserService) Register(ctx context.Context, registrationToken, email, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	if s.admin != nil && s.admin.RegistrationToken != "" &&
		subtle.ConstantTimeCompare([]byte(registrationToken), []byte(s.admin.RegistrationToken)) != 1 {
		return nil, apperror.Forbidden("invalid registration token")
	}

	address, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || address.Address != strings.TrimSpace(email) {
		return nil, apperror.InvalidInput("invalid email")
	}

	if err := validatePassword(password); err != nil {
		return nil, apperror.InvalidInput(err.Error())
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to hash password")
	}

	user := &model.User{
		UUID:         uuid.New().String(),
		Email:        strings.ToLower(address.Address),
		PasswordHash: hash,
	}

	created, err := s.userRepository.CreateUser(ctx, s.tx.Executor(), user)
	if err != nil {
		return nil, err
	}

	zap.L().Info("[UserService] зарегистрирован пользователь", zap.String("user_uuid", created.UUID))

	return issueTokens(ctx, s.jwtService, s.jwtRepository, created.UUID, userAgent, ipAddress)
}

func (s *UserService) GetCurrentUser(ctx context.Context) (*model.User, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	return s.userRepository.FindByUUID(ctx, s.tx.Executor(), claims.UserUUID)
}

func (s *UserService) UpdatePassword(ctx context.Context, newPassword string) error {
	claims, err := currentUser(ctx)
	if err != nil {
		return err
	}

	if err := validatePassword(newPassword); err != nil {
		return apperror.InvalidInput(err.Error())
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to hash password")
	}

	return s.userRepository.UpdatePassword(ctx, s.tx.Executor(), claims.UserUUID, hash)
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}

	var upperCount, lowerCount, digitCount, specialCount int
	for _, c := range password {
		switch {
		case unicode.IsUpper(c):
			upperCount++
		case unicode.IsLower(c):
			lowerCount++
		case unicode.IsDigit(c):
			digitCount++
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			specialCount++
		}
	}

	if upperCount == 0 || lowerCount == 0 {
		return errors.New("password must contain upper and lower case letters")
	}
	if digitCount < 1 {
		return errors.New("password must contain a digit")
	}
	if specialCount < 1 {
		return errors.New("password must contain a special character")
	}

	return nil
}
