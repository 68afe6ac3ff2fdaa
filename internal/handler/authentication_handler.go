package handler

import (
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	ports.JWTServiceInterface
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, jwtService ports.JWTServiceInterface) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService, jwtService}
}

// Login godoc
// @Summary Аутентификация владельца документов
// @Description Получение пары токенов по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.TokensResponse "Успешная аутентификация"
// @Failure 400 {object} requestresponse.ErrorResponse "Некорректный JSON или пустые поля"
// @Failure 401 {object} requestresponse.ErrorResponse "Неверный email или пароль"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		util.HandleError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password, r.UserAgent(), util.ClientIP(r))
	if err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	writeTokens(w, http.StatusOK, tokens.AccessToken, tokens.RefreshToken)
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Обновляет пару токенов по access токену (можно просроченному) и refresh токену, выданным вместе
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.TokensResponse "Новые access и refresh токены"
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный JSON"
// @Failure 401 {object} requestresponse.ErrorResponse "Невалидный токен"
// @Failure 500 {object} requestresponse.ErrorResponse "Внутренняя ошибка сервера"
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := bearerToken(r)
	if !ok {
		util.HandleError(w, "missing or malformed Authorization header", http.StatusUnauthorized)
		return
	}

	var req requestresponse.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.AuthenticationService.RefreshToken(r.Context(), r.UserAgent(), util.ClientIP(r), accessToken, req.RefreshToken)
	if err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	writeTokens(w, http.StatusOK, tokens.AccessToken, tokens.RefreshToken)
}

// Logout godoc
// @Summary Завершение сессии
// @Description Инвалидирует refresh токен, выданный вместе с переданным access токеном
// @Tags Authentication
// @Produce json
// @Param token path string true "Access токен пользователя (JWT)"
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/{token} [delete]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := chi.URLParam(r, "token")

	claims, err := h.JWTServiceInterface.ParseAccessToken(accessToken)
	if err != nil {
		util.HandleAppError(w, apperror.Wrap(err, apperror.CodeUnauthenticated, "invalid token"), "")
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), claims.RefreshTokenUUID); err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	var resp requestresponse.LogoutResponse
	resp.Response.RefreshTokenUUID = claims.RefreshTokenUUID
	resp.Response.Revoked = true
	util.WriteJSON(w, http.StatusOK, resp)
}

func writeTokens(w http.ResponseWriter, status int, accessToken, refreshToken string) {
	var resp requestresponse.TokensResponse
	resp.Response.AccessToken = accessToken
	resp.Response.RefreshToken = refreshToken
	util.WriteJSON(w, status, resp)
}
