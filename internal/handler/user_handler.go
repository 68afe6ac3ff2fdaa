package handler

import (
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"net/http"
)

type UserHandler struct {
	ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService}
}

// RegisterUser godoc
// @Summary Регистрация владельца документов
// @Description Создаёт пользователя и сразу выдаёт пару токенов. Если в config.yaml задан admin.registration_token, он обязателен
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} requestresponse.TokensResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Неверный токен регистрации"
// @Failure 409 {object} requestresponse.ErrorResponse "Email уже занят"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/register [post]
func (h *UserHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tokens, err := h.UserService.Register(r.Context(), req.RegistrationToken, req.Email, req.Password, r.UserAgent(), util.ClientIP(r))
	if err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	writeTokens(w, http.StatusCreated, tokens.AccessToken, tokens.RefreshToken)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Tags Users
// @Produce json
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/me [get]
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetCurrentUser(r.Context())
	if err != nil {
		util.HandleAppError(w, err, "User not found")
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponseFromModel(user))
}

// UpdatePassword godoc
// @Summary Смена пароля
// @Tags Users
// @Accept json
// @Produce json
// @Param body body requestresponse.UpdatePasswordRequest true "Новый пароль"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.UpdatePasswordResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/users/me/password [put]
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.UserService.UpdatePassword(r.Context(), req.NewPassword); err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	var resp requestresponse.UpdatePasswordResponse
	resp.Response.Updated = true
	util.WriteJSON(w, http.StatusOK, resp)
}
