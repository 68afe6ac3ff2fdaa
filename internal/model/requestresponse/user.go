package requestresponse

import (
	"esign-web-server/internal/model"
	"time"
)

// RegisterRequest : тело запроса регистрации владельца документов
type RegisterRequest struct {
	RegistrationToken string `json:"registration_token,omitempty" example:"super-secret-admin-token"`
	Email             string `json:"email" example:"owner@example.com"`
	Password          string `json:"password" example:"P@ssw0rd!"`
}

// UserResponse : данные текущего пользователя
type UserResponse struct {
	Data struct {
		UUID      string    `json:"uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
		Email     string    `json:"email" example:"owner@example.com"`
		CreatedAt time.Time `json:"created_at"`

		PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	} `json:"data"`
}

func UserResponseFromModel(user *model.User) UserResponse {
	var resp UserResponse
	resp.Data.UUID = user.UUID
	resp.Data.Email = user.Email
	resp.Data.CreatedAt = user.CreatedAt
	resp.Data.PasswordChangedAt = user.PasswordChangedAt
	return resp
}

// UpdatePasswordRequest : тело запроса
type UpdatePasswordRequest struct {
	NewPassword string `json:"new_password" example:"P@ssw0rd123"`
}

// UpdatePasswordResponse : успешный ответ
type UpdatePasswordResponse struct {
	Response struct {
		Updated bool `json:"updated" example:"true"`
	} `json:"response"`
}
