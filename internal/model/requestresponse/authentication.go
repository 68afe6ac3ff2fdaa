package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" example:"owner@example.com"`
	Password string `json:"password" example:"P@ssw0rd123"`
}

// TokensResponse : пара токенов после входа, регистрации или обновления
type TokensResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
		RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"vcSi0369y1I62wOpxZFpgZ..."`
}

// LogoutResponse : ответ на завершение сессии
type LogoutResponse struct {
	Response struct {
		RefreshTokenUUID string `json:"refresh_token_uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Revoked          bool   `json:"revoked" example:"true"`
	} `json:"response"`
}

// ErrorResponse : формат всех ошибок API
type ErrorResponse struct {
	Error   string   `json:"error" example:"Not Found"`
	Message string   `json:"message" example:"Document not found"`
	Code    int      `json:"code" example:"404"`
	Details []string `json:"details,omitempty"`
}
