package requestresponse

import "esign-web-server/internal/model"

// SaveFieldValueRequest : значение поля, для подписи data URL картинки PNG или JPEG
type SaveFieldValueRequest struct {
	Value string `json:"value" example:"data:image/png;base64,iVBORw0KGgo..."`
}

// SignRequest : значения полей по UUID, сохраняются перед подписанием
type SignRequest struct {
	Values map[string]string `json:"values,omitempty"`
}

type SigningSessionResponse struct {
	Data *model.SigningSession `json:"data"`
}

type SignResponse struct {
	Data *model.SignResult `json:"data"`
}
