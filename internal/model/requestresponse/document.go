package requestresponse

import (
	"esign-web-server/internal/model"
)

// CreateDocumentRequest : черновик без файла (текстовый документ из редактора)
type CreateDocumentRequest struct {
	Title      string `json:"title" example:"Mutual NDA"`
	Content    string `json:"content" example:"<p>The parties agree...</p>"`
	IsTemplate bool   `json:"is_template" example:"false"`
}

// CreateFromTemplateRequest : пустой title означает название шаблона
type CreateFromTemplateRequest struct {
	Title string `json:"title" example:"NDA for ACME"`
}

// UpdateDocumentRequest : отсутствующие поля не изменяются
type UpdateDocumentRequest struct {
	Title      *string `json:"title,omitempty" example:"Mutual NDA v2"`
	Content    *string `json:"content,omitempty"`
	IsTemplate *bool   `json:"is_template,omitempty"`
}

func (r UpdateDocumentRequest) Patch() model.DocumentPatch {
	return model.DocumentPatch{Title: r.Title, Content: r.Content, IsTemplate: r.IsTemplate}
}

// DocumentView : документ и ссылка на скачивание текущей версии
type DocumentView struct {
	*model.Document
	GetURL string `json:"get_url,omitempty" example:"https://s3.example.com/users/.../v2-....pdf?X-Amz-Signature=..."`
}

// DocumentResponse : ответ для одного документа
type DocumentResponse struct {
	Data DocumentView `json:"data"`
}

func DocumentResponseFromModel(document *model.Document, getURL string) DocumentResponse {
	return DocumentResponse{Data: DocumentView{Document: document, GetURL: getURL}}
}

// ListDocumentsResponse : страница документов владельца, новые первыми
type ListDocumentsResponse struct {
	Data struct {
		Docs []model.Document `json:"docs"`
	} `json:"data"`
	NextCursor string `json:"next_cursor,omitempty" example:"2026-01-01T10:00:00.123456Z"`
	Count      int    `json:"count" example:"10"`
}

// SendDocumentResponse : результат отправки писем подписантам
type SendDocumentResponse struct {
	Data   *model.SendResult `json:"data"`
	Failed int               `json:"failed" example:"0"`
}

// SignaturesResponse : аудит подписей документа
type SignaturesResponse struct {
	Data []model.Signature `json:"data"`
}

// AccessLogsResponse : журнал доступа, новые записи первыми
type AccessLogsResponse struct {
	Data []model.AccessLog `json:"data"`
}

// DeletedResponse : подтверждение удаления
type DeletedResponse struct {
	Response struct {
		UUID    string `json:"uuid" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
		Deleted bool   `json:"deleted" example:"true"`
	} `json:"response"`
}

func NewDeletedResponse(uuid string) DeletedResponse {
	var resp DeletedResponse
	resp.Response.UUID = uuid
	resp.Response.Deleted = true
	return resp
}
