package ports

import (
	"context"
	"esign-web-server/internal/model"
)

// Mailer : возвращает идентификатор сообщения у провайдера
type Mailer interface {
	Send(ctx context.Context, message model.EmailMessage) (string, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event model.DocumentEvent) error
}

// CompletionEngine : "прожигает" значения полей в PDF и возвращает новый файл
type CompletionEngine interface {
	Complete(ctx context.Context, source []byte, fields []model.SignatureField) ([]byte, error)
}

type MetricsRecorder interface {
	EmailSent(provider string, ok bool)
	DocumentSigned()
	DocumentCompleted()
	CompletionFailed()
}
