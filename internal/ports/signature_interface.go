package ports

import (
	"context"
	"esign-web-server/internal/model"

	"github.com/jmoiron/sqlx"
)

type SignatureRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error)
}

type AccessLogRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, entry *model.AccessLog) error
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AccessLog, error)
}

// SigningService : операции подписанта по ссылке с токеном
type SigningService interface {
	View(ctx context.Context, documentUUID, token string, meta model.RequestMeta) (*model.SigningSession, error)
	SaveFieldValue(ctx context.Context, documentUUID, token, fieldUUID, value string, meta model.RequestMeta) (*model.SignatureField, error)
	Sign(ctx context.Context, documentUUID, token string, values map[string]string, meta model.RequestMeta) (*model.SignResult, error)
}
