package ports

import (
	"context"
	"esign-web-server/internal/model"
	"time"

	"github.com/jmoiron/sqlx"
)

type FieldRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) (*model.SignatureField, error)
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error)
	Update(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error
	// SaveValue : Conflict, если поле уже заполнено другим подписантом
	SaveValue(ctx context.Context, exec sqlx.ExtContext, fieldUUID, recipientUUID, value string, at time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) error
}

type FieldService interface {
	PlaceField(ctx context.Context, documentUUID string, input model.NewField) (*model.SignatureField, error)
	ListFields(ctx context.Context, documentUUID string) ([]model.SignatureField, error)
	// MoveField : меняются только координаты
	MoveField(ctx context.Context, fieldUUID string, x, y float64) (*model.SignatureField, error)
	UpdateField(ctx context.Context, fieldUUID string, patch model.FieldPatch) (*model.SignatureField, error)
	DeleteField(ctx context.Context, fieldUUID string) error
}
