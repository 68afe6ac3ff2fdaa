package ports

import (
	"context"
	"esign-web-server/internal/model"
	"time"

	"github.com/jmoiron/sqlx"
)

type RecipientRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) (*model.Recipient, error)
	// GetByToken : только неистёкший токен, иначе NotFound
	GetByToken(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.Recipient, error)
	ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Recipient, error)
	Update(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error
	UpdateToken(ctx context.Context, exec sqlx.ExtContext, recipientUUID, token string, expiry time.Time) error
	// TransitionStatus : условное обновление, Conflict если текущий статус не входит в from
	TransitionStatus(ctx context.Context, exec sqlx.ExtContext, recipientUUID string, to model.RecipientStatus, from []model.RecipientStatus, at time.Time) error
	Delete(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) error
}

type RecipientService interface {
	AddRecipients(ctx context.Context, documentUUID string, inputs []model.NewRecipient) ([]model.Recipient, error)
	ListRecipients(ctx context.Context, documentUUID string) ([]model.Recipient, error)
	UpdateRecipient(ctx context.Context, recipientUUID string, patch model.RecipientPatch) (*model.Recipient, error)
	DeleteRecipient(ctx context.Context, recipientUUID string) error
}
