package ports

import (
	"context"
	"esign-web-server/internal/model"

	"github.com/jmoiron/sqlx"
)

// DocumentRepository : SQL слой
type DocumentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error)
	// ResolveDocument : документ, которому принадлежит ресурс любого типа
	ResolveDocument(ctx context.Context, exec sqlx.ExtContext, kind model.ResourceKind, resourceUUID string) (*model.Document, error)
	ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, filter model.DocumentFilter) ([]model.Document, string, error)
	Update(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error
	UpdateFile(ctx context.Context, exec sqlx.ExtContext, documentUUID string, expectedVersion int, file model.FileRef) (*model.Document, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, documentUUID string, to model.DocumentStatus, from ...model.DocumentStatus) error
	Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string) error
}

type DocumentService interface {
	CreateDocument(ctx context.Context, input model.NewDocument) (*model.Document, error)
	CreateFromTemplate(ctx context.Context, templateUUID, title string) (*model.Document, error)
	GetDocument(ctx context.Context, documentUUID string) (*model.GetDocumentResult, error)
	ListDocuments(ctx context.Context, filter model.DocumentFilter) ([]model.Document, string, error)
	UpdateDocument(ctx context.Context, documentUUID string, patch model.DocumentPatch) (*model.Document, error)
	ReplaceFile(ctx context.Context, documentUUID string, file model.UploadedFile) (*model.Document, error)
	DeleteDocument(ctx context.Context, documentUUID string) error
	SendDocument(ctx context.Context, documentUUID string) (*model.SendResult, error)
	ListSignatures(ctx context.Context, documentUUID string) ([]model.Signature, error)
	ListAccessLogs(ctx context.Context, documentUUID string, limit int) ([]model.AccessLog, error)
}
