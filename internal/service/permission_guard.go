package service

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"

	"github.com/jmoiron/sqlx"
)

// ResourceRef : ресурс владельца, права на который проверяются через родительский документ
type ResourceRef struct {
	Kind model.ResourceKind
	UUID string
}

func DocumentRef(documentUUID string) ResourceRef {
	return ResourceRef{Kind: model.ResourceDocument, UUID: documentUUID}
}

func RecipientRef(recipientUUID string) ResourceRef {
	return ResourceRef{Kind: model.ResourceRecipient, UUID: recipientUUID}
}

func FieldRef(fieldUUID string) ResourceRef {
	return ResourceRef{Kind: model.ResourceField, UUID: fieldUUID}
}

// PermissionGuard : единая проверка владельца перед любым доступом к данным документа
type PermissionGuard struct {
	tx        ports.TxManager
	documents ports.DocumentRepository
}

func NewPermissionGuard(tx ports.TxManager, documents ports.DocumentRepository) *PermissionGuard {
	return &PermissionGuard{tx: tx, documents: documents}
}

// Authorize : сначала существование (NotFound), потом владелец (Forbidden)
func (g *PermissionGuard) Authorize(ctx context.Context, exec sqlx.ExtContext, ref ResourceRef) (*model.Document, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := validUUID(ref.UUID, string(ref.Kind)); err != nil {
		return nil, err
	}

	document, err := g.documents.ResolveDocument(ctx, exec, ref.Kind, ref.UUID)
	if err != nil {
		return nil, err
	}

	if document.OwnerUUID != claims.UserUUID {
		return nil, apperror.Forbidden(documentNotFound)
	}

	return document, nil
}

// Read : проверка прав и чтение без транзакции
func (g *PermissionGuard) Read(ctx context.Context, ref ResourceRef, fn func(exec sqlx.ExtContext, document *model.Document) error) error {
	exec := g.tx.Executor()

	document, err := g.Authorize(ctx, exec, ref)
	if err != nil {
		return err
	}

	return fn(exec, document)
}

// WithDocument : проверка прав и fn в одной транзакции, коммит только если fn успешна
func (g *PermissionGuard) WithDocument(ctx context.Context, ref ResourceRef, fn func(exec sqlx.ExtContext, document *model.Document) error) error {
	exec, rollback, commit, err := g.tx.BeginTX(ctx)
	if err != nil {
		return util.LogError("[PermissionGuard] не удалось начать транзакцию", err)
	}
	defer rollback()

	document, err := g.Authorize(ctx, exec, ref)
	if err != nil {
		return err
	}

	if err := fn(exec, document); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[PermissionGuard] не удалось закоммитить транзакцию", err)
	}

	return nil
}
