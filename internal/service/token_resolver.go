package service

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// TokenResolver : ссылка подписанта -> подписант и его документ.
// Истёкший и никогда не выданный токен неразличимы
type TokenResolver struct {
	recipients ports.RecipientRepository
	documents  ports.DocumentRepository
	now        func() time.Time
}

func NewTokenResolver(recipients ports.RecipientRepository, documents ports.DocumentRepository) *TokenResolver {
	return &TokenResolver{recipients: recipients, documents: documents, now: utcNow}
}

func (r *TokenResolver) Resolve(ctx context.Context, exec sqlx.ExtContext, token string) (*model.Recipient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperror.NotFound(documentNotFound)
	}

	now := r.now()
	recipient, err := r.recipients.GetByToken(ctx, exec, token, now)
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotFound {
			return nil, apperror.Wrap(err, apperror.CodeNotFound, documentNotFound)
		}
		return nil, err
	}

	if !recipient.TokenValid(now) {
		return nil, apperror.NotFound(documentNotFound)
	}

	return recipient, nil
}

// ResolveForDocument : токен другого документа тоже NotFound, чтобы не подтверждать существование документа
func (r *TokenResolver) ResolveForDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID, token string) (*model.Recipient, *model.Document, error) {
	if err := validUUID(documentUUID, "document"); err != nil {
		return nil, nil, apperror.NotFound(documentNotFound)
	}

	recipient, err := r.Resolve(ctx, exec, token)
	if err != nil {
		return nil, nil, err
	}

	if recipient.DocumentUUID != documentUUID {
		return nil, nil, apperror.NotFound(documentNotFound)
	}

	document, err := r.documents.GetByUUID(ctx, exec, documentUUID)
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotFound {
			return nil, nil, apperror.NotFound(documentNotFound)
		}
		return nil, nil, err
	}

	return recipient, document, nil
}
