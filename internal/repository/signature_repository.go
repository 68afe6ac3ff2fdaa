package repository

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"

	"github.com/jmoiron/sqlx"
)

type SignatureRepository struct {
	*config.Database
}

func NewSignatureRepository(database *config.Database) *SignatureRepository {
	return &SignatureRepository{database}
}

func (r *SignatureRepository) Create(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error {
	query := `
		INSERT INTO signatures (uuid, document_uuid, recipient_uuid, field_uuid, signature_data, ip_address, user_agent, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := exec.QueryRowxContext(ctx, query,
		signature.UUID,
		signature.DocumentUUID,
		signature.RecipientUUID,
		nullIfNil(signature.FieldUUID),
		signature.Value,
		signature.IPAddress,
		signature.UserAgent,
		nullIfEmpty(signature.Location),
	).Scan(&signature.CreatedAt)
	if err != nil {
		return util.LogError("[SignatureRepo] ошибка вставки подписи", err)
	}
	return nil
}

func (r *SignatureRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error) {
	query := `
		SELECT uuid, document_uuid, recipient_uuid, field_uuid, signature_data, ip_address, user_agent, location, created_at
		FROM signatures
		WHERE document_uuid = $1
		ORDER BY created_at, uuid
	`

	var rows []signatureRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, documentUUID); err != nil {
		return nil, util.LogError("[SignatureRepo] не удалось получить подписи", err)
	}

	signatures := make([]model.Signature, 0, len(rows))
	for _, row := range rows {
		signatures = append(signatures, row.toModel())
	}
	return signatures, nil
}
