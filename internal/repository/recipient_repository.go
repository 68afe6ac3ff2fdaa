package repository

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const recipientColumns = `
	uuid, document_uuid, email, name, role, status, token, token_expiry,
	viewed_at, signed_at, created_at, updated_at`

type RecipientRepository struct {
	*config.Database
}

func NewRecipientRepository(database *config.Database) *RecipientRepository {
	return &RecipientRepository{database}
}

func (r *RecipientRepository) Create(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error {
	query := `
		INSERT INTO recipients (uuid, document_uuid, email, name, role, status, token, token_expiry)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`

	err := exec.QueryRowxContext(ctx, query,
		recipient.UUID,
		recipient.DocumentUUID,
		recipient.Email,
		recipient.Name,
		recipient.Role,
		recipient.Status,
		nullIfEmpty(recipient.Token),
		recipient.TokenExpiry,
	).Scan(&recipient.CreatedAt, &recipient.UpdatedAt)
	if err != nil {
		return util.LogError("[RecipientRepo] ошибка вставки подписанта", err)
	}

	return nil
}

func (r *RecipientRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) (*model.Recipient, error) {
	query := `SELECT` + recipientColumns + ` FROM recipients WHERE uuid = $1`

	var row recipientRow
	if err := sqlx.GetContext(ctx, exec, &row, query, recipientUUID); err != nil {
		return nil, notFoundOr(err, "Recipient not found", "[RecipientRepo] ошибка получения подписанта")
	}
	return row.toModel(), nil
}

// GetByToken : истёкший и несуществующий токен неотличимы
func (r *RecipientRepository) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.Recipient, error) {
	query := `SELECT` + recipientColumns + ` FROM recipients WHERE token = $1 AND token_expiry > $2`

	var row recipientRow
	if err := sqlx.GetContext(ctx, exec, &row, query, token, now); err != nil {
		return nil, notFoundOr(err, "Document not found", "[RecipientRepo] ошибка поиска по токену")
	}
	return row.toModel(), nil
}

func (r *RecipientRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Recipient, error) {
	query := `SELECT` + recipientColumns + ` FROM recipients WHERE document_uuid = $1 ORDER BY created_at, uuid`

	var rows []recipientRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, documentUUID); err != nil {
		return nil, util.LogError("[RecipientRepo] не удалось получить подписантов", err)
	}

	recipients := make([]model.Recipient, 0, len(rows))
	for _, row := range rows {
		recipients = append(recipients, *row.toModel())
	}
	return recipients, nil
}

// Update : данные подписанта меняются только пока он не открыл документ
func (r *RecipientRepository) Update(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error {
	query := `
		UPDATE recipients
		SET email = $2, name = $3, role = $4, updated_at = NOW()
		WHERE uuid = $1 AND status = 'pending'
	`

	result, err := exec.ExecContext(ctx, query, recipient.UUID, recipient.Email, recipient.Name, recipient.Role)
	return expectAffected(result, err, apperror.Conflict("Recipient has already opened the document"), "[RecipientRepo] не удалось обновить подписанта")
}

func (r *RecipientRepository) UpdateToken(ctx context.Context, exec sqlx.ExtContext, recipientUUID, token string, expiry time.Time) error {
	query := `UPDATE recipients SET token = $2, token_expiry = $3, updated_at = NOW() WHERE uuid = $1`

	result, err := exec.ExecContext(ctx, query, recipientUUID, token, expiry)
	return expectAffected(result, err, apperror.NotFound("Recipient not found"), "[RecipientRepo] не удалось обновить токен")
}

// TransitionStatus : статус меняется только из перечисленных, повторная отметка даёт Conflict
func (r *RecipientRepository) TransitionStatus(ctx context.Context, exec sqlx.ExtContext, recipientUUID string, to model.RecipientStatus, from []model.RecipientStatus, at time.Time) error {
	statuses := make([]string, len(from))
	for i, status := range from {
		statuses[i] = string(status)
	}

	var query string
	switch to {
	case model.RecipientStatusViewed:
		query = `UPDATE recipients SET status = $2, viewed_at = $3, updated_at = NOW() WHERE uuid = $1 AND status = ANY($4)`
	case model.RecipientStatusSigned:
		query = `UPDATE recipients SET status = $2, signed_at = $3, updated_at = NOW() WHERE uuid = $1 AND status = ANY($4)`
	default:
		return apperror.InvalidInput("unsupported recipient status")
	}

	result, err := exec.ExecContext(ctx, query, recipientUUID, to, at, pq.Array(statuses))
	return expectAffected(result, err, apperror.Conflict("Recipient status has already changed"), "[RecipientRepo] не удалось обновить статус подписанта")
}

func (r *RecipientRepository) Delete(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) error {
	if _, err := exec.ExecContext(ctx, `UPDATE signature_fields SET recipient_uuid = NULL WHERE recipient_uuid = $1`, recipientUUID); err != nil {
		return util.LogError("[RecipientRepo] не удалось снять назначение полей", err)
	}

	result, err := exec.ExecContext(ctx, `DELETE FROM recipients WHERE uuid = $1`, recipientUUID)
	return expectAffected(result, err, apperror.NotFound("Recipient not found"), "[RecipientRepo] не удалось удалить подписанта")
}
