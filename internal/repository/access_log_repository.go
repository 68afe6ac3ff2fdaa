package repository

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"

	"github.com/jmoiron/sqlx"
)

const maxAccessLogPage = 500

type AccessLogRepository struct {
	*config.Database
}

func NewAccessLogRepository(database *config.Database) *AccessLogRepository {
	return &AccessLogRepository{database}
}

func (r *AccessLogRepository) Create(ctx context.Context, exec sqlx.ExtContext, entry *model.AccessLog) error {
	query := `
		INSERT INTO access_logs (uuid, document_uuid, recipient_uuid, action, ip_address, user_agent, location, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := exec.QueryRowxContext(ctx, query,
		entry.UUID,
		entry.DocumentUUID,
		nullIfNil(entry.RecipientUUID),
		entry.Action,
		nullIfEmpty(entry.IPAddress),
		nullIfEmpty(entry.UserAgent),
		nullIfEmpty(entry.Location),
		nullIfEmpty(entry.Details),
	).Scan(&entry.CreatedAt)
	if err != nil {
		return util.LogError("[AccessLogRepo] ошибка записи в журнал", err)
	}
	return nil
}

// ListByDocument : новые записи первыми
func (r *AccessLogRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AccessLog, error) {
	if limit <= 0 || limit > maxAccessLogPage {
		limit = maxAccessLogPage
	}

	query := `
		SELECT uuid, document_uuid, recipient_uuid, action, ip_address, user_agent, location, details, created_at
		FROM access_logs
		WHERE document_uuid = $1
		ORDER BY created_at DESC, uuid DESC
		LIMIT $2
	`

	var rows []accessLogRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, documentUUID, limit); err != nil {
		return nil, util.LogError("[AccessLogRepo] не удалось получить журнал", err)
	}

	entries := make([]model.AccessLog, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toModel())
	}
	return entries, nil
}
