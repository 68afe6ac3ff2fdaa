package repository

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const documentColumns = `
	d.uuid, d.owner_uuid, d.title, d.status, d.content, d.storage_key, d.file_url,
	d.mime_type, d.size_bytes, d.sha256, d.version, d.is_template, d.created_at, d.updated_at`

const maxDocumentPage = 100

type DocumentRepository struct {
	*config.Database
}

func NewDocumentRepository(database *config.Database) *DocumentRepository {
	return &DocumentRepository{database}
}

// Create : сохраняем новый документ, created_at/updated_at приходят из БД
func (r *DocumentRepository) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		INSERT INTO documents (uuid, owner_uuid, title, status, content, storage_key, file_url,
		                       mime_type, size_bytes, sha256, version, is_template)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`

	err := exec.QueryRowxContext(
		ctx,
		query,
		document.UUID,
		document.OwnerUUID,
		document.Title,
		document.Status,
		nullIfEmpty(document.Content),
		nullIfEmpty(document.StorageKey),
		nullIfEmpty(document.FileURL),
		nullIfEmpty(document.MimeType),
		document.SizeBytes,
		nullIfEmpty(document.Sha256),
		document.Version,
		document.IsTemplate,
	).Scan(&document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return util.LogError("[DocumentRepo] ошибка вставки документа", err)
	}

	return nil
}

func (r *DocumentRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error) {
	return r.ResolveDocument(ctx, exec, model.ResourceDocument, documentUUID)
}

// ResolveDocument : документ по UUID самого документа, подписанта или поля
func (r *DocumentRepository) ResolveDocument(ctx context.Context, exec sqlx.ExtContext, kind model.ResourceKind, resourceUUID string) (*model.Document, error) {
	var query string
	switch kind {
	case model.ResourceDocument:
		query = `SELECT` + documentColumns + ` FROM documents AS d WHERE d.uuid = $1`
	case model.ResourceRecipient:
		query = `SELECT` + documentColumns + `
			FROM documents AS d
			JOIN recipients AS r ON r.document_uuid = d.uuid
			WHERE r.uuid = $1`
	case model.ResourceField:
		query = `SELECT` + documentColumns + `
			FROM documents AS d
			JOIN signature_fields AS f ON f.document_uuid = d.uuid
			WHERE f.uuid = $1`
	default:
		return nil, apperror.InvalidInput(fmt.Sprintf("unknown resource kind %q", kind))
	}

	var row documentRow
	if err := sqlx.GetContext(ctx, exec, &row, query, resourceUUID); err != nil {
		return nil, notFoundOr(err, "Document not found", "[DocumentRepo] ошибка получения документа")
	}

	return row.toModel(), nil
}

// ListByOwner : документы владельца, новые первыми.
// cursor хранит created_at последнего документа предыдущей страницы
func (r *DocumentRepository) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, filter model.DocumentFilter) ([]model.Document, string, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxDocumentPage {
		limit = maxDocumentPage
	}

	conditions := []string{"d.owner_uuid = $1"}
	args := []interface{}{ownerUUID}

	if filter.Cursor != "" {
		cursorTime, err := time.Parse(time.RFC3339Nano, filter.Cursor)
		if err != nil {
			return nil, "", apperror.InvalidInput("invalid cursor")
		}
		args = append(args, cursorTime)
		conditions = append(conditions, fmt.Sprintf("d.created_at < $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("d.status = $%d", len(args)))
	}
	if filter.IsTemplate != nil {
		args = append(args, *filter.IsTemplate)
		conditions = append(conditions, fmt.Sprintf("d.is_template = $%d", len(args)))
	}
	args = append(args, limit+1) // +1 для проверки наличия следующей страницы

	query := `SELECT` + documentColumns + `
		FROM documents AS d
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY d.created_at DESC, d.uuid DESC
		LIMIT $` + fmt.Sprint(len(args))

	var rows []documentRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, args...); err != nil {
		return nil, "", util.LogError("[DocumentRepo] не удалось получить список документов", err)
	}

	var nextCursor string
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = rows[len(rows)-1].CreatedAt.Format(time.RFC3339Nano)
	}

	documents := make([]model.Document, 0, len(rows))
	for _, row := range rows {
		documents = append(documents, *row.toModel())
	}

	return documents, nextCursor, nil
}

// Update : метаданные документа, завершённый документ не меняется
func (r *DocumentRepository) Update(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	query := `
		UPDATE documents
		SET title = $2, content = $3, is_template = $4, updated_at = NOW()
		WHERE uuid = $1 AND status <> 'completed'
	`

	result, err := exec.ExecContext(ctx, query, document.UUID, document.Title, nullIfEmpty(document.Content), document.IsTemplate)
	return expectAffected(result, err, apperror.Conflict("Document is already completed"), "[DocumentRepo] не удалось обновить документ")
}

// UpdateFile : новая версия файла поверх expectedVersion. Если версию уже сменила
// другая транзакция, запись не выполняется и возвращается Conflict
func (r *DocumentRepository) UpdateFile(ctx context.Context, exec sqlx.ExtContext, documentUUID string, expectedVersion int, file model.FileRef) (*model.Document, error) {
	query := `
		UPDATE documents AS d
		SET storage_key = $2, file_url = $3, mime_type = $4, size_bytes = $5, sha256 = $6,
		    version = d.version + 1, updated_at = NOW()
		WHERE d.uuid = $1 AND d.version = $7 AND d.status <> 'completed'
		RETURNING` + documentColumns

	var row documentRow
	err := sqlx.GetContext(ctx, exec, &row, query,
		documentUUID,
		file.StorageKey,
		nullIfEmpty(file.FileURL),
		nullIfEmpty(file.MimeType),
		file.SizeBytes,
		nullIfEmpty(file.Sha256),
		expectedVersion,
	)
	if err != nil {
		return nil, conflictOr(err, "Document was changed by another request", "[DocumentRepo] не удалось обновить файл документа")
	}

	return row.toModel(), nil
}

// UpdateStatus : условный переход статуса, Conflict если текущий статус не входит в from
func (r *DocumentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, documentUUID string, to model.DocumentStatus, from ...model.DocumentStatus) error {
	if len(from) == 0 {
		result, err := exec.ExecContext(ctx, `UPDATE documents SET status = $2, updated_at = NOW() WHERE uuid = $1`, documentUUID, to)
		return expectAffected(result, err, apperror.NotFound("Document not found"), "[DocumentRepo] не удалось обновить статус")
	}

	statuses := make([]string, len(from))
	for i, status := range from {
		statuses[i] = string(status)
	}

	query := `
		UPDATE documents
		SET status = $2, updated_at = NOW()
		WHERE uuid = $1 AND status = ANY($3)
	`
	result, err := exec.ExecContext(ctx, query, documentUUID, to, pq.Array(statuses))
	return expectAffected(result, err,
		apperror.Conflict(fmt.Sprintf("Document cannot move to %s", to)),
		"[DocumentRepo] не удалось обновить статус")
}

// Delete : удаляет документ и всё, что от него зависит. exec должен быть транзакцией
func (r *DocumentRepository) Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string) error {
	dependents := []string{
		`DELETE FROM signatures WHERE document_uuid = $1`,
		`DELETE FROM access_logs WHERE document_uuid = $1`,
		`DELETE FROM signature_fields WHERE document_uuid = $1`,
		`DELETE FROM recipients WHERE document_uuid = $1`,
	}
	for _, query := range dependents {
		if _, err := exec.ExecContext(ctx, query, documentUUID); err != nil {
			return util.LogError("[DocumentRepo] не удалось удалить зависимые записи", err)
		}
	}

	result, err := exec.ExecContext(ctx, `DELETE FROM documents WHERE uuid = $1`, documentUUID)
	return expectAffected(result, err, apperror.NotFound("Document not found"), "[DocumentRepo] не удалось удалить документ")
}
