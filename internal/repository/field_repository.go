package repository

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/util"
	"time"

	"github.com/jmoiron/sqlx"
)

const fieldColumns = `
	uuid, document_uuid, recipient_uuid, page_number, x, y, width, height, field_type,
	label, required, signature_data, completed_by, completed_at, created_at, updated_at`

type FieldRepository struct {
	*config.Database
}

func NewFieldRepository(database *config.Database) *FieldRepository {
	return &FieldRepository{database}
}

func (r *FieldRepository) Create(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	query := `
		INSERT INTO signature_fields (uuid, document_uuid, recipient_uuid, page_number, x, y, width, height,
		                              field_type, label, required)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	err := exec.QueryRowxContext(ctx, query,
		field.UUID,
		field.DocumentUUID,
		nullIfNil(field.AssigneeUUID),
		field.PageNumber,
		field.X,
		field.Y,
		field.Width,
		field.Height,
		field.Type,
		field.Label,
		field.Required,
	).Scan(&field.CreatedAt, &field.UpdatedAt)
	if err != nil {
		return util.LogError("[FieldRepo] ошибка вставки поля", err)
	}

	return nil
}

func (r *FieldRepository) GetByUUID(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) (*model.SignatureField, error) {
	query := `SELECT` + fieldColumns + ` FROM signature_fields WHERE uuid = $1`

	var row fieldRow
	if err := sqlx.GetContext(ctx, exec, &row, query, fieldUUID); err != nil {
		return nil, notFoundOr(err, "Field not found", "[FieldRepo] ошибка получения поля")
	}

	field := row.toModel()
	return &field, nil
}

// ListByDocument : порядок стабилен, от него зависит порядок отрисовки
func (r *FieldRepository) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error) {
	query := `SELECT` + fieldColumns + ` FROM signature_fields WHERE document_uuid = $1 ORDER BY page_number, y, x, uuid`

	var rows []fieldRow
	if err := sqlx.SelectContext(ctx, exec, &rows, query, documentUUID); err != nil {
		return nil, util.LogError("[FieldRepo] не удалось получить поля документа", err)
	}

	fields := make([]model.SignatureField, 0, len(rows))
	for _, row := range rows {
		fields = append(fields, row.toModel())
	}
	return fields, nil
}

// Update : геометрия и свойства поля, заполненное поле не редактируется
func (r *FieldRepository) Update(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	query := `
		UPDATE signature_fields
		SET recipient_uuid = $2, page_number = $3, x = $4, y = $5, width = $6, height = $7,
		    field_type = $8, label = $9, required = $10, updated_at = NOW()
		WHERE uuid = $1 AND signature_data IS NULL
	`

	result, err := exec.ExecContext(ctx, query,
		field.UUID,
		nullIfNil(field.AssigneeUUID),
		field.PageNumber,
		field.X,
		field.Y,
		field.Width,
		field.Height,
		field.Type,
		field.Label,
		field.Required,
	)
	return expectAffected(result, err, apperror.Conflict("Field is already completed"), "[FieldRepo] не удалось обновить поле")
}

// SaveValue : записать значение может только тот, кто заполнил поле первым
func (r *FieldRepository) SaveValue(ctx context.Context, exec sqlx.ExtContext, fieldUUID, recipientUUID, value string, at time.Time) error {
	query := `
		UPDATE signature_fields
		SET signature_data = $3, completed_by = $2, completed_at = $4, updated_at = NOW()
		WHERE uuid = $1 AND (completed_by IS NULL OR completed_by = $2)
	`

	result, err := exec.ExecContext(ctx, query, fieldUUID, recipientUUID, value, at)
	return expectAffected(result, err, apperror.Conflict("Field has been completed by another recipient"), "[FieldRepo] не удалось сохранить значение поля")
}

func (r *FieldRepository) Delete(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) error {
	result, err := exec.ExecContext(ctx, `DELETE FROM signature_fields WHERE uuid = $1`, fieldUUID)
	return expectAffected(result, err, apperror.NotFound("Field not found"), "[FieldRepo] не удалось удалить поле")
}
