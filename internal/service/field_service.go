package service

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FieldService struct {
	guard      *PermissionGuard
	fields     ports.FieldRepository
	recipients ports.RecipientRepository
}

func NewFieldService(guard *PermissionGuard, fields ports.FieldRepository, recipients ports.RecipientRepository) *FieldService {
	return &FieldService{guard: guard, fields: fields, recipients: recipients}
}

// PlaceField : координаты в единицах страницы от левого верхнего угла
func (s *FieldService) PlaceField(ctx context.Context, documentUUID string, input model.NewField) (*model.SignatureField, error) {
	field := model.SignatureField{
		UUID:         uuid.New().String(),
		DocumentUUID: documentUUID,
		AssigneeUUID: input.AssigneeUUID,
		PageNumber:   input.PageNumber,
		X:            input.X,
		Y:            input.Y,
		Width:        input.Width,
		Height:       input.Height,
		Type:         input.Type,
		Label:        strings.TrimSpace(input.Label),
		Required:     input.Required,
	}
	if err := normalizeField(&field); err != nil {
		return nil, err
	}

	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}
		if err := s.checkAssignee(ctx, exec, document, field.AssigneeUUID); err != nil {
			return err
		}
		return s.fields.Create(ctx, exec, &field)
	})
	if err != nil {
		return nil, err
	}

	return &field, nil
}

// ListFields : по странице, затем сверху вниз и слева направо
func (s *FieldService) ListFields(ctx context.Context, documentUUID string) ([]model.SignatureField, error) {
	var fields []model.SignatureField
	err := s.guard.Read(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		var err error
		fields, err = s.fields.ListByDocument(ctx, exec, document.UUID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// MoveField : перетаскивание поля, проверяются только неотрицательные координаты
func (s *FieldService) MoveField(ctx context.Context, fieldUUID string, x, y float64) (*model.SignatureField, error) {
	if x < 0 || y < 0 {
		return nil, apperror.InvalidInput("coordinates must not be negative")
	}

	return s.mutate(ctx, fieldUUID, func(_ sqlx.ExtContext, _ *model.Document, field *model.SignatureField) error {
		field.X, field.Y = x, y
		return nil
	})
}

func (s *FieldService) UpdateField(ctx context.Context, fieldUUID string, patch model.FieldPatch) (*model.SignatureField, error) {
	return s.mutate(ctx, fieldUUID, func(exec sqlx.ExtContext, document *model.Document, field *model.SignatureField) error {
		if patch.PageNumber != nil {
			field.PageNumber = *patch.PageNumber
		}
		if patch.X != nil {
			field.X = *patch.X
		}
		if patch.Y != nil {
			field.Y = *patch.Y
		}
		if patch.Width != nil {
			field.Width = *patch.Width
		}
		if patch.Height != nil {
			field.Height = *patch.Height
		}
		if patch.Type != nil {
			field.Type = *patch.Type
		}
		if patch.Label != nil {
			field.Label = strings.TrimSpace(*patch.Label)
		}
		if patch.Required != nil {
			field.Required = *patch.Required
		}
		if patch.Unassign {
			field.AssigneeUUID = nil
		} else if patch.AssigneeUUID != nil {
			field.AssigneeUUID = patch.AssigneeUUID
			if err := s.checkAssignee(ctx, exec, document, field.AssigneeUUID); err != nil {
				return err
			}
		}

		return normalizeField(field)
	})
}

func (s *FieldService) DeleteField(ctx context.Context, fieldUUID string) error {
	return s.guard.WithDocument(ctx, FieldRef(fieldUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}
		return s.fields.Delete(ctx, exec, fieldUUID)
	})
}

// mutate : общая часть изменения поля владельцем
func (s *FieldService) mutate(ctx context.Context, fieldUUID string, apply func(exec sqlx.ExtContext, document *model.Document, field *model.SignatureField) error) (*model.SignatureField, error) {
	var updated *model.SignatureField

	err := s.guard.WithDocument(ctx, FieldRef(fieldUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}

		field, err := s.fields.GetByUUID(ctx, exec, fieldUUID)
		if err != nil {
			return err
		}
		if field.Completed() {
			return apperror.Conflict("Field is already completed")
		}

		if err := apply(exec, document, field); err != nil {
			return err
		}
		if err := s.fields.Update(ctx, exec, field); err != nil {
			return err
		}

		updated = field
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkAssignee : назначить поле можно только подписанту того же документа
func (s *FieldService) checkAssignee(ctx context.Context, exec sqlx.ExtContext, document *model.Document, assigneeUUID *string) error {
	if assigneeUUID == nil {
		return nil
	}
	if err := validUUID(*assigneeUUID, "recipient"); err != nil {
		return err
	}

	recipient, err := s.recipients.GetByUUID(ctx, exec, *assigneeUUID)
	if err != nil {
		if apperror.CodeOf(err) == apperror.CodeNotFound {
			return apperror.InvalidInput("assignee is not a recipient of this document")
		}
		return err
	}
	if recipient.DocumentUUID != document.UUID {
		return apperror.InvalidInput("assignee is not a recipient of this document")
	}
	return nil
}

func normalizeField(field *model.SignatureField) error {
	if field.Type == "" {
		field.Type = model.FieldTypeSignature
	}
	if !field.Type.Valid() {
		return apperror.InvalidInput(fmt.Sprintf("unknown field type %q", field.Type))
	}
	if field.Label == "" {
		field.Label = model.DefaultLabel(field.Type)
	}
	if !field.ValidGeometry() {
		return apperror.InvalidInput("field must be on page 1 or later with non-negative position and positive size")
	}
	return nil
}
