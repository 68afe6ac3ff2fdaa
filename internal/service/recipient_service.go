package service

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type RecipientService struct {
	guard      *PermissionGuard
	recipients ports.RecipientRepository
	signing    config.SigningConfig
}

func NewRecipientService(guard *PermissionGuard, recipients ports.RecipientRepository, signing config.SigningConfig) *RecipientService {
	return &RecipientService{guard: guard, recipients: recipients, signing: signing}
}

// AddRecipients : каждому подписанту сразу выдаётся токен ссылки
func (s *RecipientService) AddRecipients(ctx context.Context, documentUUID string, inputs []model.NewRecipient) ([]model.Recipient, error) {
	if len(inputs) == 0 {
		return nil, apperror.InvalidInput("at least one recipient is required")
	}

	normalized := make([]model.NewRecipient, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	for _, input := range inputs {
		recipient, err := normalizeRecipient(input)
		if err != nil {
			return nil, err
		}
		if seen[recipient.Email] {
			return nil, apperror.InvalidInput(fmt.Sprintf("recipient %s is listed twice", recipient.Email))
		}
		seen[recipient.Email] = true
		normalized = append(normalized, recipient)
	}

	var created []model.Recipient
	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}

		existing, err := s.recipients.ListByDocument(ctx, exec, document.UUID)
		if err != nil {
			return err
		}
		for _, recipient := range existing {
			if seen[strings.ToLower(recipient.Email)] {
				return apperror.Conflict(fmt.Sprintf("recipient %s is already added", recipient.Email))
			}
		}

		for _, input := range normalized {
			token, expiry, err := issueToken(s.signing)
			if err != nil {
				return err
			}

			recipient := model.Recipient{
				UUID:         uuid.New().String(),
				DocumentUUID: document.UUID,
				Email:        input.Email,
				Name:         input.Name,
				Role:         input.Role,
				Status:       model.RecipientStatusPending,
				Token:        token,
				TokenExpiry:  expiry,
			}
			if err := s.recipients.Create(ctx, exec, &recipient); err != nil {
				return err
			}
			created = append(created, recipient)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("[RecipientService] подписанты добавлены",
		zap.String("document_uuid", documentUUID),
		zap.Int("count", len(created)))

	return created, nil
}

func (s *RecipientService) ListRecipients(ctx context.Context, documentUUID string) ([]model.Recipient, error) {
	var recipients []model.Recipient
	err := s.guard.Read(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		var err error
		recipients, err = s.recipients.ListByDocument(ctx, exec, document.UUID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recipients, nil
}

// UpdateRecipient : только пока подписант не открыл документ
func (s *RecipientService) UpdateRecipient(ctx context.Context, recipientUUID string, patch model.RecipientPatch) (*model.Recipient, error) {
	var updated *model.Recipient

	err := s.guard.WithDocument(ctx, RecipientRef(recipientUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}

		recipient, err := s.recipients.GetByUUID(ctx, exec, recipientUUID)
		if err != nil {
			return err
		}
		if recipient.Status != model.RecipientStatusPending {
			return apperror.Conflict("Recipient has already opened the document")
		}

		input := model.NewRecipient{Email: recipient.Email, Name: recipient.Name, Role: recipient.Role}
		if patch.Email != nil {
			input.Email = *patch.Email
		}
		if patch.Name != nil {
			input.Name = *patch.Name
		}
		if patch.Role != nil {
			input.Role = *patch.Role
		}

		normalized, err := normalizeRecipient(input)
		if err != nil {
			return err
		}

		if normalized.Email != strings.ToLower(recipient.Email) {
			others, err := s.recipients.ListByDocument(ctx, exec, document.UUID)
			if err != nil {
				return err
			}
			for _, other := range others {
				if other.UUID != recipient.UUID && strings.EqualFold(other.Email, normalized.Email) {
					return apperror.Conflict(fmt.Sprintf("recipient %s is already added", normalized.Email))
				}
			}
		}

		recipient.Email, recipient.Name, recipient.Role = normalized.Email, normalized.Name, normalized.Role
		if err := s.recipients.Update(ctx, exec, recipient); err != nil {
			return err
		}

		updated = recipient
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteRecipient : только у черновика, назначенные поля становятся общими
func (s *RecipientService) DeleteRecipient(ctx context.Context, recipientUUID string) error {
	return s.guard.WithDocument(ctx, RecipientRef(recipientUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.Status != model.DocumentStatusDraft {
			return apperror.Conflict("Recipients can only be removed from a draft")
		}
		return s.recipients.Delete(ctx, exec, recipientUUID)
	})
}

func normalizeRecipient(input model.NewRecipient) (model.NewRecipient, error) {
	address, err := mail.ParseAddress(strings.TrimSpace(input.Email))
	if err != nil {
		return input, apperror.InvalidInput(fmt.Sprintf("invalid email %q", input.Email))
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = address.Name
	}

	role := input.Role
	if role == "" {
		role = model.RecipientRoleSigner
	}
	if !role.Valid() {
		return input, apperror.InvalidInput(fmt.Sprintf("unknown recipient role %q", input.Role))
	}

	return model.NewRecipient{
		Email: strings.ToLower(address.Address),
		Name:  name,
		Role:  role,
	}, nil
}
