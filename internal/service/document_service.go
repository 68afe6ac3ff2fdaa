package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"esign-web-server/internal/notifier"
	"esign-web-server/internal/ports"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	pdfMimeType    = "application/pdf"
	maxTitleLength = 255
)

type DocumentService struct {
	tx            ports.TxManager
	guard         *PermissionGuard
	repos         Repositories
	accessLogs    *AccessLogService
	cache         ports.CacheRepository
	storage       ports.S3Storage
	notifications Notifications
	signing       config.SigningConfig
	ttl           time.Duration
}

func NewDocumentService(
	tx ports.TxManager,
	guard *PermissionGuard,
	repos Repositories,
	accessLogs *AccessLogService,
	cache ports.CacheRepository,
	storage ports.S3Storage,
	notifications Notifications,
	signing config.SigningConfig,
	ttl time.Duration,
) *DocumentService {
	return &DocumentService{
		tx:            tx,
		guard:         guard,
		repos:         repos,
		accessLogs:    accessLogs,
		cache:         cache,
		storage:       storage,
		notifications: notifications,
		signing:       signing,
		ttl:           ttl,
	}
}

// CreateDocument : черновик с текстом и/или PDF. Файл загружается до записи в БД
// и удаляется, если запись не удалась
func (s *DocumentService) CreateDocument(ctx context.Context, input model.NewDocument) (*model.Document, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	document := &model.Document{
		UUID:       uuid.New().String(),
		OwnerUUID:  claims.UserUUID,
		Title:      title,
		Status:     model.DocumentStatusDraft,
		Content:    input.Content,
		IsTemplate: input.IsTemplate,
	}

	var uploadedKey string
	if input.File != nil {
		if err := validatePDF(input.File); err != nil {
			return nil, err
		}

		key := versionKey(document.OwnerUUID, document.UUID, 1)
		if err := s.storage.PutObject(ctx, key, input.File.Data, pdfMimeType); err != nil {
			return nil, apperror.Upstream(err, "Failed to upload document")
		}
		uploadedKey = key

		applyFile(document, s.fileRef(key, input.File.Data))
		document.Version = 1
	}

	err = s.inTx(ctx, func(exec sqlx.ExtContext) error {
		return s.repos.Documents.Create(ctx, exec, document)
	})
	if err != nil {
		s.discardObject(ctx, uploadedKey)
		return nil, err
	}

	s.cacheDocument(ctx, document)

	zap.L().Info("[DocumentService] документ создан",
		zap.String("document_uuid", document.UUID),
		zap.Bool("has_file", document.HasFile()))

	return document, nil
}

// CreateFromTemplate : копия шаблона с файлом и полями без назначений и значений
func (s *DocumentService) CreateFromTemplate(ctx context.Context, templateUUID, title string) (*model.Document, error) {
	var created *model.Document
	var copiedKey string

	err := s.guard.WithDocument(ctx, DocumentRef(templateUUID), func(exec sqlx.ExtContext, template *model.Document) error {
		if !template.IsTemplate {
			return apperror.InvalidInput("document is not a template")
		}

		if strings.TrimSpace(title) == "" {
			title = template.Title
		}
		normalized, err := normalizeTitle(title)
		if err != nil {
			return err
		}

		document := &model.Document{
			UUID:      uuid.New().String(),
			OwnerUUID: template.OwnerUUID,
			Title:     normalized,
			Status:    model.DocumentStatusDraft,
			Content:   template.Content,
		}

		if template.HasFile() {
			key := versionKey(document.OwnerUUID, document.UUID, 1)
			if err := s.storage.CopyObject(ctx, template.StorageKey, key); err != nil {
				return apperror.Upstream(err, "Failed to copy template file")
			}
			copiedKey = key

			applyFile(document, model.FileRef{
				StorageKey: key,
				FileURL:    s.storage.ObjectURL(key),
				MimeType:   template.MimeType,
				SizeBytes:  template.SizeBytes,
				Sha256:     template.Sha256,
			})
			document.Version = 1
		}

		if err := s.repos.Documents.Create(ctx, exec, document); err != nil {
			return err
		}

		fields, err := s.repos.Fields.ListByDocument(ctx, exec, template.UUID)
		if err != nil {
			return err
		}
		for _, source := range fields {
			field := copyField(source, document.UUID)
			if err := s.repos.Fields.Create(ctx, exec, &field); err != nil {
				return err
			}
		}

		created = document
		return nil
	})
	if err != nil {
		s.discardObject(ctx, copiedKey)
		return nil, err
	}

	zap.L().Info("[DocumentService] документ создан из шаблона",
		zap.String("template_uuid", templateUUID),
		zap.String("document_uuid", created.UUID))

	return created, nil
}

// GetDocument : метаданные из кэша Redis или БД и pre-signed ссылка на текущую версию
func (s *DocumentService) GetDocument(ctx context.Context, documentUUID string) (*model.GetDocumentResult, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	document, err := s.cache.GetDocument(ctx, documentUUID)
	if err != nil {
		zap.L().Warn("[DocumentService] ошибка чтения кэша", zap.Error(err))
		document = nil
	}

	if document != nil && document.OwnerUUID != claims.UserUUID {
		return nil, apperror.Forbidden(documentNotFound)
	}

	if document == nil {
		err := s.guard.Read(ctx, DocumentRef(documentUUID), func(_ sqlx.ExtContext, found *model.Document) error {
			document = found
			return nil
		})
		if err != nil {
			return nil, err
		}
		s.cacheDocument(ctx, document)
	}

	result := &model.GetDocumentResult{Document: document}
	if document.HasFile() {
		result.GetURL, err = s.storage.GeneratePresignedGetURL(ctx, document.StorageKey, s.ttl)
		if err != nil {
			return nil, apperror.Upstream(err, "Failed to load document")
		}
	}

	return result, nil
}

func (s *DocumentService) ListDocuments(ctx context.Context, filter model.DocumentFilter) ([]model.Document, string, error) {
	claims, err := currentUser(ctx)
	if err != nil {
		return nil, "", err
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, "", apperror.InvalidInput(fmt.Sprintf("unknown document status %q", filter.Status))
	}
	if filter.Cursor != "" {
		if _, err := time.Parse(time.RFC3339Nano, filter.Cursor); err != nil {
			return nil, "", apperror.InvalidInput("malformed cursor")
		}
	}

	return s.repos.Documents.ListByOwner(ctx, s.tx.Executor(), claims.UserUUID, filter)
}

func (s *DocumentService) UpdateDocument(ctx context.Context, documentUUID string, patch model.DocumentPatch) (*model.Document, error) {
	var updated *model.Document

	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}

		if patch.Title != nil {
			title, err := normalizeTitle(*patch.Title)
			if err != nil {
				return err
			}
			document.Title = title
		}
		if patch.Content != nil {
			document.Content = *patch.Content
		}
		if patch.IsTemplate != nil {
			document.IsTemplate = *patch.IsTemplate
		}

		if err := s.repos.Documents.Update(ctx, exec, document); err != nil {
			return err
		}

		updated = document
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, documentUUID)
	return updated, nil
}

// ReplaceFile : новая версия PDF, пока документ черновик
func (s *DocumentService) ReplaceFile(ctx context.Context, documentUUID string, file model.UploadedFile) (*model.Document, error) {
	if err := validatePDF(&file); err != nil {
		return nil, err
	}

	var updated *model.Document
	var uploadedKey string

	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if document.Status != model.DocumentStatusDraft {
			return apperror.Conflict("File can only be replaced while the document is a draft")
		}

		key := versionKey(document.OwnerUUID, document.UUID, document.Version+1)
		if err := s.storage.PutObject(ctx, key, file.Data, pdfMimeType); err != nil {
			return apperror.Upstream(err, "Failed to upload document")
		}
		uploadedKey = key

		var err error
		updated, err = s.repos.Documents.UpdateFile(ctx, exec, document.UUID, document.Version, s.fileRef(key, file.Data))
		return err
	})
	if err != nil {
		s.discardObject(ctx, uploadedKey)
		return nil, err
	}

	s.invalidate(ctx, documentUUID)

	zap.L().Info("[DocumentService] файл документа заменён",
		zap.String("document_uuid", documentUUID),
		zap.Int("version", updated.Version))

	return updated, nil
}

// DeleteDocument : каскадно удаляет подписантов, поля, подписи, журнал и все версии файла
func (s *DocumentService) DeleteDocument(ctx context.Context, documentUUID string) error {
	var ownerUUID string

	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		ownerUUID = document.OwnerUUID
		return s.repos.Documents.Delete(ctx, exec, document.UUID)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, documentUUID)

	if err := s.storage.DeletePrefix(ctx, documentPrefix(ownerUUID, documentUUID)); err != nil {
		zap.L().Warn("[DocumentService] не удалось удалить файлы документа",
			zap.String("document_uuid", documentUUID),
			zap.Error(err))
	}

	zap.L().Info("[DocumentService] документ удалён", zap.String("document_uuid", documentUUID))
	return nil
}

// SendDocument : draft|sent -> sent и письмо каждому, кто ещё не подписал.
// Частично подписанный документ остаётся signed, письма получают оставшиеся подписанты.
// Письма отправляются после коммита, ошибка одного письма не отменяет остальные
func (s *DocumentService) SendDocument(ctx context.Context, documentUUID string) (*model.SendResult, error) {
	var sent *model.Document
	var pending []model.Recipient
	var senderEmail string

	err := s.guard.WithDocument(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		if !document.HasFile() {
			return apperror.InvalidInput("Document has no file")
		}
		if document.IsCompleted() {
			return apperror.Conflict("Document is already completed")
		}

		recipients, err := s.repos.Recipients.ListByDocument(ctx, exec, document.UUID)
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			return apperror.InvalidInput("Document has no recipients")
		}

		now := utcNow()
		for i := range recipients {
			recipient := &recipients[i]
			if recipient.HasSigned() {
				continue
			}
			if !recipient.TokenValid(now) {
				token, expiry, err := issueToken(s.signing)
				if err != nil {
					return err
				}
				if err := s.repos.Recipients.UpdateToken(ctx, exec, recipient.UUID, token, expiry); err != nil {
					return err
				}
				recipient.Token, recipient.TokenExpiry = token, expiry
			}
			pending = append(pending, *recipient)
		}

		if document.Status != model.DocumentStatusSigned {
			if err := s.repos.Documents.UpdateStatus(ctx, exec, document.UUID, model.DocumentStatusSent,
				model.DocumentStatusDraft, model.DocumentStatusSent); err != nil {
				return err
			}
			document.Status = model.DocumentStatusSent
		}

		details := fmt.Sprintf("recipients=%d", len(pending))
		if err := s.accessLogs.Record(ctx, exec, logEntry(document.UUID, nil, model.AccessActionDocumentSent, model.RequestMeta{}, details)); err != nil {
			return err
		}

		if owner, err := s.repos.Users.FindByUUID(ctx, exec, document.OwnerUUID); err == nil {
			senderEmail = owner.Email
		}

		sent = document
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, documentUUID)

	result := &model.SendResult{Document: sent, Recipients: make([]model.RecipientSendResult, 0, len(pending))}
	for _, recipient := range pending {
		result.Recipients = append(result.Recipients, s.deliver(ctx, sent, recipient, senderEmail))
	}

	s.notifications.publish(ctx, model.EventDocumentSent, sent, "")

	zap.L().Info("[DocumentService] документ отправлен",
		zap.String("document_uuid", documentUUID),
		zap.Int("recipients", len(result.Recipients)),
		zap.Int("failed", result.FailedCount()))

	return result, nil
}

// deliver : одно письмо без повторов, результат пишется в журнал
func (s *DocumentService) deliver(ctx context.Context, document *model.Document, recipient model.Recipient, senderEmail string) model.RecipientSendResult {
	result := model.RecipientSendResult{RecipientUUID: recipient.UUID, Email: recipient.Email}

	message, err := notifier.RenderSigningRequest(notifier.SigningRequest{
		RecipientName:  recipient.Name,
		RecipientEmail: recipient.Email,
		SenderEmail:    senderEmail,
		DocumentTitle:  document.Title,
		SigningURL:     notifier.SigningURL(s.signing.PublicBaseURL, document.UUID, recipient.Token),
		ExpiresAt:      recipient.TokenExpiry,
	})

	action := model.AccessActionEmailSent
	var details string
	if err == nil {
		details, err = s.notifications.Mailer.Send(ctx, message)
	}
	if err != nil {
		action = model.AccessActionEmailFailed
		details = err.Error()
		result.Error = "Failed to send email"
		zap.L().Warn("[DocumentService] письмо подписанту не отправлено",
			zap.String("document_uuid", document.UUID),
			zap.String("recipient_uuid", recipient.UUID),
			zap.Error(err))
	} else {
		result.Sent = true
	}

	if s.notifications.Metrics != nil {
		s.notifications.Metrics.EmailSent(s.notifications.Provider, result.Sent)
	}

	recipientUUID := recipient.UUID
	entry := logEntry(document.UUID, &recipientUUID, action, model.RequestMeta{}, details)
	if err := s.accessLogs.Record(ctx, s.tx.Executor(), entry); err != nil {
		zap.L().Warn("[DocumentService] не удалось записать результат отправки", zap.Error(err))
	}

	return result
}

func (s *DocumentService) ListSignatures(ctx context.Context, documentUUID string) ([]model.Signature, error) {
	var signatures []model.Signature
	err := s.guard.Read(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		var err error
		signatures, err = s.repos.Signatures.ListByDocument(ctx, exec, document.UUID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return signatures, nil
}

func (s *DocumentService) ListAccessLogs(ctx context.Context, documentUUID string, limit int) ([]model.AccessLog, error) {
	return s.accessLogs.List(ctx, documentUUID, limit)
}

func (s *DocumentService) inTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeInternal, "failed to begin transaction")
	}
	defer rollback()

	if err := fn(exec); err != nil {
		return err
	}
	return commit()
}

func (s *DocumentService) fileRef(key string, data []byte) model.FileRef {
	return fileRefFor(s.storage, key, data)
}

func fileRefFor(storage ports.S3Storage, key string, data []byte) model.FileRef {
	sum := sha256.Sum256(data)
	return model.FileRef{
		StorageKey: key,
		FileURL:    storage.ObjectURL(key),
		MimeType:   pdfMimeType,
		SizeBytes:  int64(len(data)),
		Sha256:     hex.EncodeToString(sum[:]),
	}
}

func (s *DocumentService) cacheDocument(ctx context.Context, document *model.Document) {
	if err := s.cache.SetDocument(ctx, document); err != nil {
		zap.L().Warn("[DocumentService] ошибка кэширования документа", zap.Error(err))
	}
}

func (s *DocumentService) invalidate(ctx context.Context, documentUUID string) {
	if err := s.cache.DeleteDocument(ctx, documentUUID); err != nil {
		zap.L().Warn("[DocumentService] ошибка удаления документа из кэша", zap.Error(err))
	}
}

// discardObject : объект, загруженный в отменённой операции, больше никем не используется
func (s *DocumentService) discardObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		zap.L().Warn("[DocumentService] не удалось удалить загруженный объект",
			zap.String("key", key),
			zap.Error(err))
	}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.InvalidInput("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", apperror.InvalidInput(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}

// validatePDF : принимаются только PDF, тип определяется по сигнатуре файла
func validatePDF(file *model.UploadedFile) error {
	if file == nil || len(file.Data) == 0 {
		return apperror.InvalidInput("file is empty")
	}
	if !bytes.HasPrefix(file.Data, []byte("%PDF-")) {
		return apperror.InvalidInput("only PDF files are supported")
	}
	return nil
}

func applyFile(document *model.Document, file model.FileRef) {
	document.StorageKey = file.StorageKey
	document.FileURL = file.FileURL
	document.MimeType = file.MimeType
	document.SizeBytes = file.SizeBytes
	document.Sha256 = file.Sha256
}

func copyField(source model.SignatureField, documentUUID string) model.SignatureField {
	return model.SignatureField{
		UUID:         uuid.New().String(),
		DocumentUUID: documentUUID,
		PageNumber:   source.PageNumber,
		X:            source.X,
		Y:            source.Y,
		Width:        source.Width,
		Height:       source.Height,
		Type:         source.Type,
		Label:        source.Label,
		Required:     source.Required,
	}
}
