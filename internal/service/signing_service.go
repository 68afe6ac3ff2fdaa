package service

import (
	"context"
	"errors"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/completion"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SigningService : всё, что подписант делает по ссылке с токеном.
// Каждая операция выполняется в одной транзакции
type SigningService struct {
	tx            ports.TxManager
	resolver      *TokenResolver
	repos         Repositories
	accessLogs    *AccessLogService
	cache         ports.CacheRepository
	storage       ports.S3Storage
	engine        ports.CompletionEngine
	notifications Notifications
	ttl           time.Duration
	now           func() time.Time
}

func NewSigningService(
	tx ports.TxManager,
	resolver *TokenResolver,
	repos Repositories,
	accessLogs *AccessLogService,
	cache ports.CacheRepository,
	storage ports.S3Storage,
	engine ports.CompletionEngine,
	notifications Notifications,
	ttl time.Duration,
) *SigningService {
	return &SigningService{
		tx:            tx,
		resolver:      resolver,
		repos:         repos,
		accessLogs:    accessLogs,
		cache:         cache,
		storage:       storage,
		engine:        engine,
		notifications: notifications,
		ttl:           ttl,
		now:           utcNow,
	}
}

// View : документ, подписант и его поля. pending -> viewed выполняется один раз,
// повторный просмотр статус не меняет
func (s *SigningService) View(ctx context.Context, documentUUID, token string, meta model.RequestMeta) (*model.SigningSession, error) {
	var session *model.SigningSession
	var firstView bool

	err := s.inTx(ctx, func(exec sqlx.ExtContext) error {
		recipient, document, err := s.resolve(ctx, exec, documentUUID, token)
		if err != nil {
			return err
		}

		now := s.now()
		if recipient.Status == model.RecipientStatusPending {
			err := s.repos.Recipients.TransitionStatus(ctx, exec, recipient.UUID, model.RecipientStatusViewed,
				[]model.RecipientStatus{model.RecipientStatusPending}, now)
			switch {
			case err == nil:
				recipient.Status = model.RecipientStatusViewed
				recipient.ViewedAt = &now
				firstView = true
			case apperror.CodeOf(err) != apperror.CodeConflict:
				return err
			}
		}

		recipientUUID := recipient.UUID
		if err := s.accessLogs.Record(ctx, exec, logEntry(document.UUID, &recipientUUID, model.AccessActionDocumentViewed, meta, "")); err != nil {
			return err
		}

		fields, err := s.repos.Fields.ListByDocument(ctx, exec, document.UUID)
		if err != nil {
			return err
		}

		session = &model.SigningSession{
			Document:  document,
			Recipient: recipient,
			Fields:    fieldsFor(fields, recipient.UUID),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	session.GetURL, err = s.storage.GeneratePresignedGetURL(ctx, session.Document.StorageKey, s.ttl)
	if err != nil {
		return nil, apperror.Upstream(err, "Failed to load document")
	}

	if firstView {
		s.notifications.publish(ctx, model.EventRecipientViewed, session.Document, session.Recipient.UUID)
	}

	return session, nil
}

// SaveFieldValue : сохранение значения одного поля до подписания
func (s *SigningService) SaveFieldValue(ctx context.Context, documentUUID, token, fieldUUID, value string, meta model.RequestMeta) (*model.SignatureField, error) {
	var saved *model.SignatureField

	err := s.inTx(ctx, func(exec sqlx.ExtContext) error {
		recipient, document, err := s.resolve(ctx, exec, documentUUID, token)
		if err != nil {
			return err
		}
		if err := checkCanWrite(document, recipient); err != nil {
			return err
		}

		if err := validUUID(fieldUUID, "field"); err != nil {
			return err
		}
		field, err := s.repos.Fields.GetByUUID(ctx, exec, fieldUUID)
		if err != nil {
			return err
		}
		if field.DocumentUUID != document.UUID || !field.AssignableTo(recipient.UUID) {
			return apperror.NotFound("Field not found")
		}

		now := s.now()
		if err := s.saveValue(ctx, exec, recipient, field, value, now); err != nil {
			return err
		}

		recipientUUID := recipient.UUID
		entry := logEntry(document.UUID, &recipientUUID, model.AccessActionFieldCompleted, meta, "field="+field.UUID)
		if err := s.accessLogs.Record(ctx, exec, entry); err != nil {
			return err
		}

		saved = field
		return nil
	})
	if err != nil {
		return nil, err
	}

	return saved, nil
}

// Sign : сохраняет переданные значения, проверяет обязательные поля, "прожигает"
// значения подписанта в новую версию PDF и переводит подписанта в signed.
// Документ становится completed, когда подписали все signer и approver
func (s *SigningService) Sign(ctx context.Context, documentUUID, token string, values map[string]string, meta model.RequestMeta) (*model.SignResult, error) {
	var result *model.SignResult
	var uploadedKey string
	var completed bool

	err := s.inTx(ctx, func(exec sqlx.ExtContext) error {
		recipient, document, err := s.resolve(ctx, exec, documentUUID, token)
		if err != nil {
			return err
		}
		if err := checkCanWrite(document, recipient); err != nil {
			return err
		}

		fields, err := s.repos.Fields.ListByDocument(ctx, exec, document.UUID)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.applyValues(ctx, exec, recipient, fields, values, now); err != nil {
			return err
		}

		if missing := model.MissingRequired(fields, recipient.UUID); len(missing) > 0 {
			return apperror.InvalidInput("Required fields are not completed").WithDetails(missing...)
		}

		burned := completedBy(fields, recipient.UUID)
		if len(burned) > 0 {
			key, updated, err := s.burn(ctx, exec, document, burned)
			uploadedKey = key
			if err != nil {
				return err
			}
			document = updated
		}

		err = s.repos.Recipients.TransitionStatus(ctx, exec, recipient.UUID, model.RecipientStatusSigned,
			[]model.RecipientStatus{model.RecipientStatusPending, model.RecipientStatusViewed}, now)
		if err != nil {
			if apperror.CodeOf(err) == apperror.CodeConflict {
				return apperror.Conflict("Document has already been signed by this recipient")
			}
			return err
		}
		recipient.Status = model.RecipientStatusSigned
		recipient.SignedAt = &now

		for _, field := range burned {
			fieldUUID := field.UUID
			signature := &model.Signature{
				UUID:          uuid.New().String(),
				DocumentUUID:  document.UUID,
				RecipientUUID: recipient.UUID,
				FieldUUID:     &fieldUUID,
				Value:         field.Value,
				IPAddress:     meta.IPAddress,
				UserAgent:     meta.UserAgent,
				Location:      meta.Location,
				CreatedAt:     now,
			}
			if err := s.repos.Signatures.Create(ctx, exec, signature); err != nil {
				return err
			}
		}

		recipientUUID := recipient.UUID
		details := fmt.Sprintf("fields=%d version=%d", len(burned), document.Version)
		if err := s.accessLogs.Record(ctx, exec, logEntry(document.UUID, &recipientUUID, model.AccessActionDocumentSigned, meta, details)); err != nil {
			return err
		}

		completed, err = s.allSigned(ctx, exec, document.UUID)
		if err != nil {
			return err
		}

		next := model.DocumentStatusSigned
		if completed {
			next = model.DocumentStatusCompleted
		}
		if err := s.repos.Documents.UpdateStatus(ctx, exec, document.UUID, next,
			model.DocumentStatusSent, model.DocumentStatusSigned); err != nil {
			return err
		}
		document.Status = next

		if completed {
			if err := s.accessLogs.Record(ctx, exec, logEntry(document.UUID, nil, model.AccessActionDocumentDone, meta, "")); err != nil {
				return err
			}
		}

		result = &model.SignResult{Document: document, Recipient: recipient}
		return nil
	})
	if err != nil {
		s.discardObject(ctx, uploadedKey)
		return nil, err
	}

	if err := s.cache.DeleteDocument(ctx, documentUUID); err != nil {
		zap.L().Warn("[SigningService] ошибка удаления документа из кэша", zap.Error(err))
	}

	result.GetURL, err = s.storage.GeneratePresignedGetURL(ctx, result.Document.StorageKey, s.ttl)
	if err != nil {
		zap.L().Warn("[SigningService] не удалось сгенерировать ссылку на подписанный документ", zap.Error(err))
	}

	s.record(func(m ports.MetricsRecorder) { m.DocumentSigned() })
	s.notifications.publish(ctx, model.EventRecipientSigned, result.Document, result.Recipient.UUID)
	if completed {
		s.record(func(m ports.MetricsRecorder) { m.DocumentCompleted() })
		s.notifications.publish(ctx, model.EventDocumentCompleted, result.Document, "")
	}

	zap.L().Info("[SigningService] документ подписан",
		zap.String("document_uuid", documentUUID),
		zap.String("recipient_uuid", result.Recipient.UUID),
		zap.String("status", string(result.Document.Status)))

	return result, nil
}

// resolve : ссылка работает только для отправленного документа с файлом
func (s *SigningService) resolve(ctx context.Context, exec sqlx.ExtContext, documentUUID, token string) (*model.Recipient, *model.Document, error) {
	recipient, document, err := s.resolver.ResolveForDocument(ctx, exec, documentUUID, token)
	if err != nil {
		return nil, nil, err
	}
	if !document.HasFile() || document.Status == model.DocumentStatusDraft {
		return nil, nil, apperror.NotFound(documentNotFound)
	}
	return recipient, document, nil
}

func checkCanWrite(document *model.Document, recipient *model.Recipient) error {
	if document.IsCompleted() {
		return apperror.Conflict("Document is already completed")
	}
	if recipient.HasSigned() {
		return apperror.Conflict("Document has already been signed by this recipient")
	}
	if !recipient.Role.CanSign() {
		return apperror.Forbidden(documentNotFound)
	}
	return nil
}

// applyValues : значения из запроса Sign, в порядке UUID полей
func (s *SigningService) applyValues(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient, fields []model.SignatureField, values map[string]string, now time.Time) error {
	fieldUUIDs := make([]string, 0, len(values))
	for fieldUUID := range values {
		fieldUUIDs = append(fieldUUIDs, fieldUUID)
	}
	sort.Strings(fieldUUIDs)

	index := make(map[string]int, len(fields))
	for i := range fields {
		index[fields[i].UUID] = i
	}

	for _, fieldUUID := range fieldUUIDs {
		i, ok := index[fieldUUID]
		if !ok || !fields[i].AssignableTo(recipient.UUID) {
			return apperror.InvalidInput(fmt.Sprintf("unknown field %s", fieldUUID))
		}
		if err := s.saveValue(ctx, exec, recipient, &fields[i], values[fieldUUID], now); err != nil {
			return err
		}
	}
	return nil
}

func (s *SigningService) saveValue(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient, field *model.SignatureField, value string, now time.Time) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperror.InvalidInput("value is required")
	}
	if !field.WritableBy(recipient.UUID) {
		return apperror.Conflict("Field has been completed by another recipient")
	}
	if field.Type.IsImage() {
		if _, err := completion.DecodeSignatureImage(value); err != nil {
			return apperror.Wrap(err, apperror.CodeInvalidInput, "signature must be a PNG or JPEG image")
		}
	}

	if err := s.repos.Fields.SaveValue(ctx, exec, field.UUID, recipient.UUID, value, now); err != nil {
		return err
	}

	recipientUUID := recipient.UUID
	field.Value = value
	field.CompletedBy = &recipientUUID
	field.CompletedAt = &now
	return nil
}

// burn : новая версия файла с значениями подписанта, возвращает ключ загруженного объекта
func (s *SigningService) burn(ctx context.Context, exec sqlx.ExtContext, document *model.Document, fields []model.SignatureField) (string, *model.Document, error) {
	source, err := s.storage.GetObject(ctx, document.StorageKey)
	if err != nil {
		return "", nil, apperror.Upstream(err, "Failed to load document file")
	}

	output, err := s.engine.Complete(ctx, source, fields)
	if err != nil {
		s.record(func(m ports.MetricsRecorder) { m.CompletionFailed() })
		if errors.Is(err, completion.ErrUndecodableImage) || errors.Is(err, completion.ErrMissingPage) {
			return "", nil, apperror.Wrap(err, apperror.CodeInvalidInput, "Failed to save signature")
		}
		return "", nil, apperror.Upstream(util.LogError("[SigningService] ошибка формирования PDF", err), "Failed to save signature")
	}

	key := versionKey(document.OwnerUUID, document.UUID, document.Version+1)
	if err := s.storage.PutObject(ctx, key, output, pdfMimeType); err != nil {
		return "", nil, apperror.Upstream(err, "Failed to save signature")
	}

	ref := fileRefFor(s.storage, key, output)
	updated, err := s.repos.Documents.UpdateFile(ctx, exec, document.UUID, document.Version, ref)
	if err != nil {
		return key, nil, err
	}
	return key, updated, nil
}

func (s *SigningService) allSigned(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (bool, error) {
	recipients, err := s.repos.Recipients.ListByDocument(ctx, exec, documentUUID)
	if err != nil {
		return false, err
	}

	signers := 0
	for _, recipient := range recipients {
		if !recipient.Role.CanSign() {
			continue
		}
		signers++
		if !recipient.HasSigned() {
			return false, nil
		}
	}
	return signers > 0, nil
}

func (s *SigningService) inTx(ctx context.Context, fn func(exec sqlx.ExtContext) error) error {
	exec, rollback, commit, err := s.tx.BeginTX(ctx)
	if err != nil {
		return util.LogError("[SigningService] не удалось начать транзакцию", err)
	}
	defer rollback()

	if err := fn(exec); err != nil {
		return err
	}

	if err := commit(); err != nil {
		return util.LogError("[SigningService] не удалось закоммитить транзакцию", err)
	}
	return nil
}

func (s *SigningService) record(fn func(m ports.MetricsRecorder)) {
	if s.notifications.Metrics != nil {
		fn(s.notifications.Metrics)
	}
}

func (s *SigningService) discardObject(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.storage.DeleteObject(ctx, key); err != nil {
		zap.L().Warn("[SigningService] не удалось удалить загруженный объект", zap.String("key", key), zap.Error(err))
	}
}

// fieldsFor : поля, которые подписант видит и может заполнить
func fieldsFor(fields []model.SignatureField, recipientUUID string) []model.SignatureField {
	visible := make([]model.SignatureField, 0, len(fields))
	for _, field := range fields {
		if field.AssignableTo(recipientUUID) {
			visible = append(visible, field)
		}
	}
	return visible
}

// completedBy : только значения этого подписанта, поля других уже в файле
func completedBy(fields []model.SignatureField, recipientUUID string) []model.SignatureField {
	var own []model.SignatureField
	for _, field := range fields {
		if field.Completed() && field.CompletedBy != nil && *field.CompletedBy == recipientUUID {
			own = append(own, field)
		}
	}
	return own
}
