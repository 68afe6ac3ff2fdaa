package service

import (
	"context"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const defaultAccessLogLimit = 100

// AccessLogService : журнал только дописывается, читать его может только владелец документа
type AccessLogService struct {
	guard      *PermissionGuard
	accessLogs ports.AccessLogRepository
}

func NewAccessLogService(guard *PermissionGuard, accessLogs ports.AccessLogRepository) *AccessLogService {
	return &AccessLogService{guard: guard, accessLogs: accessLogs}
}

func (s *AccessLogService) Record(ctx context.Context, exec sqlx.ExtContext, entry *model.AccessLog) error {
	if entry.UUID == "" {
		entry.UUID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = utcNow()
	}

	return s.accessLogs.Create(ctx, exec, entry)
}

// List : новые записи первыми
func (s *AccessLogService) List(ctx context.Context, documentUUID string, limit int) ([]model.AccessLog, error) {
	if limit <= 0 {
		limit = defaultAccessLogLimit
	}

	var entries []model.AccessLog
	err := s.guard.Read(ctx, DocumentRef(documentUUID), func(exec sqlx.ExtContext, document *model.Document) error {
		var err error
		entries, err = s.accessLogs.ListByDocument(ctx, exec, document.UUID, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func logEntry(documentUUID string, recipientUUID *string, action model.AccessAction, meta model.RequestMeta, details string) *model.AccessLog {
	return &model.AccessLog{
		DocumentUUID:  documentUUID,
		RecipientUUID: recipientUUID,
		Action:        action,
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		Location:      meta.Location,
		Details:       details,
	}
}
