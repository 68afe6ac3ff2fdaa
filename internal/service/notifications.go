package service

import (
	"context"
	"esign-web-server/config"
	"esign-web-server/internal/model"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifications : письма подписантам, события и метрики
type Notifications struct {
	Mailer   ports.Mailer
	Provider string
	Events   ports.EventPublisher
	Metrics  ports.MetricsRecorder
}

// publish : ошибка брокера не отменяет уже закоммиченное действие
func (n Notifications) publish(ctx context.Context, eventType model.EventType, document *model.Document, recipientUUID string) {
	if n.Events == nil {
		return
	}

	event := model.DocumentEvent{
		UUID:          uuid.New().String(),
		Type:          eventType,
		DocumentUUID:  document.UUID,
		OwnerUUID:     document.OwnerUUID,
		RecipientUUID: recipientUUID,
		Status:        document.Status,
		OccurredAt:    utcNow(),
	}

	if err := n.Events.Publish(ctx, event); err != nil {
		zap.L().Warn("[Events] не удалось опубликовать событие",
			zap.String("type", string(eventType)),
			zap.String("document_uuid", document.UUID),
			zap.Error(err))
	}
}

// issueToken : новый токен ссылки и срок его действия
func issueToken(cfg config.SigningConfig) (string, time.Time, error) {
	token, err := util.GenerateSigningToken(cfg.TokenLength)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, utcNow().Add(cfg.TTL()), nil
}
