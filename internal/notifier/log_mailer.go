package notifier

import (
	"context"
	"esign-web-server/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogMailer : для локального запуска, письмо только пишется в лог
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger.Named("mailer")}
}

func (m *LogMailer) Send(ctx context.Context, message model.EmailMessage) (string, error) {
	id := uuid.New().String()
	m.logger.Info("письмо не отправлено, провайдер log",
		zap.String("message_id", id),
		zap.String("to", message.To),
		zap.String("subject", message.Subject),
		zap.String("body", message.Text))
	return id, nil
}
