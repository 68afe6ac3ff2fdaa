package notifier

import (
	"context"
	"esign-web-server/internal/model"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

type MailgunMailer struct {
	mg      mailgun.Mailgun
	from    string
	timeout time.Duration
}

func NewMailgunMailer(domain, apiKey, from string, timeout time.Duration) *MailgunMailer {
	return &MailgunMailer{
		mg:      mailgun.NewMailgun(domain, apiKey),
		from:    from,
		timeout: timeout,
	}
}

func (m *MailgunMailer) Send(ctx context.Context, message model.EmailMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg := m.mg.NewMessage(m.from, message.Subject, message.Text, message.To)

	_, id, err := m.mg.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("mailgun: %w", err)
	}
	return id, nil
}
