package notifier

import (
	"bytes"
	"context"
	"esign-web-server/internal/model"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
)

type SMTPMailer struct {
	addr     string
	username string
	password string
	from     string
	send     func(addr string, a sasl.Client, from string, to []string, r *bytes.Reader) error
}

func NewSMTPMailer(addr, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		addr:     addr,
		username: username,
		password: password,
		from:     from,
		send: func(addr string, a sasl.Client, from string, to []string, r *bytes.Reader) error {
			return smtp.SendMail(addr, a, from, to, r)
		},
	}
}

// Send : smtp.SendMail не принимает context, отмена проверяется до отправки
func (m *SMTPMailer) Send(ctx context.Context, message model.EmailMessage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var auth sasl.Client
	if m.username != "" {
		auth = sasl.NewPlainClient("", m.username, m.password)
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.New().String(), domainOf(m.from))
	body := buildMessage(m.from, message, messageID, time.Now())

	if err := m.send(m.addr, auth, m.from, []string{message.To}, bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("smtp: %w", err)
	}
	return messageID, nil
}

func buildMessage(from string, message model.EmailMessage, messageID string, now time.Time) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + message.To + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", message.Subject) + "\r\n")
	b.WriteString("Date: " + now.Format(time.RFC1123Z) + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("Content-Transfer-Encoding: 8bit\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(message.Text, "\n", "\r\n"))
	return []byte(b.String())
}

func domainOf(address string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 {
		return strings.Trim(address[at+1:], "> ")
	}
	return "localhost"
}
