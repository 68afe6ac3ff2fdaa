package notifier

import (
	"bytes"
	"context"
	"errors"
	"esign-web-server/internal/model"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderSigningRequest(t *testing.T) {
	msg, err := RenderSigningRequest(SigningRequest{
		RecipientName:  "Jane",
		RecipientEmail: "jane@example.com",
		SenderEmail:    "owner@example.com",
		DocumentTitle:  "NDA",
		SigningURL:     "https://sign.example.com/sign/doc-1/tok",
		ExpiresAt:      time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", msg.To)
	assert.Equal(t, "Please sign: NDA", msg.Subject)
	assert.Contains(t, msg.Text, "Hello Jane,")
	assert.Contains(t, msg.Text, "owner@example.com has asked you")
	assert.Contains(t, msg.Text, "https://sign.example.com/sign/doc-1/tok")
	assert.Contains(t, msg.Text, "2026-04-01 12:00 UTC")
}

func TestSigningURL_TrimsSlash(t *testing.T) {
	assert.Equal(t, "https://x.test/sign/d/t", SigningURL("https://x.test//", "d", "t"))
}

func TestSMTPMailer_Send(t *testing.T) {
	mailer := NewSMTPMailer("smtp.example.com:587", "user", "pass", "Esign <no-reply@example.com>")

	var gotTo []string
	var gotBody string
	var gotAuth sasl.Client
	mailer.send = func(addr string, a sasl.Client, from string, to []string, r *bytes.Reader) error {
		gotTo = to
		gotAuth = a
		data, _ := io.ReadAll(r)
		gotBody = string(data)
		return nil
	}

	id, err := mailer.Send(context.Background(), model.EmailMessage{To: "jane@example.com", Subject: "Please sign: NDA", Text: "line1\nline2"})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(id, "@example.com>"))
	assert.Equal(t, []string{"jane@example.com"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, gotBody, "To: jane@example.com\r\n")
	assert.Contains(t, gotBody, "line1\r\nline2")
}

func TestSMTPMailer_SendError(t *testing.T) {
	mailer := NewSMTPMailer("smtp.example.com:25", "", "", "no-reply@example.com")
	mailer.send = func(addr string, a sasl.Client, from string, to []string, r *bytes.Reader) error {
		assert.Nil(t, a)
		return errors.New("connection refused")
	}

	_, err := mailer.Send(context.Background(), model.EmailMessage{To: "jane@example.com"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPMailer_CanceledContext(t *testing.T) {
	mailer := NewSMTPMailer("smtp.example.com:25", "", "", "no-reply@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mailer.Send(ctx, model.EmailMessage{To: "jane@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogMailer_Send(t *testing.T) {
	id, err := NewLogMailer(zap.NewNop()).Send(context.Background(), model.EmailMessage{To: "a@b.c"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
