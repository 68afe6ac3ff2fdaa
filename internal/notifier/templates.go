package notifier

import (
	"bytes"
	"esign-web-server/internal/model"
	"fmt"
	"text/template"
	"time"
)

// SigningRequest : данные письма с приглашением подписать документ
type SigningRequest struct {
	RecipientName  string
	RecipientEmail string
	SenderEmail    string
	DocumentTitle  string
	SigningURL     string
	ExpiresAt      time.Time
}

var signingRequestTemplate = template.Must(template.New("signing_request").Parse(
	`Hello{{if .RecipientName}} {{.RecipientName}}{{end}},

{{if .SenderEmail}}{{.SenderEmail}}{{else}}A sender{{end}} has asked you to review and sign "{{.DocumentTitle}}".

Open the document:
{{.SigningURL}}

This link is personal. Do not forward it. It expires on {{.ExpiresAt.UTC.Format "2006-01-02 15:04 MST"}}.
`))

func RenderSigningRequest(req SigningRequest) (model.EmailMessage, error) {
	var body bytes.Buffer
	if err := signingRequestTemplate.Execute(&body, req); err != nil {
		return model.EmailMessage{}, fmt.Errorf("не удалось сформировать письмо: %w", err)
	}

	return model.EmailMessage{
		To:      req.RecipientEmail,
		Subject: fmt.Sprintf("Please sign: %s", req.DocumentTitle),
		Text:    body.String(),
	}, nil
}

// SigningURL : ссылка подписанта вида {base}/sign/{document}/{token}
func SigningURL(baseURL, documentUUID, token string) string {
	for len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	return fmt.Sprintf("%s/sign/%s/%s", baseURL, documentUUID, token)
}
