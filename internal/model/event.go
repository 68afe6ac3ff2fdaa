package model

import "time"

type EventType string

const (
	EventDocumentSent      EventType = "document.sent"
	EventRecipientViewed   EventType = "recipient.viewed"
	EventRecipientSigned   EventType = "recipient.signed"
	EventDocumentCompleted EventType = "document.completed"
)

// DocumentEvent : событие жизненного цикла документа для внешних потребителей
type DocumentEvent struct {
	UUID          string         `json:"uuid"`
	Type          EventType      `json:"type"`
	DocumentUUID  string         `json:"document_uuid"`
	OwnerUUID     string         `json:"owner_uuid"`
	RecipientUUID string         `json:"recipient_uuid,omitempty"`
	Status        DocumentStatus `json:"status"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

// EmailMessage : письмо, готовое к отправке
type EmailMessage struct {
	To      string
	Subject string
	Text    string
}
