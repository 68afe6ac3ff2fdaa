package model

import "time"

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "draft"
	DocumentStatusSent      DocumentStatus = "sent"
	DocumentStatusSigned    DocumentStatus = "signed"
	DocumentStatusCompleted DocumentStatus = "completed"
)

func (s DocumentStatus) Valid() bool {
	switch s {
	case DocumentStatusDraft, DocumentStatusSent, DocumentStatusSigned, DocumentStatusCompleted:
		return true
	}
	return false
}

type Document struct {
	UUID       string         `db:"uuid" json:"uuid"`
	OwnerUUID  string         `db:"owner_uuid" json:"owner_uuid"`
	Title      string         `db:"title" json:"title"`
	Status     DocumentStatus `db:"status" json:"status"`
	Content    string         `db:"content" json:"content,omitempty"`
	StorageKey string         `db:"storage_key" json:"storage_key,omitempty"`
	FileURL    string         `db:"file_url" json:"file_url,omitempty"`
	MimeType   string         `db:"mime_type" json:"mime_type,omitempty"`
	SizeBytes  int64          `db:"size_bytes" json:"size_bytes"`
	Sha256     string         `db:"sha256" json:"sha256,omitempty"`
	Version    int            `db:"version" json:"version"`
	IsTemplate bool           `db:"is_template" json:"is_template"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// HasFile : у документа есть загруженный PDF, который можно показать и подписать
func (d *Document) HasFile() bool {
	return d != nil && d.StorageKey != ""
}

func (d *Document) IsCompleted() bool {
	return d != nil && d.Status == DocumentStatusCompleted
}

// FileRef : ссылка на конкретную версию файла в хранилище
type FileRef struct {
	StorageKey string
	FileURL    string
	MimeType   string
	SizeBytes  int64
	Sha256     string
}

// UploadedFile : файл, полученный от владельца
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type NewDocument struct {
	Title      string
	Content    string
	IsTemplate bool
	File       *UploadedFile
}

// DocumentPatch : nil поля не изменяются
type DocumentPatch struct {
	Title      *string
	Content    *string
	IsTemplate *bool
}

type DocumentFilter struct {
	Status     DocumentStatus
	IsTemplate *bool
	Cursor     string
	Limit      int
}

type GetDocumentResult struct {
	Document *Document
	GetURL   string // pre-signed URL на текущую версию файла, если он есть
}

// RecipientSendResult : результат отправки письма одному подписанту
type RecipientSendResult struct {
	RecipientUUID string `json:"recipient_uuid"`
	Email         string `json:"email"`
	Sent          bool   `json:"sent"`
	Error         string `json:"error,omitempty"`
}

type SendResult struct {
	Document   *Document             `json:"document"`
	Recipients []RecipientSendResult `json:"recipients"`
}

func (r *SendResult) FailedCount() int {
	failed := 0
	for _, recipient := range r.Recipients {
		if !recipient.Sent {
			failed++
		}
	}
	return failed
}
