package repository

import (
	"database/sql"
	"esign-web-server/internal/model"
	"strings"
	"time"
)

// Строки БД допускают NULL и старые значения, модель получает уже нормализованные данные

type documentRow struct {
	UUID       string         `db:"uuid"`
	OwnerUUID  string         `db:"owner_uuid"`
	Title      string         `db:"title"`
	Status     sql.NullString `db:"status"`
	Content    sql.NullString `db:"content"`
	StorageKey sql.NullString `db:"storage_key"`
	FileURL    sql.NullString `db:"file_url"`
	MimeType   sql.NullString `db:"mime_type"`
	SizeBytes  sql.NullInt64  `db:"size_bytes"`
	Sha256     sql.NullString `db:"sha256"`
	Version    sql.NullInt64  `db:"version"`
	IsTemplate sql.NullBool   `db:"is_template"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (r documentRow) toModel() *model.Document {
	status := model.DocumentStatus(r.Status.String)
	if !status.Valid() {
		status = model.DocumentStatusDraft
	}

	return &model.Document{
		UUID:       r.UUID,
		OwnerUUID:  r.OwnerUUID,
		Title:      r.Title,
		Status:     status,
		Content:    r.Content.String,
		StorageKey: r.StorageKey.String,
		FileURL:    r.FileURL.String,
		MimeType:   r.MimeType.String,
		SizeBytes:  r.SizeBytes.Int64,
		Sha256:     r.Sha256.String,
		Version:    int(r.Version.Int64),
		IsTemplate: r.IsTemplate.Bool,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type recipientRow struct {
	UUID         string         `db:"uuid"`
	DocumentUUID string         `db:"document_uuid"`
	Email        string         `db:"email"`
	Name         sql.NullString `db:"name"`
	Role         sql.NullString `db:"role"`
	Status       sql.NullString `db:"status"`
	Token        sql.NullString `db:"token"`
	TokenExpiry  sql.NullTime   `db:"token_expiry"`
	ViewedAt     sql.NullTime   `db:"viewed_at"`
	SignedAt     sql.NullTime   `db:"signed_at"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r recipientRow) toModel() *model.Recipient {
	role := model.RecipientRole(r.Role.String)
	if !role.Valid() {
		role = model.RecipientRoleSigner
	}

	status := model.RecipientStatus(r.Status.String)
	switch status {
	case model.RecipientStatusPending, model.RecipientStatusViewed, model.RecipientStatusSigned:
	default:
		status = model.RecipientStatusPending
	}

	return &model.Recipient{
		UUID:         r.UUID,
		DocumentUUID: r.DocumentUUID,
		Email:        r.Email,
		Name:         r.Name.String,
		Role:         role,
		Status:       status,
		Token:        r.Token.String,
		TokenExpiry:  r.TokenExpiry.Time,
		ViewedAt:     nullTimePtr(r.ViewedAt),
		SignedAt:     nullTimePtr(r.SignedAt),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type fieldRow struct {
	UUID          string         `db:"uuid"`
	DocumentUUID  string         `db:"document_uuid"`
	RecipientUUID sql.NullString `db:"recipient_uuid"`
	PageNumber    int            `db:"page_number"`
	X             float64        `db:"x"`
	Y             float64        `db:"y"`
	Width         float64        `db:"width"`
	Height        float64        `db:"height"`
	FieldType     sql.NullString `db:"field_type"`
	Label         sql.NullString `db:"label"`
	Required      sql.NullBool   `db:"required"`
	SignatureData sql.NullString `db:"signature_data"`
	CompletedBy   sql.NullString `db:"completed_by"`
	CompletedAt   sql.NullTime   `db:"completed_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r fieldRow) toModel() model.SignatureField {
	fieldType := model.FieldType(r.FieldType.String)
	if !fieldType.Valid() {
		fieldType = model.FieldTypeSignature
	}

	label := strings.TrimSpace(r.Label.String)
	if label == "" {
		label = model.DefaultLabel(fieldType)
	}

	required := true
	if r.Required.Valid {
		required = r.Required.Bool
	}

	return model.SignatureField{
		UUID:         r.UUID,
		DocumentUUID: r.DocumentUUID,
		AssigneeUUID: nullStringPtr(r.RecipientUUID),
		PageNumber:   r.PageNumber,
		X:            r.X,
		Y:            r.Y,
		Width:        r.Width,
		Height:       r.Height,
		Type:         fieldType,
		Label:        label,
		Required:     required,
		Value:        r.SignatureData.String,
		CompletedBy:  nullStringPtr(r.CompletedBy),
		CompletedAt:  nullTimePtr(r.CompletedAt),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type accessLogRow struct {
	UUID          string         `db:"uuid"`
	DocumentUUID  string         `db:"document_uuid"`
	RecipientUUID sql.NullString `db:"recipient_uuid"`
	Action        string         `db:"action"`
	IPAddress     sql.NullString `db:"ip_address"`
	UserAgent     sql.NullString `db:"user_agent"`
	Location      sql.NullString `db:"location"`
	Details       sql.NullString `db:"details"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r accessLogRow) toModel() model.AccessLog {
	return model.AccessLog{
		UUID:          r.UUID,
		DocumentUUID:  r.DocumentUUID,
		RecipientUUID: nullStringPtr(r.RecipientUUID),
		Action:        model.AccessAction(r.Action),
		IPAddress:     r.IPAddress.String,
		UserAgent:     r.UserAgent.String,
		Location:      r.Location.String,
		Details:       r.Details.String,
		CreatedAt:     r.CreatedAt,
	}
}

type signatureRow struct {
	UUID          string         `db:"uuid"`
	DocumentUUID  string         `db:"document_uuid"`
	RecipientUUID string         `db:"recipient_uuid"`
	FieldUUID     sql.NullString `db:"field_uuid"`
	SignatureData string         `db:"signature_data"`
	IPAddress     sql.NullString `db:"ip_address"`
	UserAgent     sql.NullString `db:"user_agent"`
	Location      sql.NullString `db:"location"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (r signatureRow) toModel() model.Signature {
	return model.Signature{
		UUID:          r.UUID,
		DocumentUUID:  r.DocumentUUID,
		RecipientUUID: r.RecipientUUID,
		FieldUUID:     nullStringPtr(r.FieldUUID),
		Value:         r.SignatureData,
		IPAddress:     r.IPAddress.String,
		UserAgent:     r.UserAgent.String,
		Location:      r.Location.String,
		CreatedAt:     r.CreatedAt,
	}
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	value := s.String
	return &value
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	value := t.Time
	return &value
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullIfNil(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return nullIfEmpty(*s)
}
