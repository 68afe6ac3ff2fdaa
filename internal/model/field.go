package model

import (
	"strings"
	"time"
)

type FieldType string

const (
	FieldTypeSignature FieldType = "signature"
	FieldTypeText      FieldType = "text"
	FieldTypeDate      FieldType = "date"
	FieldTypeName      FieldType = "name"
	FieldTypeEmail     FieldType = "email"
	FieldTypePhone     FieldType = "phone"
	FieldTypeCustom    FieldType = "custom"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldTypeSignature, FieldTypeText, FieldTypeDate, FieldTypeName,
		FieldTypeEmail, FieldTypePhone, FieldTypeCustom:
		return true
	}
	return false
}

// IsImage : значение поля это картинка (data URL или base64), остальные типы выводятся текстом
func (t FieldType) IsImage() bool {
	return t == FieldTypeSignature
}

// SignatureField : прямоугольник на странице документа.
// Координаты в единицах PDF, начало в левом верхнем углу, y растёт вниз
type SignatureField struct {
	UUID         string     `db:"uuid" json:"uuid"`
	DocumentUUID string     `db:"document_uuid" json:"document_uuid"`
	AssigneeUUID *string    `db:"recipient_uuid" json:"recipient_uuid,omitempty"`
	PageNumber   int        `db:"page_number" json:"page_number"`
	X            float64    `db:"x" json:"x"`
	Y            float64    `db:"y" json:"y"`
	Width        float64    `db:"width" json:"width"`
	Height       float64    `db:"height" json:"height"`
	Type         FieldType  `db:"field_type" json:"field_type"`
	Label        string     `db:"label" json:"label"`
	Required     bool       `db:"required" json:"required"`
	Value        string     `db:"signature_data" json:"value,omitempty"`
	CompletedBy  *string    `db:"completed_by" json:"completed_by,omitempty"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

func (f *SignatureField) Completed() bool {
	return strings.TrimSpace(f.Value) != ""
}

// AssignableTo : поле без назначения может заполнить любой подписант документа
func (f *SignatureField) AssignableTo(recipientUUID string) bool {
	return f.AssigneeUUID == nil || *f.AssigneeUUID == recipientUUID
}

// WritableBy : заполненное другим подписантом поле переписать нельзя
func (f *SignatureField) WritableBy(recipientUUID string) bool {
	if !f.AssignableTo(recipientUUID) {
		return false
	}
	return f.CompletedBy == nil || *f.CompletedBy == recipientUUID
}

// ValidGeometry : страница с 1, размеры положительные, координаты не отрицательные
func (f *SignatureField) ValidGeometry() bool {
	return f.PageNumber >= 1 && f.X >= 0 && f.Y >= 0 && f.Width > 0 && f.Height > 0
}

// MissingRequired : обязательные поля, доступные подписанту и ещё не заполненные
func MissingRequired(fields []SignatureField, recipientUUID string) []string {
	var missing []string
	for i := range fields {
		field := &fields[i]
		if field.Required && field.AssignableTo(recipientUUID) && !field.Completed() {
			missing = append(missing, field.UUID)
		}
	}
	return missing
}

// DefaultLabel : подпись поля по умолчанию совпадает с его типом
func DefaultLabel(t FieldType) string {
	if t == "" {
		return string(FieldTypeSignature)
	}
	return string(t)
}

type NewField struct {
	PageNumber   int
	X            float64
	Y            float64
	Width        float64
	Height       float64
	Type         FieldType
	Label        string
	Required     bool
	AssigneeUUID *string
}

type FieldPatch struct {
	PageNumber   *int
	X            *float64
	Y            *float64
	Width        *float64
	Height       *float64
	Type         *FieldType
	Label        *string
	Required     *bool
	AssigneeUUID *string
	Unassign     bool
}
