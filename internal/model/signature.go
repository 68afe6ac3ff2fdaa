package model

import "time"

// Signature : запись аудита о значении поля, внесённом при подписании
type Signature struct {
	UUID          string    `db:"uuid" json:"uuid"`
	DocumentUUID  string    `db:"document_uuid" json:"document_uuid"`
	RecipientUUID string    `db:"recipient_uuid" json:"recipient_uuid"`
	FieldUUID     *string   `db:"field_uuid" json:"field_uuid,omitempty"`
	Value         string    `db:"signature_data" json:"value"`
	IPAddress     string    `db:"ip_address" json:"ip_address"`
	UserAgent     string    `db:"user_agent" json:"user_agent"`
	Location      string    `db:"location" json:"location,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// RequestMeta : откуда пришёл запрос подписанта
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Location  string
}

// SigningSession : то, что видит подписант по своей ссылке
type SigningSession struct {
	Document  *Document        `json:"document"`
	Recipient *Recipient       `json:"recipient"`
	Fields    []SignatureField `json:"fields"`
	GetURL    string           `json:"get_url"`
}

type SignResult struct {
	Document  *Document  `json:"document"`
	Recipient *Recipient `json:"recipient"`
	GetURL    string     `json:"get_url"`
}
