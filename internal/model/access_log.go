package model

import "time"

type AccessAction string

const (
	AccessActionDocumentViewed AccessAction = "document_viewed"
	AccessActionFieldCompleted AccessAction = "field_completed"
	AccessActionDocumentSigned AccessAction = "document_signed"
	AccessActionDocumentDone   AccessAction = "document_completed"
	AccessActionEmailSent      AccessAction = "email_sent"
	AccessActionEmailFailed    AccessAction = "email_failed"
	AccessActionDocumentSent   AccessAction = "document_sent"
)

// AccessLog : журнал действий над документом, только дописывается
type AccessLog struct {
	UUID          string       `db:"uuid" json:"uuid"`
	DocumentUUID  string       `db:"document_uuid" json:"document_uuid"`
	RecipientUUID *string      `db:"recipient_uuid" json:"recipient_uuid,omitempty"`
	Action        AccessAction `db:"action" json:"action"`
	IPAddress     string       `db:"ip_address" json:"ip_address,omitempty"`
	UserAgent     string       `db:"user_agent" json:"user_agent,omitempty"`
	Location      string       `db:"location" json:"location,omitempty"`
	Details       string       `db:"details" json:"details,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}
