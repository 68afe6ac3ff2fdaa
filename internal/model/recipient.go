package model

import "time"

type RecipientStatus string

const (
	RecipientStatusPending RecipientStatus = "pending"
	RecipientStatusViewed  RecipientStatus = "viewed"
	RecipientStatusSigned  RecipientStatus = "signed"
)

func (s RecipientStatus) rank() int {
	switch s {
	case RecipientStatusPending:
		return 0
	case RecipientStatusViewed:
		return 1
	case RecipientStatusSigned:
		return 2
	}
	return -1
}

// CanTransitionTo : статус подписанта только растёт, pending -> viewed -> signed (viewed можно пропустить)
func (s RecipientStatus) CanTransitionTo(next RecipientStatus) bool {
	return s.rank() >= 0 && next.rank() > s.rank()
}

type RecipientRole string

const (
	RecipientRoleSigner   RecipientRole = "signer"
	RecipientRoleViewer   RecipientRole = "viewer"
	RecipientRoleApprover RecipientRole = "approver"
)

func (r RecipientRole) Valid() bool {
	switch r {
	case RecipientRoleSigner, RecipientRoleViewer, RecipientRoleApprover:
		return true
	}
	return false
}

// CanSign : viewer только просматривает документ
func (r RecipientRole) CanSign() bool {
	return r == RecipientRoleSigner || r == RecipientRoleApprover
}

type Recipient struct {
	UUID         string          `db:"uuid" json:"uuid"`
	DocumentUUID string          `db:"document_uuid" json:"document_uuid"`
	Email        string          `db:"email" json:"email"`
	Name         string          `db:"name" json:"name"`
	Role         RecipientRole   `db:"role" json:"role"`
	Status       RecipientStatus `db:"status" json:"status"`
	Token        string          `db:"token" json:"-"`
	TokenExpiry  time.Time       `db:"token_expiry" json:"token_expiry"`
	ViewedAt     *time.Time      `db:"viewed_at" json:"viewed_at,omitempty"`
	SignedAt     *time.Time      `db:"signed_at" json:"signed_at,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

func (r *Recipient) TokenValid(now time.Time) bool {
	return r != nil && r.Token != "" && now.Before(r.TokenExpiry)
}

func (r *Recipient) HasSigned() bool {
	return r != nil && r.Status == RecipientStatusSigned
}

type NewRecipient struct {
	Email string
	Name  string
	Role  RecipientRole
}

type RecipientPatch struct {
	Email *string
	Name  *string
	Role  *RecipientRole
}
