package model

import "time"

// User : владелец документов. Подписанты учётных записей не имеют
type User struct {
	UUID              string     `db:"uuid" json:"uuid"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	PasswordChangedAt *time.Time `db:"password_changed_at" json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}
