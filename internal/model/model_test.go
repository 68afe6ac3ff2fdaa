package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecipientStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to RecipientStatus
		want     bool
	}{
		{RecipientStatusPending, RecipientStatusViewed, true},
		{RecipientStatusPending, RecipientStatusSigned, true},
		{RecipientStatusViewed, RecipientStatusSigned, true},
		{RecipientStatusViewed, RecipientStatusViewed, false},
		{RecipientStatusViewed, RecipientStatusPending, false},
		{RecipientStatusSigned, RecipientStatusViewed, false},
		{RecipientStatusSigned, RecipientStatusSigned, false},
		{RecipientStatus("unknown"), RecipientStatusSigned, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRecipient_TokenValid(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	valid := &Recipient{Token: "abc", TokenExpiry: now.Add(time.Hour)}
	expired := &Recipient{Token: "abc", TokenExpiry: now.Add(-time.Second)}
	empty := &Recipient{TokenExpiry: now.Add(time.Hour)}

	assert.True(t, valid.TokenValid(now))
	assert.False(t, expired.TokenValid(now))
	assert.False(t, empty.TokenValid(now))
}

func TestMissingRequired(t *testing.T) {
	recipient := "r-1"
	other := "r-2"

	fields := []SignatureField{
		{UUID: "f-1", Required: true},
		{UUID: "f-2", Required: true, Value: "data:image/png;base64,AAAA"},
	}
	assert.Equal(t, []string{"f-1"}, MissingRequired(fields, recipient))

	fields[0].Value = "John"
	assert.Empty(t, MissingRequired(fields, recipient))

	assigned := []SignatureField{
		{UUID: "f-3", Required: true, AssigneeUUID: &other},
		{UUID: "f-4", Required: false},
		{UUID: "f-5", Required: true, Value: "   "},
	}
	assert.Equal(t, []string{"f-5"}, MissingRequired(assigned, recipient))
}

func TestSignatureField_WritableBy(t *testing.T) {
	alice, bob := "alice", "bob"

	unassigned := SignatureField{}
	assert.True(t, unassigned.WritableBy(alice))

	unassigned.CompletedBy = &alice
	assert.True(t, unassigned.WritableBy(alice))
	assert.False(t, unassigned.WritableBy(bob))

	assigned := SignatureField{AssigneeUUID: &bob}
	assert.False(t, assigned.WritableBy(alice))
	assert.True(t, assigned.WritableBy(bob))
}

func TestSignatureField_ValidGeometry(t *testing.T) {
	assert.True(t, (&SignatureField{PageNumber: 1, Width: 10, Height: 5}).ValidGeometry())
	assert.False(t, (&SignatureField{PageNumber: 0, Width: 10, Height: 5}).ValidGeometry())
	assert.False(t, (&SignatureField{PageNumber: 1, Width: 0, Height: 5}).ValidGeometry())
	assert.False(t, (&SignatureField{PageNumber: 1, X: -1, Width: 10, Height: 5}).ValidGeometry())
}

func TestSendResult_FailedCount(t *testing.T) {
	result := SendResult{Recipients: []RecipientSendResult{{Sent: true}, {Sent: false}, {Sent: false}}}
	assert.Equal(t, 2, result.FailedCount())
}
