package service_test

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecipientService_AddRecipients(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA"})
	require.NoError(t, err)

	added, err := env.recipients.AddRecipients(ownerCtx(), document.UUID, []model.NewRecipient{
		{Email: "Jane Doe <Jane@Example.com>"},
		{Email: "viewer@example.com", Name: "Viewer", Role: model.RecipientRoleViewer},
	})
	require.NoError(t, err)
	require.Len(t, added, 2)

	assert.Equal(t, "jane@example.com", added[0].Email)
	assert.Equal(t, "Jane Doe", added[0].Name)
	assert.Equal(t, model.RecipientRoleSigner, added[0].Role)
	assert.Equal(t, model.RecipientStatusPending, added[0].Status)
	assert.Len(t, added[0].Token, 32)
	assert.NotEqual(t, added[0].Token, added[1].Token)
	assert.True(t, added[0].TokenValid(added[0].CreatedAt))

	_, err = env.recipients.AddRecipients(ownerCtx(), document.UUID, []model.NewRecipient{{Email: "JANE@example.com"}})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	listed, err := env.recipients.ListRecipients(ownerCtx(), document.UUID)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestRecipientService_AddRecipients_Invalid(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		ctx    context.Context
		inputs []model.NewRecipient
		code   apperror.Code
	}{
		{"empty list", ownerCtx(), nil, apperror.CodeInvalidInput},
		{"bad email", ownerCtx(), []model.NewRecipient{{Email: "not-an-email"}}, apperror.CodeInvalidInput},
		{"bad role", ownerCtx(), []model.NewRecipient{{Email: "a@example.com", Role: "witness"}}, apperror.CodeInvalidInput},
		{"listed twice", ownerCtx(), []model.NewRecipient{{Email: "a@example.com"}, {Email: "A@example.com"}}, apperror.CodeInvalidInput},
		{"stranger", asUser(strangerUUID), []model.NewRecipient{{Email: "a@example.com"}}, apperror.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.recipients.AddRecipients(tt.ctx, document.UUID, tt.inputs)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
	assert.Empty(t, env.store.recipients)
}

func TestRecipientService_UpdateRecipient(t *testing.T) {
	env := newTestEnv(t)

	document, recipients := sentDocument(t, env, []model.NewRecipient{{Email: "a@example.com"}, {Email: "b@example.com"}})

	email := "c@example.com"
	updated, err := env.recipients.UpdateRecipient(ownerCtx(), recipients[0].UUID, model.RecipientPatch{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)

	taken := "B@example.com"
	_, err = env.recipients.UpdateRecipient(ownerCtx(), recipients[0].UUID, model.RecipientPatch{Email: &taken})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))

	_, err = env.signing.View(context.Background(), document.UUID, recipients[1].Token, model.RequestMeta{})
	require.NoError(t, err)

	name := "Bob"
	_, err = env.recipients.UpdateRecipient(ownerCtx(), recipients[1].UUID, model.RecipientPatch{Name: &name})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}

func TestRecipientService_DeleteRecipient(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA", File: pdfUpload()})
	require.NoError(t, err)
	recipients, err := env.recipients.AddRecipients(ownerCtx(), document.UUID, []model.NewRecipient{{Email: "a@example.com"}, {Email: "b@example.com"}})
	require.NoError(t, err)

	assignee := recipients[0].UUID
	field, err := env.fields.PlaceField(ownerCtx(), document.UUID, model.NewField{PageNumber: 1, Width: 100, Height: 30, AssigneeUUID: &assignee})
	require.NoError(t, err)

	require.NoError(t, env.recipients.DeleteRecipient(ownerCtx(), recipients[0].UUID))
	assert.Nil(t, env.store.fields[field.UUID].AssigneeUUID)

	_, err = env.documents.SendDocument(ownerCtx(), document.UUID)
	require.NoError(t, err)

	err = env.recipients.DeleteRecipient(ownerCtx(), recipients[1].UUID)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
}
