package service_test

import (
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldService_PlaceField(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA", File: pdfUpload()})
	require.NoError(t, err)

	field, err := env.fields.PlaceField(ownerCtx(), document.UUID, model.NewField{PageNumber: 1, X: 50, Y: 100, Width: 200, Height: 50})
	require.NoError(t, err)
	assert.Equal(t, model.FieldTypeSignature, field.Type)
	assert.Equal(t, "signature", field.Label)
	assert.Nil(t, field.AssigneeUUID)

	other, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "Other"})
	require.NoError(t, err)
	strangers, err := env.recipients.AddRecipients(ownerCtx(), other.UUID, []model.NewRecipient{{Email: "x@example.com"}})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input model.NewField
	}{
		{"page zero", model.NewField{PageNumber: 0, Width: 10, Height: 10}},
		{"negative x", model.NewField{PageNumber: 1, X: -1, Width: 10, Height: 10}},
		{"zero width", model.NewField{PageNumber: 1, Height: 10}},
		{"unknown type", model.NewField{PageNumber: 1, Width: 10, Height: 10, Type: "checkbox"}},
		{"foreign assignee", model.NewField{PageNumber: 1, Width: 10, Height: 10, AssigneeUUID: &strangers[0].UUID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.fields.PlaceField(ownerCtx(), document.UUID, tt.input)
			assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
		})
	}

	_, err = env.fields.PlaceField(asUser(strangerUUID), document.UUID, model.NewField{PageNumber: 1, Width: 10, Height: 10})
	assert.Equal(t, apperror.CodeForbidden, apperror.CodeOf(err))
}

func TestFieldService_ListFields_Order(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA", File: pdfUpload()})
	require.NoError(t, err)

	for _, input := range []model.NewField{
		{PageNumber: 2, X: 0, Y: 0, Width: 10, Height: 10, Label: "c"},
		{PageNumber: 1, X: 50, Y: 300, Width: 10, Height: 10, Label: "b"},
		{PageNumber: 1, X: 10, Y: 100, Width: 10, Height: 10, Label: "a"},
	} {
		_, err := env.fields.PlaceField(ownerCtx(), document.UUID, input)
		require.NoError(t, err)
	}

	fields, err := env.fields.ListFields(ownerCtx(), document.UUID)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{fields[0].Label, fields[1].Label, fields[2].Label})
}

func TestFieldService_MoveAndUpdate(t *testing.T) {
	env := newTestEnv(t)

	document, err := env.documents.CreateDocument(ownerCtx(), model.NewDocument{Title: "NDA", File: pdfUpload()})
	require.NoError(t, err)
	recipients, err := env.recipients.AddRecipients(ownerCtx(), document.UUID, []model.NewRecipient{{Email: "a@example.com"}})
	require.NoError(t, err)

	field, err := env.fields.PlaceField(ownerCtx(), document.UUID, model.NewField{PageNumber: 1, X: 10, Y: 10, Width: 100, Height: 30})
	require.NoError(t, err)

	moved, err := env.fields.MoveField(ownerCtx(), field.UUID, 120, 340)
	require.NoError(t, err)
	assert.Equal(t, 120.0, moved.X)
	assert.Equal(t, 340.0, moved.Y)
	assert.Equal(t, 100.0, moved.Width)

	_, err = env.fields.MoveField(ownerCtx(), field.UUID, -5, 0)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))

	fieldType := model.FieldTypeDate
	required := true
	updated, err := env.fields.UpdateField(ownerCtx(), field.UUID, model.FieldPatch{
		Type:         &fieldType,
		Required:     &required,
		AssigneeUUID: &recipients[0].UUID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.FieldTypeDate, updated.Type)
	assert.True(t, updated.Required)
	require.NotNil(t, updated.AssigneeUUID)
	assert.Equal(t, recipients[0].UUID, *updated.AssigneeUUID)

	updated, err = env.fields.UpdateField(ownerCtx(), field.UUID, model.FieldPatch{Unassign: true})
	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeUUID)

	require.NoError(t, env.fields.DeleteField(ownerCtx(), field.UUID))
	_, err = env.fields.MoveField(ownerCtx(), field.UUID, 1, 1)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestFieldService_CompletedDocumentIsFrozen(t *testing.T) {
	env := newTestEnv(t)

	document, recipients := sentDocument(t, env, []model.NewRecipient{{Email: "a@example.com"}})
	field, err := env.fields.PlaceField(ownerCtx(), document.UUID, model.NewField{PageNumber: 1, Type: model.FieldTypeName, Width: 100, Height: 20})
	require.NoError(t, err)

	_, err = env.signing.Sign(ownerCtx(), document.UUID, recipients[0].Token, map[string]string{field.UUID: "Jane"}, model.RequestMeta{})
	require.NoError(t, err)

	_, err = env.fields.MoveField(ownerCtx(), field.UUID, 1, 1)
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
	_, err = env.fields.PlaceField(ownerCtx(), document.UUID, model.NewField{PageNumber: 1, Width: 10, Height: 10})
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
	assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(env.fields.DeleteField(ownerCtx(), field.UUID)))
}
