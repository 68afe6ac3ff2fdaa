package handler_test

import (
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/handler"
	"esign-web-server/internal/model"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func fieldRouter(svc *MockFieldService) chi.Router {
	h := handler.NewFieldHandler(svc)
	r := chi.NewRouter()
	r.Post("/api/docs/{id}/fields", h.PlaceField)
	r.Get("/api/docs/{id}/fields", h.ListFields)
	r.Put("/api/fields/{field_id}/position", h.MoveField)
	r.Patch("/api/fields/{field_id}", h.UpdateField)
	r.Delete("/api/fields/{field_id}", h.DeleteField)
	return r
}

func TestPlaceField(t *testing.T) {
	svc := new(MockFieldService)
	assignee := recipientUUID
	svc.On("PlaceField", mock.Anything, docUUID, model.NewField{
		PageNumber:   1,
		X:            150,
		Y:            650,
		Width:        200,
		Height:       60,
		Type:         model.FieldTypeSignature,
		Required:     true,
		AssigneeUUID: &assignee,
	}).Return(&model.SignatureField{UUID: fieldUUID}, nil)

	body := `{"page_number":1,"x":150,"y":650,"width":200,"height":60,"field_type":"signature","required":true,"recipient_uuid":"` + recipientUUID + `"}`
	rec := serve(fieldRouter(svc), jsonRequest(t, http.MethodPost, "/api/docs/"+docUUID+"/fields", body))

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestMoveField_RequiresBothCoordinates(t *testing.T) {
	svc := new(MockFieldService)

	rec := serve(fieldRouter(svc), jsonRequest(t, http.MethodPut, "/api/fields/"+fieldUUID+"/position", `{"x":10}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "MoveField", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveField(t *testing.T) {
	svc := new(MockFieldService)
	svc.On("MoveField", mock.Anything, fieldUUID, 0.0, 340.5).Return(&model.SignatureField{UUID: fieldUUID, Y: 340.5}, nil)

	rec := serve(fieldRouter(svc), jsonRequest(t, http.MethodPut, "/api/fields/"+fieldUUID+"/position", `{"x":0,"y":340.5}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListFields_EmptyIsArray(t *testing.T) {
	svc := new(MockFieldService)
	svc.On("ListFields", mock.Anything, docUUID).Return(nil, nil)

	rec := serve(fieldRouter(svc), jsonRequest(t, http.MethodGet, "/api/docs/"+docUUID+"/fields", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestDeleteField_CompletedDocumentIsConflict(t *testing.T) {
	svc := new(MockFieldService)
	svc.On("DeleteField", mock.Anything, fieldUUID).Return(apperror.Conflict("document is completed"))

	rec := serve(fieldRouter(svc), jsonRequest(t, http.MethodDelete, "/api/fields/"+fieldUUID, nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}
