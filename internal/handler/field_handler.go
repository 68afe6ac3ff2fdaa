package handler

import (
	"esign-web-server/internal/model"
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const fieldNotFound = "Field not found"

type FieldHandler struct {
	ports.FieldService
}

func NewFieldHandler(fieldService ports.FieldService) *FieldHandler {
	return &FieldHandler{fieldService}
}

// PlaceField godoc
// @Summary Размещение поля на странице
// @Description Координаты в единицах страницы, начало в левом верхнем углу. Поле без recipient_uuid может заполнить любой подписант
// @Tags Fields
// @Accept json
// @Produce json
// @Param id path string true "UUID документа"
// @Param body body requestresponse.PlaceFieldRequest true "Поле"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.FieldResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/fields [post]
func (h *FieldHandler) PlaceField(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.PlaceFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	field, err := h.FieldService.PlaceField(r.Context(), chi.URLParam(r, "id"), req.Input())
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.FieldResponse{Data: field})
}

// ListFields godoc
// @Summary Поля документа
// @Description По странице, затем сверху вниз и слева направо
// @Tags Fields
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FieldsResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/fields [get]
func (h *FieldHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields, err := h.FieldService.ListFields(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	if fields == nil {
		fields = []model.SignatureField{}
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.FieldsResponse{Data: fields})
}

// MoveField godoc
// @Summary Перемещение поля
// @Tags Fields
// @Accept json
// @Produce json
// @Param field_id path string true "UUID поля"
// @Param body body requestresponse.MoveFieldRequest true "Новые координаты"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FieldResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/fields/{field_id}/position [put]
func (h *FieldHandler) MoveField(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.MoveFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.X == nil || req.Y == nil {
		util.HandleError(w, "x and y are required", http.StatusBadRequest)
		return
	}

	field, err := h.FieldService.MoveField(r.Context(), chi.URLParam(r, "field_id"), *req.X, *req.Y)
	if err != nil {
		util.HandleAppError(w, err, fieldNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.FieldResponse{Data: field})
}

// UpdateField godoc
// @Summary Изменение поля
// @Tags Fields
// @Accept json
// @Produce json
// @Param field_id path string true "UUID поля"
// @Param body body requestresponse.UpdateFieldRequest true "Изменяемые свойства"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.FieldResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/fields/{field_id} [patch]
func (h *FieldHandler) UpdateField(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdateFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	field, err := h.FieldService.UpdateField(r.Context(), chi.URLParam(r, "field_id"), req.Patch())
	if err != nil {
		util.HandleAppError(w, err, fieldNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.FieldResponse{Data: field})
}

// DeleteField godoc
// @Summary Удаление поля
// @Tags Fields
// @Produce json
// @Param field_id path string true "UUID поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DeletedResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/fields/{field_id} [delete]
func (h *FieldHandler) DeleteField(w http.ResponseWriter, r *http.Request) {
	fieldUUID := chi.URLParam(r, "field_id")

	if err := h.FieldService.DeleteField(r.Context(), fieldUUID); err != nil {
		util.HandleAppError(w, err, fieldNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.NewDeletedResponse(fieldUUID))
}
