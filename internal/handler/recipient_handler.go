package handler

import (
	"esign-web-server/internal/model"
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/notifier"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RecipientHandler struct {
	ports.RecipientService
	publicBaseURL string
}

func NewRecipientHandler(recipientService ports.RecipientService, publicBaseURL string) *RecipientHandler {
	return &RecipientHandler{recipientService, publicBaseURL}
}

// AddRecipients godoc
// @Summary Добавление подписантов
// @Description Каждому подписанту выдаётся токен ссылки. Роль по умолчанию signer
// @Tags Recipients
// @Accept json
// @Produce json
// @Param id path string true "UUID документа"
// @Param body body requestresponse.AddRecipientsRequest true "Подписанты"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.RecipientsResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Подписант уже добавлен или документ завершён"
// @Router /api/docs/{id}/recipients [post]
func (h *RecipientHandler) AddRecipients(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.AddRecipientsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipients, err := h.RecipientService.AddRecipients(r.Context(), chi.URLParam(r, "id"), req.Inputs())
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.RecipientsResponse{Data: h.views(recipients)})
}

// ListRecipients godoc
// @Summary Подписанты документа
// @Tags Recipients
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RecipientsResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/recipients [get]
func (h *RecipientHandler) ListRecipients(w http.ResponseWriter, r *http.Request) {
	recipients, err := h.RecipientService.ListRecipients(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RecipientsResponse{Data: h.views(recipients)})
}

// UpdateRecipient godoc
// @Summary Изменение подписанта
// @Description Только пока подписант не открыл документ
// @Tags Recipients
// @Accept json
// @Produce json
// @Param recipient_id path string true "UUID подписанта"
// @Param body body requestresponse.UpdateRecipientRequest true "Изменяемые поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.RecipientResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/recipients/{recipient_id} [patch]
func (h *RecipientHandler) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdateRecipientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	recipient, err := h.RecipientService.UpdateRecipient(r.Context(), chi.URLParam(r, "recipient_id"), req.Patch())
	if err != nil {
		util.HandleAppError(w, err, "Recipient not found")
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.RecipientResponse{Data: h.view(*recipient)})
}

// DeleteRecipient godoc
// @Summary Удаление подписанта
// @Description Только у черновика. Назначенные подписанту поля становятся общими
// @Tags Recipients
// @Produce json
// @Param recipient_id path string true "UUID подписанта"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DeletedResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse
// @Router /api/recipients/{recipient_id} [delete]
func (h *RecipientHandler) DeleteRecipient(w http.ResponseWriter, r *http.Request) {
	recipientUUID := chi.URLParam(r, "recipient_id")

	if err := h.RecipientService.DeleteRecipient(r.Context(), recipientUUID); err != nil {
		util.HandleAppError(w, err, "Recipient not found")
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.NewDeletedResponse(recipientUUID))
}

func (h *RecipientHandler) view(recipient model.Recipient) requestresponse.RecipientView {
	return requestresponse.RecipientView{
		Recipient:  recipient,
		SigningURL: notifier.SigningURL(h.publicBaseURL, recipient.DocumentUUID, recipient.Token),
	}
}

func (h *RecipientHandler) views(recipients []model.Recipient) []requestresponse.RecipientView {
	views := make([]requestresponse.RecipientView, 0, len(recipients))
	for _, recipient := range recipients {
		views = append(views, h.view(recipient))
	}
	return views
}
