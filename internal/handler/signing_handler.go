package handler

import (
	"context"
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SigningHandler : публичные маршруты подписанта, доступ только по токену из ссылки
type SigningHandler struct {
	ports.SigningService
}

func NewSigningHandler(signingService ports.SigningService) *SigningHandler {
	return &SigningHandler{signingService}
}

// View godoc
// @Summary Страница подписи
// @Description Документ, подписант и его поля. Первый просмотр переводит подписанта в viewed
// @Tags Signing
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param token path string true "Токен из ссылки"
// @Success 200 {object} requestresponse.SigningSessionResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Неизвестный или просроченный токен"
// @Failure 429 {object} requestresponse.ErrorResponse
// @Router /api/sign/{doc_id}/{token} [get]
func (h *SigningHandler) View(w http.ResponseWriter, r *http.Request) {
	documentUUID, token := signingParams(r)

	session, err := h.SigningService.View(r.Context(), documentUUID, token, util.RequestMetaFromRequest(r))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.SigningSessionResponse{Data: session})
}

// SaveFieldValue godoc
// @Summary Заполнение поля
// @Description Для поля signature значение это PNG или JPEG в виде data URL или base64
// @Tags Signing
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param token path string true "Токен из ссылки"
// @Param field_id path string true "UUID поля"
// @Param body body requestresponse.SaveFieldValueRequest true "Значение"
// @Success 200 {object} requestresponse.FieldResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Документ уже подписан"
// @Router /api/sign/{doc_id}/{token}/fields/{field_id} [put]
func (h *SigningHandler) SaveFieldValue(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.SaveFieldValueRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	documentUUID, token := signingParams(r)
	field, err := h.SigningService.SaveFieldValue(r.Context(), documentUUID, token, chi.URLParam(r, "field_id"), req.Value, util.RequestMetaFromRequest(r))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.FieldResponse{Data: field})
}

// Sign godoc
// @Summary Подписание документа
// @Description Сохраняет переданные значения, проверяет обязательные поля и формирует новую версию PDF
// @Tags Signing
// @Accept json
// @Produce json
// @Param doc_id path string true "UUID документа"
// @Param token path string true "Токен из ссылки"
// @Param body body requestresponse.SignRequest false "Значения полей"
// @Success 200 {object} requestresponse.SignResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Не заполнены обязательные поля (details)"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Документ уже подписан этим подписантом"
// @Failure 502 {object} requestresponse.ErrorResponse "Не удалось сохранить подписанный файл"
// @Router /api/sign/{doc_id}/{token} [post]
func (h *SigningHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.SignRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	documentUUID, token := signingParams(r)
	result, err := h.SigningService.Sign(ctx, documentUUID, token, req.Values, util.RequestMetaFromRequest(r))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.SignResponse{Data: result})
}

func signingParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "doc_id"), chi.URLParam(r, "token")
}
