package handler

import (
	"context"
	"esign-web-server/internal/model"
	"esign-web-server/internal/model/requestresponse"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/util"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const (
	maxUploadSize = 25 << 20
	uploadTimeout = 30 * time.Second
)

type DocumentHandler struct {
	ports.DocumentService
}

func NewDocumentHandler(documentService ports.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService}
}

// CreateDocument godoc
// @Summary Создание документа
// @Description multipart/form-data с PDF в поле file, либо JSON для черновика без файла (текст из редактора)
// @Tags Documents
// @Accept multipart/form-data,json
// @Produce json
// @Param title formData string true "Название документа"
// @Param content formData string false "Текст документа"
// @Param is_template formData bool false "Сохранить как шаблон"
// @Param file formData file false "PDF файл"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Неверный формат запроса или не PDF"
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 502 {object} requestresponse.ErrorResponse "Ошибка объектного хранилища"
// @Router /api/docs [post]
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	var input model.NewDocument
	if isMultipart(r) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			util.HandleError(w, "invalid multipart form", http.StatusBadRequest)
			return
		}

		input.Title = r.FormValue("title")
		input.Content = r.FormValue("content")
		if raw := r.FormValue("is_template"); raw != "" {
			isTemplate, err := strconv.ParseBool(raw)
			if err != nil {
				util.HandleError(w, "is_template must be true or false", http.StatusBadRequest)
				return
			}
			input.IsTemplate = isTemplate
		}

		file, ok := readUpload(w, r, false)
		if !ok {
			return
		}
		input.File = file
	} else {
		var req requestresponse.CreateDocumentRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		input = model.NewDocument{Title: req.Title, Content: req.Content, IsTemplate: req.IsTemplate}
	}

	document, err := h.DocumentService.CreateDocument(ctx, input)
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.DocumentResponseFromModel(document, ""))
}

// CreateFromTemplate godoc
// @Summary Документ из шаблона
// @Description Копирует файл и поля шаблона, назначения и значения полей не копируются
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "UUID шаблона"
// @Param body body requestresponse.CreateFromTemplateRequest false "Название нового документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 201 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/copy [post]
func (h *DocumentHandler) CreateFromTemplate(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.CreateFromTemplateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.DocumentService.CreateFromTemplate(r.Context(), chi.URLParam(r, "id"), req.Title)
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusCreated, requestresponse.DocumentResponseFromModel(document, ""))
}

// GetDocument godoc
// @Summary Получение документа
// @Description Метаданные документа и pre-signed ссылка на текущую версию файла
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "Документ не найден или принадлежит другому владельцу"
// @Router /api/docs/{id} [get]
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	result, err := h.DocumentService.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.DocumentResponseFromModel(result.Document, result.GetURL))
}

// ListDocuments godoc
// @Summary Список документов владельца
// @Description Новые первыми. Пагинация курсором next_cursor
// @Tags Documents
// @Produce json
// @Param status query string false "draft, sent, signed или completed"
// @Param template query bool false "Только шаблоны (true) или только документы (false)"
// @Param cursor query string false "next_cursor из предыдущего ответа"
// @Param limit query int false "Размер страницы (по умолчанию и максимум 100)"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.ListDocumentsResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Router /api/docs [get]
func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		util.HandleError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	filter := model.DocumentFilter{
		Status: model.DocumentStatus(query.Get("status")),
		Cursor: query.Get("cursor"),
		Limit:  limit,
	}
	if raw := query.Get("template"); raw != "" {
		isTemplate, err := strconv.ParseBool(raw)
		if err != nil {
			util.HandleError(w, "template must be true or false", http.StatusBadRequest)
			return
		}
		filter.IsTemplate = &isTemplate
	}

	documents, nextCursor, err := h.DocumentService.ListDocuments(r.Context(), filter)
	if err != nil {
		util.HandleAppError(w, err, "")
		return
	}

	resp := requestresponse.ListDocumentsResponse{NextCursor: nextCursor, Count: len(documents)}
	resp.Data.Docs = documents
	if resp.Data.Docs == nil {
		resp.Data.Docs = []model.Document{}
	}
	util.WriteJSON(w, http.StatusOK, resp)
}

// UpdateDocument godoc
// @Summary Изменение документа
// @Description Название, текст и признак шаблона. Завершённый документ не изменяется
// @Tags Documents
// @Accept json
// @Produce json
// @Param id path string true "UUID документа"
// @Param body body requestresponse.UpdateDocumentRequest true "Изменяемые поля"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Документ завершён"
// @Router /api/docs/{id} [patch]
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.UpdateDocumentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	document, err := h.DocumentService.UpdateDocument(r.Context(), chi.URLParam(r, "id"), req.Patch())
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.DocumentResponseFromModel(document, ""))
}

// ReplaceFile godoc
// @Summary Новая версия PDF
// @Description Загружает новую версию файла, пока документ черновик. Старые версии остаются в хранилище
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "UUID документа"
// @Param file formData file true "PDF файл"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Документ уже отправлен"
// @Router /api/docs/{id}/file [put]
func (h *DocumentHandler) ReplaceFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), uploadTimeout)
	defer cancel()

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		util.HandleError(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	file, ok := readUpload(w, r, true)
	if !ok {
		return
	}

	document, err := h.DocumentService.ReplaceFile(ctx, chi.URLParam(r, "id"), *file)
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.DocumentResponseFromModel(document, ""))
}

// DeleteDocument godoc
// @Summary Удаление документа
// @Description Удаляет документ, подписантов, поля, подписи, журнал доступа и все версии файла
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.DeletedResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id} [delete]
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentUUID := chi.URLParam(r, "id")

	if err := h.DocumentService.DeleteDocument(r.Context(), documentUUID); err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.NewDeletedResponse(documentUUID))
}

// SendDocument godoc
// @Summary Отправка на подпись
// @Description Переводит документ в sent и отправляет письмо каждому, кто ещё не подписал. Ошибки отдельных писем возвращаются в ответе
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SendDocumentResponse
// @Failure 400 {object} requestresponse.ErrorResponse "Нет файла или подписантов"
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 409 {object} requestresponse.ErrorResponse "Документ уже подписан"
// @Router /api/docs/{id}/send [post]
func (h *DocumentHandler) SendDocument(w http.ResponseWriter, r *http.Request) {
	result, err := h.DocumentService.SendDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.SendDocumentResponse{Data: result, Failed: result.FailedCount()})
}

// ListSignatures godoc
// @Summary Аудит подписей
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.SignaturesResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/signatures [get]
func (h *DocumentHandler) ListSignatures(w http.ResponseWriter, r *http.Request) {
	signatures, err := h.DocumentService.ListSignatures(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	if signatures == nil {
		signatures = []model.Signature{}
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.SignaturesResponse{Data: signatures})
}

// ListAccessLogs godoc
// @Summary Журнал доступа
// @Tags Documents
// @Produce json
// @Param id path string true "UUID документа"
// @Param limit query int false "Количество записей (по умолчанию 100)"
// @Param Authorization header string true "Bearer токен" default(Bearer <access_token>)
// @Success 200 {object} requestresponse.AccessLogsResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Router /api/docs/{id}/access-logs [get]
func (h *DocumentHandler) ListAccessLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		util.HandleError(w, "limit must be a non-negative integer", http.StatusBadRequest)
		return
	}

	entries, err := h.DocumentService.ListAccessLogs(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		util.HandleAppError(w, err, documentNotFound)
		return
	}

	if entries == nil {
		entries = []model.AccessLog{}
	}
	util.WriteJSON(w, http.StatusOK, requestresponse.AccessLogsResponse{Data: entries})
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload : файл из поля file. Если файла нет и он не обязателен, возвращает nil
func readUpload(w http.ResponseWriter, r *http.Request, required bool) (*model.UploadedFile, bool) {
	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile && !required {
		return nil, true
	}
	if err != nil {
		util.HandleError(w, "file is missing in request", http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		util.HandleError(w, "failed to read file", http.StatusBadRequest)
		return nil, false
	}
	if len(data) > maxUploadSize {
		util.HandleError(w, "file is too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}

	return &model.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, true
}
