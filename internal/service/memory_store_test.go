package service_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"esign-web-server/config"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/completion"
	"esign-web-server/internal/model"
	"esign-web-server/internal/security"
	"esign-web-server/internal/service"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// memoryStore : in-memory замена PostgreSQL с теми же условными обновлениями, что и SQL репозитории
type memoryStore struct {
	mu         sync.Mutex
	seq        int
	documents  map[string]*model.Document
	recipients map[string]*model.Recipient
	fields     map[string]*model.SignatureField
	users      map[string]*model.User
	signatures []model.Signature
	logs       []model.AccessLog
	order      map[string]int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		documents:  map[string]*model.Document{},
		recipients: map[string]*model.Recipient{},
		fields:     map[string]*model.SignatureField{},
		users:      map[string]*model.User{},
		order:      map[string]int{},
	}
}

func (s *memoryStore) stamp(id string) time.Time {
	s.seq++
	s.order[id] = s.seq
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
}

func (s *memoryStore) repositories() service.Repositories {
	return service.Repositories{
		Documents:  memDocuments{s},
		Recipients: memRecipients{s},
		Fields:     memFields{s},
		Signatures: memSignatures{s},
		AccessLogs: memAccessLogs{s},
		Users:      memUsers{s},
	}
}

func (s *memoryStore) logActions(documentUUID string) []model.AccessAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var actions []model.AccessAction
	for _, entry := range s.logs {
		if entry.DocumentUUID == documentUUID {
			actions = append(actions, entry.Action)
		}
	}
	return actions
}

type memDocuments struct{ s *memoryStore }

func (r memDocuments) Create(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[document.UUID]; ok {
		return apperror.Conflict("duplicate document")
	}
	document.CreatedAt = r.s.stamp(document.UUID)
	document.UpdatedAt = document.CreatedAt
	copied := *document
	r.s.documents[document.UUID] = &copied
	return nil
}

func (r memDocuments) GetByUUID(ctx context.Context, exec sqlx.ExtContext, documentUUID string) (*model.Document, error) {
	return r.ResolveDocument(ctx, exec, model.ResourceDocument, documentUUID)
}

func (r memDocuments) ResolveDocument(ctx context.Context, exec sqlx.ExtContext, kind model.ResourceKind, resourceUUID string) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	documentUUID := resourceUUID
	switch kind {
	case model.ResourceRecipient:
		recipient, ok := r.s.recipients[resourceUUID]
		if !ok {
			return nil, apperror.NotFound("Document not found")
		}
		documentUUID = recipient.DocumentUUID
	case model.ResourceField:
		field, ok := r.s.fields[resourceUUID]
		if !ok {
			return nil, apperror.NotFound("Document not found")
		}
		documentUUID = field.DocumentUUID
	}

	document, ok := r.s.documents[documentUUID]
	if !ok {
		return nil, apperror.Wrap(sql.ErrNoRows, apperror.CodeNotFound, "Document not found")
	}
	copied := *document
	return &copied, nil
}

func (r memDocuments) ListByOwner(ctx context.Context, exec sqlx.ExtContext, ownerUUID string, filter model.DocumentFilter) ([]model.Document, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var documents []model.Document
	for _, document := range r.s.documents {
		if document.OwnerUUID != ownerUUID {
			continue
		}
		if filter.Status != "" && document.Status != filter.Status {
			continue
		}
		if filter.IsTemplate != nil && document.IsTemplate != *filter.IsTemplate {
			continue
		}
		documents = append(documents, *document)
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].CreatedAt.After(documents[j].CreatedAt) })
	return documents, "", nil
}

func (r memDocuments) Update(ctx context.Context, exec sqlx.ExtContext, document *model.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.documents[document.UUID]
	if !ok || stored.Status == model.DocumentStatusCompleted {
		return apperror.Conflict("Document is already completed")
	}
	stored.Title, stored.Content, stored.IsTemplate = document.Title, document.Content, document.IsTemplate
	return nil
}

func (r memDocuments) UpdateFile(ctx context.Context, exec sqlx.ExtContext, documentUUID string, expectedVersion int, file model.FileRef) (*model.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.documents[documentUUID]
	if !ok || stored.Status == model.DocumentStatusCompleted || stored.Version != expectedVersion {
		return nil, apperror.Conflict("Document was changed by another request")
	}
	stored.StorageKey, stored.FileURL, stored.MimeType = file.StorageKey, file.FileURL, file.MimeType
	stored.SizeBytes, stored.Sha256 = file.SizeBytes, file.Sha256
	stored.Version++
	copied := *stored
	return &copied, nil
}

func (r memDocuments) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, documentUUID string, to model.DocumentStatus, from ...model.DocumentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.documents[documentUUID]
	if !ok {
		return apperror.NotFound("Document not found")
	}
	if len(from) > 0 && !containsStatus(from, stored.Status) {
		return apperror.Conflict(fmt.Sprintf("Document cannot move to %s", to))
	}
	stored.Status = to
	return nil
}

func containsStatus(statuses []model.DocumentStatus, status model.DocumentStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func (r memDocuments) Delete(ctx context.Context, exec sqlx.ExtContext, documentUUID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.documents[documentUUID]; !ok {
		return apperror.NotFound("Document not found")
	}
	delete(r.s.documents, documentUUID)
	for id, recipient := range r.s.recipients {
		if recipient.DocumentUUID == documentUUID {
			delete(r.s.recipients, id)
		}
	}
	for id, field := range r.s.fields {
		if field.DocumentUUID == documentUUID {
			delete(r.s.fields, id)
		}
	}
	signatures := r.s.signatures[:0]
	for _, signature := range r.s.signatures {
		if signature.DocumentUUID != documentUUID {
			signatures = append(signatures, signature)
		}
	}
	r.s.signatures = signatures
	logs := r.s.logs[:0]
	for _, entry := range r.s.logs {
		if entry.DocumentUUID != documentUUID {
			logs = append(logs, entry)
		}
	}
	r.s.logs = logs
	return nil
}

type memRecipients struct{ s *memoryStore }

func (r memRecipients) Create(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.recipients {
		if existing.Token == recipient.Token {
			return apperror.Conflict("duplicate token")
		}
	}
	recipient.CreatedAt = r.s.stamp(recipient.UUID)
	recipient.UpdatedAt = recipient.CreatedAt
	copied := *recipient
	r.s.recipients[recipient.UUID] = &copied
	return nil
}

func (r memRecipients) GetByUUID(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) (*model.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	recipient, ok := r.s.recipients[recipientUUID]
	if !ok {
		return nil, apperror.NotFound("Recipient not found")
	}
	copied := *recipient
	return &copied, nil
}

func (r memRecipients) GetByToken(ctx context.Context, exec sqlx.ExtContext, token string, now time.Time) (*model.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, recipient := range r.s.recipients {
		if recipient.Token == token && now.Before(recipient.TokenExpiry) {
			copied := *recipient
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("Recipient not found")
}

func (r memRecipients) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Recipient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var recipients []model.Recipient
	for _, recipient := range r.s.recipients {
		if recipient.DocumentUUID == documentUUID {
			recipients = append(recipients, *recipient)
		}
	}
	sort.Slice(recipients, func(i, j int) bool { return r.s.order[recipients[i].UUID] < r.s.order[recipients[j].UUID] })
	return recipients, nil
}

func (r memRecipients) Update(ctx context.Context, exec sqlx.ExtContext, recipient *model.Recipient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.recipients[recipient.UUID]
	if !ok || stored.Status != model.RecipientStatusPending {
		return apperror.Conflict("Recipient has already opened the document")
	}
	stored.Email, stored.Name, stored.Role = recipient.Email, recipient.Name, recipient.Role
	return nil
}

func (r memRecipients) UpdateToken(ctx context.Context, exec sqlx.ExtContext, recipientUUID, token string, expiry time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.recipients[recipientUUID]
	if !ok {
		return apperror.NotFound("Recipient not found")
	}
	stored.Token, stored.TokenExpiry = token, expiry
	return nil
}

func (r memRecipients) TransitionStatus(ctx context.Context, exec sqlx.ExtContext, recipientUUID string, to model.RecipientStatus, from []model.RecipientStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.recipients[recipientUUID]
	if !ok {
		return apperror.Conflict("Recipient status has already changed")
	}
	allowed := false
	for _, status := range from {
		if stored.Status == status {
			allowed = true
		}
	}
	if !allowed {
		return apperror.Conflict("Recipient status has already changed")
	}
	stored.Status = to
	switch to {
	case model.RecipientStatusViewed:
		stored.ViewedAt = &at
	case model.RecipientStatusSigned:
		stored.SignedAt = &at
	}
	return nil
}

func (r memRecipients) Delete(ctx context.Context, exec sqlx.ExtContext, recipientUUID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recipients[recipientUUID]; !ok {
		return apperror.NotFound("Recipient not found")
	}
	for _, field := range r.s.fields {
		if field.AssigneeUUID != nil && *field.AssigneeUUID == recipientUUID {
			field.AssigneeUUID = nil
		}
	}
	delete(r.s.recipients, recipientUUID)
	return nil
}

type memFields struct{ s *memoryStore }

func (r memFields) Create(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	field.CreatedAt = r.s.stamp(field.UUID)
	field.UpdatedAt = field.CreatedAt
	copied := *field
	r.s.fields[field.UUID] = &copied
	return nil
}

func (r memFields) GetByUUID(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) (*model.SignatureField, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	field, ok := r.s.fields[fieldUUID]
	if !ok {
		return nil, apperror.NotFound("Field not found")
	}
	copied := *field
	return &copied, nil
}

func (r memFields) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.SignatureField, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var fields []model.SignatureField
	for _, field := range r.s.fields {
		if field.DocumentUUID == documentUUID {
			fields = append(fields, *field)
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].PageNumber != fields[j].PageNumber {
			return fields[i].PageNumber < fields[j].PageNumber
		}
		if fields[i].Y != fields[j].Y {
			return fields[i].Y < fields[j].Y
		}
		return fields[i].X < fields[j].X
	})
	return fields, nil
}

func (r memFields) Update(ctx context.Context, exec sqlx.ExtContext, field *model.SignatureField) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.fields[field.UUID]
	if !ok || stored.Value != "" {
		return apperror.Conflict("Field is already completed")
	}
	value, completedBy, completedAt, createdAt := stored.Value, stored.CompletedBy, stored.CompletedAt, stored.CreatedAt
	*stored = *field
	stored.Value, stored.CompletedBy, stored.CompletedAt, stored.CreatedAt = value, completedBy, completedAt, createdAt
	return nil
}

func (r memFields) SaveValue(ctx context.Context, exec sqlx.ExtContext, fieldUUID, recipientUUID, value string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.fields[fieldUUID]
	if !ok || (stored.CompletedBy != nil && *stored.CompletedBy != recipientUUID) {
		return apperror.Conflict("Field has been completed by another recipient")
	}
	stored.Value = value
	stored.CompletedBy = &recipientUUID
	stored.CompletedAt = &at
	return nil
}

func (r memFields) Delete(ctx context.Context, exec sqlx.ExtContext, fieldUUID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fields[fieldUUID]; !ok {
		return apperror.NotFound("Field not found")
	}
	delete(r.s.fields, fieldUUID)
	return nil
}

type memSignatures struct{ s *memoryStore }

func (r memSignatures) Create(ctx context.Context, exec sqlx.ExtContext, signature *model.Signature) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.signatures = append(r.s.signatures, *signature)
	return nil
}

func (r memSignatures) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string) ([]model.Signature, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var signatures []model.Signature
	for _, signature := range r.s.signatures {
		if signature.DocumentUUID == documentUUID {
			signatures = append(signatures, signature)
		}
	}
	return signatures, nil
}

type memAccessLogs struct{ s *memoryStore }

func (r memAccessLogs) Create(ctx context.Context, exec sqlx.ExtContext, entry *model.AccessLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.logs = append(r.s.logs, *entry)
	return nil
}

func (r memAccessLogs) ListByDocument(ctx context.Context, exec sqlx.ExtContext, documentUUID string, limit int) ([]model.AccessLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var entries []model.AccessLog
	for i := len(r.s.logs) - 1; i >= 0 && len(entries) < limit; i-- {
		if r.s.logs[i].DocumentUUID == documentUUID {
			entries = append(entries, r.s.logs[i])
		}
	}
	return entries, nil
}

type memUsers struct{ s *memoryStore }

func (r memUsers) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == user.Email {
			return nil, apperror.Conflict("User already exists")
		}
	}
	copied := *user
	r.s.users[user.UUID] = &copied
	return &copied, nil
}

func (r memUsers) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[uuid]
	if !ok {
		return nil, apperror.NotFound("User not found")
	}
	copied := *user
	return &copied, nil
}

func (r memUsers) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperror.NotFound("User not found")
}

func (r memUsers) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[uuid]
	if !ok {
		return apperror.NotFound("User not found")
	}
	user.PasswordHash = newPasswordHash
	return nil
}

// fakeTxManager : транзакции без БД, считает коммиты и откаты
type fakeTxManager struct {
	commits   int
	rollbacks int
}

func (f *fakeTxManager) Executor() sqlx.ExtContext { return nil }

func (f *fakeTxManager) BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error) {
	committed := false
	rollback := func() error {
		if !committed {
			f.rollbacks++
		}
		return nil
	}
	commit := func() error {
		committed = true
		f.commits++
		return nil
	}
	return nil, rollback, commit, nil
}

type memoryCache struct {
	mu        sync.Mutex
	documents map[string]model.Document
}

func newMemoryCache() *memoryCache {
	return &memoryCache{documents: map[string]model.Document{}}
}

func (c *memoryCache) SetDocument(ctx context.Context, document *model.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.documents[document.UUID] = *document
	return nil
}

func (c *memoryCache) GetDocument(ctx context.Context, uuid string) (*model.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	document, ok := c.documents[uuid]
	if !ok {
		return nil, nil
	}
	return &document, nil
}

func (c *memoryCache) DeleteDocument(ctx context.Context, uuid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.documents, uuid)
	return nil
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	failGet bool
	failPut bool
	onPut   func(key string)
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]byte{}}
}

func (s *memoryStorage) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return fmt.Errorf("storage unavailable")
	}
	s.objects[key] = append([]byte(nil), body...)
	if s.onPut != nil {
		s.onPut(key)
	}
	return nil
}

func (s *memoryStorage) GetObject(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[key]
	if s.failGet || !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return data, nil
}

func (s *memoryStorage) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[srcKey]
	if !ok {
		return fmt.Errorf("object %s not found", srcKey)
	}
	s.objects[dstKey] = data
	return nil
}

func (s *memoryStorage) GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error) {
	return "https://files.test/" + key + "?signed", nil
}

func (s *memoryStorage) ObjectURL(key string) string {
	return "https://files.test/" + key
}

func (s *memoryStorage) DeleteObject(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) DeletePrefix(ctx context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
		}
	}
	return nil
}

func (s *memoryStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordingMailer struct {
	mu       sync.Mutex
	messages []model.EmailMessage
	failFor  map[string]bool
}

func (m *recordingMailer) Send(ctx context.Context, message model.EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFor[message.To] {
		return "", fmt.Errorf("mailbox unavailable")
	}
	m.messages = append(m.messages, message)
	return fmt.Sprintf("msg-%d", len(m.messages)), nil
}

type recordingEvents struct {
	mu     sync.Mutex
	events []model.DocumentEvent
}

func (e *recordingEvents) Publish(ctx context.Context, event model.DocumentEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	return nil
}

func (e *recordingEvents) types() []model.EventType {
	e.mu.Lock()
	defer e.mu.Unlock()
	types := make([]model.EventType, 0, len(e.events))
	for _, event := range e.events {
		types = append(types, event.Type)
	}
	return types
}

type countingMetrics struct {
	mu                                  sync.Mutex
	emailsOK, emailsFailed              int
	signed, completed, completionFailed int
}

func (m *countingMetrics) EmailSent(provider string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.emailsOK++
	} else {
		m.emailsFailed++
	}
}

func (m *countingMetrics) DocumentSigned()    { m.mu.Lock(); m.signed++; m.mu.Unlock() }
func (m *countingMetrics) DocumentCompleted() { m.mu.Lock(); m.completed++; m.mu.Unlock() }
func (m *countingMetrics) CompletionFailed()  { m.mu.Lock(); m.completionFailed++; m.mu.Unlock() }

// drawCall : что completion.Engine нарисовал на странице
type drawCall struct {
	Page  int
	Text  string
	Image bool
	At    completion.Placement
}

type recordingLoader struct {
	mu    sync.Mutex
	pages []completion.Page
	draws []drawCall
}

func (l *recordingLoader) Load(source []byte) (completion.Canvas, error) {
	if !bytes.HasPrefix(source, []byte("%PDF-")) {
		return nil, fmt.Errorf("not a pdf")
	}
	return &recordingCanvas{loader: l, source: source}, nil
}

func (l *recordingLoader) calls() []drawCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]drawCall(nil), l.draws...)
}

type recordingCanvas struct {
	loader *recordingLoader
	source []byte
	draws  []drawCall
}

func (c *recordingCanvas) Pages() []completion.Page { return c.loader.pages }

func (c *recordingCanvas) DrawImage(page int, img completion.Image, at completion.Placement) error {
	c.draws = append(c.draws, drawCall{Page: page, Image: true, At: at})
	return nil
}

func (c *recordingCanvas) DrawText(page int, text string, at completion.Placement, fontSize float64) error {
	c.draws = append(c.draws, drawCall{Page: page, Text: text, At: at})
	return nil
}

func (c *recordingCanvas) Render() ([]byte, error) {
	c.loader.mu.Lock()
	defer c.loader.mu.Unlock()
	c.loader.draws = append(c.loader.draws, c.draws...)
	out := append([]byte(nil), c.source...)
	return append(out, []byte(fmt.Sprintf("\n%% stamped %d\n", len(c.draws)))...), nil
}

// testEnv : сервисы поверх in-memory хранилищ
type testEnv struct {
	store      *memoryStore
	tx         *fakeTxManager
	cache      *memoryCache
	storage    *memoryStorage
	mailer     *recordingMailer
	events     *recordingEvents
	metrics    *countingMetrics
	loader     *recordingLoader
	documents  *service.DocumentService
	recipients *service.RecipientService
	fields     *service.FieldService
	signing    *service.SigningService
	resolver   *service.TokenResolver
	guard      *service.PermissionGuard
}

const (
	ownerUUID    = "11111111-1111-1111-1111-111111111111"
	strangerUUID = "22222222-2222-2222-2222-222222222222"
)

var samplePDF = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   newMemoryStore(),
		tx:      &fakeTxManager{},
		cache:   newMemoryCache(),
		storage: newMemoryStorage(),
		mailer:  &recordingMailer{failFor: map[string]bool{}},
		events:  &recordingEvents{},
		metrics: &countingMetrics{},
		loader:  &recordingLoader{pages: []completion.Page{{Width: 612, Height: 792}}},
	}

	repos := env.store.repositories()
	env.store.users[ownerUUID] = &model.User{UUID: ownerUUID, Email: "owner@example.com"}

	signing := configSigning()
	notifications := service.Notifications{Mailer: env.mailer, Provider: "test", Events: env.events, Metrics: env.metrics}

	env.guard = service.NewPermissionGuard(env.tx, repos.Documents)
	env.resolver = service.NewTokenResolver(repos.Recipients, repos.Documents)
	accessLogs := service.NewAccessLogService(env.guard, repos.AccessLogs)

	env.documents = service.NewDocumentService(env.tx, env.guard, repos, accessLogs, env.cache, env.storage, notifications, signing, 15*time.Minute)
	env.recipients = service.NewRecipientService(env.guard, repos.Recipients, signing)
	env.fields = service.NewFieldService(env.guard, repos.Fields, repos.Recipients)

	engine := completion.NewEngine(env.loader, completion.Options{})
	env.signing = service.NewSigningService(env.tx, env.resolver, repos, accessLogs, env.cache, env.storage, engine, notifications, 15*time.Minute)

	return env
}

func configSigning() config.SigningConfig {
	return config.SigningConfig{TokenTTL: "720h", TokenLength: 32, PublicBaseURL: "https://sign.example.com"}
}

func ownerCtx() context.Context {
	return asUser(ownerUUID)
}

func asUser(userUUID string) context.Context {
	return security.WithClaims(context.Background(), &security.Claims{UserUUID: userUUID})
}

// signaturePNG : настоящий PNG в виде data URL
func signaturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 30))
	img.Set(10, 10, color.Black)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}
