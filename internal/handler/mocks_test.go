package handler_test

import (
	"context"
	"esign-web-server/internal/model"
	"esign-web-server/internal/security"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, input model.NewDocument) (*model.Document, error) {
	args := m.Called(ctx, input)
	return documentOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) CreateFromTemplate(ctx context.Context, templateUUID, title string) (*model.Document, error) {
	args := m.Called(ctx, templateUUID, title)
	return documentOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) GetDocument(ctx context.Context, documentUUID string) (*model.GetDocumentResult, error) {
	args := m.Called(ctx, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GetDocumentResult), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, filter model.DocumentFilter) ([]model.Document, string, error) {
	args := m.Called(ctx, filter)
	docs, _ := args.Get(0).([]model.Document)
	return docs, args.String(1), args.Error(2)
}

func (m *MockDocumentService) UpdateDocument(ctx context.Context, documentUUID string, patch model.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, documentUUID, patch)
	return documentOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) ReplaceFile(ctx context.Context, documentUUID string, file model.UploadedFile) (*model.Document, error) {
	args := m.Called(ctx, documentUUID, file)
	return documentOrNil(args.Get(0)), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, documentUUID string) error {
	return m.Called(ctx, documentUUID).Error(0)
}

func (m *MockDocumentService) SendDocument(ctx context.Context, documentUUID string) (*model.SendResult, error) {
	args := m.Called(ctx, documentUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SendResult), args.Error(1)
}

func (m *MockDocumentService) ListSignatures(ctx context.Context, documentUUID string) ([]model.Signature, error) {
	args := m.Called(ctx, documentUUID)
	signatures, _ := args.Get(0).([]model.Signature)
	return signatures, args.Error(1)
}

func (m *MockDocumentService) ListAccessLogs(ctx context.Context, documentUUID string, limit int) ([]model.AccessLog, error) {
	args := m.Called(ctx, documentUUID, limit)
	entries, _ := args.Get(0).([]model.AccessLog)
	return entries, args.Error(1)
}

func documentOrNil(v interface{}) *model.Document {
	if v == nil {
		return nil
	}
	return v.(*model.Document)
}

type MockRecipientService struct {
	mock.Mock
}

func (m *MockRecipientService) AddRecipients(ctx context.Context, documentUUID string, inputs []model.NewRecipient) ([]model.Recipient, error) {
	args := m.Called(ctx, documentUUID, inputs)
	recipients, _ := args.Get(0).([]model.Recipient)
	return recipients, args.Error(1)
}

func (m *MockRecipientService) ListRecipients(ctx context.Context, documentUUID string) ([]model.Recipient, error) {
	args := m.Called(ctx, documentUUID)
	recipients, _ := args.Get(0).([]model.Recipient)
	return recipients, args.Error(1)
}

func (m *MockRecipientService) UpdateRecipient(ctx context.Context, recipientUUID string, patch model.RecipientPatch) (*model.Recipient, error) {
	args := m.Called(ctx, recipientUUID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Recipient), args.Error(1)
}

func (m *MockRecipientService) DeleteRecipient(ctx context.Context, recipientUUID string) error {
	return m.Called(ctx, recipientUUID).Error(0)
}

type MockFieldService struct {
	mock.Mock
}

func (m *MockFieldService) PlaceField(ctx context.Context, documentUUID string, input model.NewField) (*model.SignatureField, error) {
	args := m.Called(ctx, documentUUID, input)
	return fieldOrNil(args.Get(0)), args.Error(1)
}

func (m *MockFieldService) ListFields(ctx context.Context, documentUUID string) ([]model.SignatureField, error) {
	args := m.Called(ctx, documentUUID)
	fields, _ := args.Get(0).([]model.SignatureField)
	return fields, args.Error(1)
}

func (m *MockFieldService) MoveField(ctx context.Context, fieldUUID string, x, y float64) (*model.SignatureField, error) {
	args := m.Called(ctx, fieldUUID, x, y)
	return fieldOrNil(args.Get(0)), args.Error(1)
}

func (m *MockFieldService) UpdateField(ctx context.Context, fieldUUID string, patch model.FieldPatch) (*model.SignatureField, error) {
	args := m.Called(ctx, fieldUUID, patch)
	return fieldOrNil(args.Get(0)), args.Error(1)
}

func (m *MockFieldService) DeleteField(ctx context.Context, fieldUUID string) error {
	return m.Called(ctx, fieldUUID).Error(0)
}

func fieldOrNil(v interface{}) *model.SignatureField {
	if v == nil {
		return nil
	}
	return v.(*model.SignatureField)
}

type MockSigningService struct {
	mock.Mock
}

func (m *MockSigningService) View(ctx context.Context, documentUUID, token string, meta model.RequestMeta) (*model.SigningSession, error) {
	args := m.Called(ctx, documentUUID, token, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SigningSession), args.Error(1)
}

func (m *MockSigningService) SaveFieldValue(ctx context.Context, documentUUID, token, fieldUUID, value string, meta model.RequestMeta) (*model.SignatureField, error) {
	args := m.Called(ctx, documentUUID, token, fieldUUID, value, meta)
	return fieldOrNil(args.Get(0)), args.Error(1)
}

func (m *MockSigningService) Sign(ctx context.Context, documentUUID, token string, values map[string]string, meta model.RequestMeta) (*model.SignResult, error) {
	args := m.Called(ctx, documentUUID, token, values, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SignResult), args.Error(1)
}

type MockAuthenticationService struct {
	mock.Mock
}

func (m *MockAuthenticationService) Login(ctx context.Context, email, password, userAgent, ipAddress string) (*model.TokensPair, error) {
	args := m.Called(ctx, email, password, userAgent, ipAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokensPair), args.Error(1)
}

func (m *MockAuthenticationService) RefreshToken(ctx context.Context, userAgent, ipAddress, accessToken, refreshToken string) (*model.TokensPair, error) {
	args := m.Called(ctx, userAgent, ipAddress, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TokensPair), args.Error(1)
}

func (m *MockAuthenticationService) Logout(ctx context.Context, refreshTokenUUID string) error {
	return m.Called(ctx, refreshTokenUUID).Error(0)
}

type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateAccessRefreshTokens(userUUID string) (*model.TokensPair, *model.RefreshToken, error) {
	args := m.Called(userUUID)
	return args.Get(0).(*model.TokensPair), args.Get(1).(*model.RefreshToken), args.Error(2)
}

func (m *MockJWTService) ValidateJWT(tokenString string) (*security.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Claims), args.Error(1)
}

func (m *MockJWTService) ParseAccessToken(tokenStr string) (*security.Claims, error) {
	args := m.Called(tokenStr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.Claims), args.Error(1)
}
