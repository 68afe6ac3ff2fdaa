package service

import (
	"context"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/ports"
	"esign-web-server/internal/security"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repositories : SQL слой, общий для сервисов документов и подписания
type Repositories struct {
	Documents  ports.DocumentRepository
	Recipients ports.RecipientRepository
	Fields     ports.FieldRepository
	Signatures ports.SignatureRepository
	AccessLogs ports.AccessLogRepository
	Users      ports.UserRepository
}

const documentNotFound = "Document not found"

func currentUser(ctx context.Context) (*security.Claims, error) {
	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeUnauthenticated, "authentication required")
	}
	return claims, nil
}

func validUUID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.InvalidInput(fmt.Sprintf("malformed %s id", what))
	}
	return nil
}

// documentPrefix : все версии файла документа лежат под одним префиксом владельца
func documentPrefix(ownerUUID, documentUUID string) string {
	return fmt.Sprintf("users/%s/documents/%s/", ownerUUID, documentUUID)
}

// versionKey : каждая версия файла это отдельный объект, старые не перезаписываются
func versionKey(ownerUUID, documentUUID string, version int) string {
	return fmt.Sprintf("%sv%d-%s.pdf", documentPrefix(ownerUUID, documentUUID), version, uuid.New().String())
}

func utcNow() time.Time {
	return time.Now().UTC()
}
