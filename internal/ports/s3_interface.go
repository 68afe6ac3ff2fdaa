package ports

import (
	"context"
	"time"
)

// S3Storage : объектное хранилище файлов документов
type S3Storage interface {
	PutObject(ctx context.Context, key string, body []byte, contentType string) error
	GetObject(ctx context.Context, key string) ([]byte, error)
	CopyObject(ctx context.Context, srcKey, dstKey string) error
	GeneratePresignedGetURL(ctx context.Context, key string, expire time.Duration) (string, error)
	ObjectURL(key string) string
	DeleteObject(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
