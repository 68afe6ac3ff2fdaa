package ports

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// TxManager : источник соединений для репозиториев
type TxManager interface {
	Executor() sqlx.ExtContext
	BeginTX(ctx context.Context) (sqlx.ExtContext, func() error, func() error, error)
}
