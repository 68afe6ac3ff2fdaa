package migrations

import "embed"

// FS : SQL миграции, встроенные в бинарь
//
//go:embed *.sql
var FS embed.FS
