package repository

import (
	"database/sql"
	"errors"
	"esign-web-server/internal/apperror"
	"esign-web-server/internal/util"
)

// notFoundOr : sql.ErrNoRows превращается в NotFound, остальное логируется как внутренняя ошибка
func notFoundOr(err error, notFound string, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(err, apperror.CodeNotFound, notFound)
	}
	return util.LogError(message, err)
}

// expectAffected : условный UPDATE/DELETE, не затронувший строк, означает устаревшее состояние
func expectAffected(result sql.Result, err error, onZero *apperror.Error, message string) error {
	if err != nil {
		return util.LogError(message, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError("[Repository] не удалось проверить число изменённых строк", err)
	}
	if rowsAffected == 0 {
		return onZero
	}

	return nil
}

// conflictOr : UPDATE ... RETURNING без строк означает, что условие на состояние не выполнилось
func conflictOr(err error, conflict string, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.Wrap(err, apperror.CodeConflict, conflict)
	}
	return util.LogError(message, err)
}
