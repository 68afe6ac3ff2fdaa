package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code : класс ошибки, по которому HTTP слой выбирает статус ответа
type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeConflict        Code = "CONFLICT"
	CodeUpstream        Code = "UPSTREAM_FAILURE"
	CodeInternal        Code = "INTERNAL"
)

// Error : ошибка домена с кодом и сообщением, безопасным для клиента
type Error struct {
	Code    Code
	Message string
	Details []string
	Cause   error
}

var (
	ErrUnauthenticated = &Error{Code: CodeUnauthenticated}
	ErrForbidden       = &Error{Code: CodeForbidden}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrUpstream        = &Error{Code: CodeUpstream}
)

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is : сравнение только по коду, чтобы errors.Is(err, ErrNotFound) работал для любых сообщений
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// WithDetails : копия ошибки с дополнительными деталями (например, список незаполненных полей)
func (e *Error) WithDetails(details ...string) *Error {
	if e == nil {
		return nil
	}
	return &Error{Code: e.Code, Message: e.Message, Details: details, Cause: e.Cause}
}

func NotFound(message string) *Error     { return New(CodeNotFound, message) }
func Forbidden(message string) *Error    { return New(CodeForbidden, message) }
func InvalidInput(message string) *Error { return New(CodeInvalidInput, message) }
func Conflict(message string) *Error     { return New(CodeConflict, message) }

func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }

func Upstream(err error, message string) *Error { return Wrap(err, CodeUpstream, message) }

// As : достаёт *Error из цепочки, ошибки без кода считаются внутренними
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return &Error{Code: CodeInternal, Message: "internal server error", Cause: err}
}

func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	return As(err).Code
}

// HTTPStatus : Forbidden отдаётся как 404, чтобы не раскрывать существование чужих ресурсов
func HTTPStatus(code Code) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden, CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
