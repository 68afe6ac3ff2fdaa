package util

import (
	"encoding/json"
	"esign-web-server/internal/apperror"
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// SetupLogger : создаёт zap логгер и делает его глобальным (zap.L())
func SetupLogger(env, level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel
	}

	var encoder zapcore.Encoder
	if env == "dev" {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zap.NewAtomicLevelAt(zapLevel))
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)).
		With(zap.String("service", "esign-web-server"), zap.String("environment", env))

	zap.ReplaceGlobals(logger)
	return logger, nil
}

// LogError : логирует ошибку и возвращает её обёрнутой сообщением
func LogError(message string, err error) error {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Error(message, zap.Error(err))
	return fmt.Errorf("%s: %w", message, err)
}

type errorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Code    int      `json:"code"`
	Details []string `json:"details,omitempty"`
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	writeError(w, errorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// HandleAppError : переводит ошибку домена в HTTP ответ.
// Для Forbidden и NotFound клиент получает одинаковый ответ с notFoundMessage
func HandleAppError(w http.ResponseWriter, err error, notFoundMessage string) {
	appErr := apperror.As(err)
	status := apperror.HTTPStatus(appErr.Code)

	message := appErr.Message
	switch appErr.Code {
	case apperror.CodeForbidden, apperror.CodeNotFound:
		if notFoundMessage != "" {
			message = notFoundMessage
		}
	case apperror.CodeInternal, apperror.CodeUpstream:
		zap.L().Error("request failed", zap.String("code", string(appErr.Code)), zap.Error(err))
		if appErr.Code == apperror.CodeInternal {
			message = "internal server error"
		}
	}

	writeError(w, errorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Details: appErr.Details,
	})
}

func writeError(w http.ResponseWriter, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		zap.L().Warn("failed to encode error response", zap.Error(err))
	}
}

// WriteJSON : успешный JSON ответ
func WriteJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}
