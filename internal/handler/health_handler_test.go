package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"esign-web-server/internal/handler"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name   string
		checks []handler.HealthCheck
		status int
		want   map[string]string
	}{
		{
			name:   "all up",
			checks: []handler.HealthCheck{{Name: "postgres", Check: ok}, {Name: "redis", Check: ok}},
			status: http.StatusOK,
			want:   map[string]string{"postgres": "ok", "redis": "ok"},
		},
		{
			name:   "redis down",
			checks: []handler.HealthCheck{{Name: "postgres", Check: ok}, {Name: "redis", Check: down}},
			status: http.StatusServiceUnavailable,
			want:   map[string]string{"postgres": "ok", "redis": "unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.NewHealthHandler(tt.checks...).Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			require.Equal(t, tt.status, rec.Code)
			var body struct {
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body.Checks)
		})
	}
}
