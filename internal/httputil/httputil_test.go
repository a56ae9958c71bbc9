package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"answer": "42"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "42", decode(t, rec)["answer"])
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
	}{
		{"client error", http.StatusBadRequest, http.StatusBadRequest},
		{"server error", http.StatusBadGateway, http.StatusBadGateway},
		{"zero defaults to 500", 0, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			Fail(discardLogger(), rec, "something broke", errors.New("cause"), tt.status)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, map[string]any{"error": "something broke"}, decode(t, rec))
		})
	}
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "healthy"}, decode(t, rec))
}

func TestValidationError(t *testing.T) {
	type query struct {
		Limit int `validate:"min=1,max=100"`
	}
	err := Validator.Struct(query{Limit: 500})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	ValidationError(discardLogger(), rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "invalid request", body["error"])
	assert.Equal(t, []any{"Limit must satisfy max=100"}, body["details"])
}

func TestValidationErrorNonValidatorError(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(discardLogger(), rec, errors.New("plain"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request", decode(t, rec)["error"])
}

func TestRouterRecoversPanics(t *testing.T) {
	r := NewRouter(discardLogger(), nil)
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", decode(t, rec)["error"])
}

func TestRouterCORS(t *testing.T) {
	r := NewRouter(discardLogger(), []string{"*"})
	r.Post("/ask", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"answer": "ok"})
	})

	preflight := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	preflight.Header.Set("Origin", "https://example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, preflight)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodPost, "/ask", nil)
	req.Header.Set("Origin", "https://example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
