package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{Internal("x"), http.StatusInternalServerError},
		{Validation("x"), http.StatusBadRequest},
		{BadRequestWrap(io.EOF, "x"), http.StatusBadRequest},
		{UnsupportedMediaWrap(io.EOF, "x"), http.StatusUnsupportedMediaType},
		{NotFound("x"), http.StatusNotFound},
		{TooLarge("x"), http.StatusRequestEntityTooLarge},
		{RateLimit("x"), http.StatusTooManyRequests},
		{ServiceUnavailable("x"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.StatusCode)
		})
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := fmt.Errorf("read sheet: %w", io.ErrUnexpectedEOF)
	err := BadRequestWrap(cause, "could not read upload")

	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Contains(t, err.Error(), "BAD_REQUEST: could not read upload")
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestWriteError(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("app error with details", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)
		err := Validation("missing columns").WithDetails(map[string][]string{"missing": {"cost"}})

		WriteError(w, r, logger, err, "req-1")

		require.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Success bool `json:"success"`
			Error   struct {
				Code      string              `json:"code"`
				Message   string              `json:"message"`
				Details   map[string][]string `json:"details"`
				RequestID string              `json:"request_id"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, []string{"cost"}, resp.Error.Details["missing"])
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("wrapped app error keeps its code", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)

		WriteError(w, r, logger, fmt.Errorf("export: %w", NotFound("unknown sheet")), "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "NOT_FOUND")
	})

	t.Run("plain error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/", nil)

		WriteError(w, r, logger, io.EOF, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
		assert.NotContains(t, w.Body.String(), "EOF")
	})
}
