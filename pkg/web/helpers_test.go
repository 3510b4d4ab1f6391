package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError_WritesEnvelope(t *testing.T) {
	// given
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	prev := now
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = prev })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodGet, "/api/products/m9", nil)
	rr := httptest.NewRecorder()

	// when
	RespondError(rr, req, logger, http.StatusNotFound, "Product not found")

	// then
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"timestamp":"2024-05-01T10:00:00Z",
		"status":404,
		"error":"Not Found",
		"message":"Product not found",
		"path":"/api/products/m9"
	}`, rr.Body.String())
}

func TestRespondInternalError_HidesDetail(t *testing.T) {
	// given
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	req := httptest.NewRequest(http.MethodDelete, "/api/products/m1", nil)
	rr := httptest.NewRecorder()

	// when
	RespondInternalError(rr, req, logger)

	// then
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, MsgUnexpected, body.Message)
	assert.Equal(t, "Internal Server Error", body.Error)
	assert.Empty(t, body.ValidationErrors)
}

func TestRespondJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("nil payload writes status only", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RespondJSON(rr, logger, http.StatusNoContent, nil)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("unencodable payload gives 500", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RespondJSON(rr, logger, http.StatusOK, map[string]any{"ch": make(chan int)})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("payload encoded", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RespondJSON(rr, logger, http.StatusCreated, map[string]string{"username": "bob"})
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.JSONEq(t, `{"username":"bob"}`, rr.Body.String())
	})
}
