package utils

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteOK(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteOK(rec, map[string]string{"key": "value"})
	require.NoError(t, err)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, map[string]interface{}{"key": "value"}, resp.Data)
}

func TestWriteNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteNoContent(rec)
	assert.Equal(t, 204, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestWriteBadRequestWithDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteBadRequest(rec, "validation failed", map[string]interface{}{
		"Messages": "Messages is required",
	})
	require.NoError(t, err)
	assert.Equal(t, 400, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "validation failed", resp.Message)
	assert.Contains(t, resp.Details, "Messages")
}

func TestWriteServiceUnavailableCarriesRetryable(t *testing.T) {
	rec := httptest.NewRecorder()
	err := WriteServiceUnavailable(rec, "all providers failed", true)
	require.NoError(t, err)
	assert.Equal(t, 503, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Retryable)
}

func TestErrorWritersDefaultMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteUnauthorized(rec, ""))
	assert.Equal(t, 401, rec.Code)
	assert.Contains(t, rec.Body.String(), "Authentication required")

	rec = httptest.NewRecorder()
	require.NoError(t, WriteNotFound(rec, ""))
	assert.Equal(t, 404, rec.Code)

	rec = httptest.NewRecorder()
	require.NoError(t, WriteInternalError(rec, ""))
	assert.Equal(t, 500, rec.Code)
}
