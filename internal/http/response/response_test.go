package response

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

	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	Success(w, map[string]string{"id": "book-1"}, testLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	body := decode(t, w)
	assert.InDelta(t, Version, body["v"], 0)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"id": "book-1"}, body["data"])
	assert.NotContains(t, body, "error")
}

func TestJSON_ErrorStatusIsUnsuccessful(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusNotFound, nil, testLogger())

	assert.Equal(t, false, decode(t, w)["success"])
}

func TestTooManyRequests(t *testing.T) {
	w := httptest.NewRecorder()

	TooManyRequests(w, "slow down", testLogger())

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decode(t, w)
	assert.Equal(t, "RATE_LIMITED", body["code"])
	assert.Equal(t, "slow down", body["message"])
	assert.Equal(t, false, body["success"])
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", domainerrors.NotFound("book missing"), http.StatusNotFound, "NOT_FOUND"},
		{"validation", domainerrors.Validation("bad page"), http.StatusBadRequest, "VALIDATION"},
		{"remote", domainerrors.RemoteUnavailable("store down", errors.New("dial")), http.StatusBadGateway, "REMOTE_UNAVAILABLE"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			HandleError(w, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decode(t, w)["code"])
		})
	}
}

func TestHandleError_HidesInternalMessages(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("badger: value log corrupted"), testLogger())

	assert.Equal(t, "internal server error", decode(t, w)["message"])
}
