package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/mindflow/types"
)

// =============================================================================
// 🧪 响应信封
// =============================================================================

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) Response {
	t.Helper()
	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.Response
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusAccepted, []int{1, 2, 3})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `[1,2,3]`, w.Body.String())
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, map[string]string{"key": "value"})

	var data map[string]string
	resp := decodeEnvelope(t, w, &data)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.False(t, resp.Timestamp.IsZero())
	assert.Equal(t, "value", data["key"])
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"invalid request", types.NewError(types.ErrInvalidRequest, "bad"), http.StatusBadRequest, "INVALID_REQUEST", "bad"},
		{"session missing", types.NewError(types.ErrSessionNotFound, "gone"), http.StatusNotFound, "SESSION_NOT_FOUND", "gone"},
		{"unknown activity", types.NewError(types.ErrUnknownActivity, "nope"), http.StatusBadRequest, "UNKNOWN_ACTIVITY", "nope"},
		{"explicit status wins", types.NewError(types.ErrInternalError, "teapot").WithHTTPStatus(http.StatusTeapot), http.StatusTeapot, "INTERNAL_ERROR", "teapot"},
		{"plain error is hidden", errors.New("pq: password authentication failed"), http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err, zap.NewNop())

			resp := decodeEnvelope(t, w, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
			assert.NotContains(t, w.Body.String(), "password")
		})
	}
}

// =============================================================================
// 🧪 DecodeJSONBody
// =============================================================================

func TestDecodeJSONBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name        string
		body        string
		contentType string
		wantErr     bool
		wantMsg     string
	}{
		{name: "valid", body: `{"name":"ada"}`, contentType: "application/json"},
		{name: "charset suffix", body: `{"name":"ada"}`, contentType: "application/json; charset=utf-8"},
		{name: "no content type", body: `{"name":"ada"}`},
		{name: "empty", body: "", contentType: "application/json", wantErr: true, wantMsg: "request body is empty"},
		{name: "malformed", body: `{"name":`, contentType: "application/json", wantErr: true, wantMsg: "invalid JSON body"},
		{name: "unknown field", body: `{"name":"ada","admin":true}`, contentType: "application/json", wantErr: true, wantMsg: "invalid JSON body"},
		{name: "wrong content type", body: `name=ada`, contentType: "application/x-www-form-urlencoded", wantErr: true, wantMsg: "Content-Type must be application/json"},
		{name: "too large", body: `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`, contentType: "application/json", wantErr: true, wantMsg: "request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				r.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			var dst payload
			err := DecodeJSONBody(w, r, &dst, zap.NewNop())
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, "ada", dst.Name)
				return
			}

			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeEnvelope(t, w, nil)
			assert.Equal(t, tt.wantMsg, resp.Error.Message)
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)
	_, err := rw.Write([]byte("ok"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rw.StatusCode)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Same(t, rec, rw.Unwrap())
}
