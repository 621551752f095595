package httpserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/samhug/zfs-remote-keyloader/cmdutil"
	"github.com/samhug/zfs-remote-keyloader/zfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testDataset = "rpool/home"

// setupTestHandler creates a router around a handler backed by a mock key loader
func setupTestHandler(t *testing.T) (http.Handler, *zfs.MockKeyLoader, *ShutdownSignal) {
	t.Helper()

	// Create logger with no output for tests
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockLoader := new(zfs.MockKeyLoader)
	shutdown := NewShutdownSignal()
	handler := NewHandler(mockLoader, testDataset, shutdown, logger)

	mux := chi.NewRouter()
	handler.RegisterRoutes(mux)
	return mux, mockLoader, shutdown
}

func postForm(t *testing.T, mux http.Handler, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/loadkey", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func signalled(s *ShutdownSignal) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

func TestHandleForm(t *testing.T) {
	mux, mockLoader, _ := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body := readBody(t, resp)
	assert.Contains(t, body, `action="/loadkey"`)
	assert.Contains(t, body, `name="key"`)
	assert.Contains(t, body, testDataset)

	mockLoader.AssertNotCalled(t, "LoadKey", mock.Anything, mock.Anything, mock.Anything)
}

// Test HandleLoadKey - Success Path
func TestHandleLoadKey_Success(t *testing.T) {
	mux, mockLoader, shutdown := setupTestHandler(t)
	mockLoader.On("LoadKey", mock.Anything, testDataset, []byte("correct-pass")).Return(nil).Once()

	resp := postForm(t, mux, "key=correct-pass")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Success")
	assert.True(t, signalled(shutdown))
	mockLoader.AssertExpectations(t)
	mockLoader.AssertNumberOfCalls(t, "LoadKey", 1)
}

func TestHandleLoadKey_PassesExactValue(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"surrounding whitespace", url.Values{"key": {"  padded key \t"}}.Encode(), "  padded key \t"},
		{"reserved characters", url.Values{"key": {"p@ss=w0rd&x+y%"}}.Encode(), "p@ss=w0rd&x+y%"},
		{"unicode", url.Values{"key": {"pässwörd ✓"}}.Encode(), "pässwörd ✓"},
		{"empty value", "key=", ""},
		{"first value wins", "key=first&key=second", "first"},
		{"other fields ignored", "submit=Load+Key&key=secret", "secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, mockLoader, _ := setupTestHandler(t)
			mockLoader.On("LoadKey", mock.Anything, testDataset, []byte(tt.expected)).Return(nil).Once()

			resp := postForm(t, mux, tt.body)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			mockLoader.AssertExpectations(t)
			mockLoader.AssertNumberOfCalls(t, "LoadKey", 1)
		})
	}
}

// Test HandleLoadKey - Missing key field
func TestHandleLoadKey_MissingKey(t *testing.T) {
	for _, body := range []string{"foo=bar", "", "keys=x"} {
		mux, mockLoader, shutdown := setupTestHandler(t)

		resp := postForm(t, mux, body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "body %q", body)
		assert.Contains(t, readBody(t, resp), "key")
		assert.False(t, signalled(shutdown))
		mockLoader.AssertNotCalled(t, "LoadKey", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestHandleLoadKey_MalformedForm(t *testing.T) {
	mux, mockLoader, _ := setupTestHandler(t)

	resp := postForm(t, mux, "key=abc%zzsecret")

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotContains(t, readBody(t, resp), "secret")
	mockLoader.AssertNotCalled(t, "LoadKey", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleLoadKey_BodyTooLarge(t *testing.T) {
	mux, mockLoader, _ := setupTestHandler(t)

	resp := postForm(t, mux, "key="+strings.Repeat("a", maxBodySize+1))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	mockLoader.AssertNotCalled(t, "LoadKey", mock.Anything, mock.Anything, mock.Anything)
}

// Test HandleLoadKey - Backend rejects the key
func TestHandleLoadKey_Rejected(t *testing.T) {
	mux, mockLoader, shutdown := setupTestHandler(t)
	mockLoader.On("LoadKey", mock.Anything, testDataset, []byte("wrong-pass")).
		Return(&cmdutil.ExecError{Program: "zfs", Op: "load-key", ExitCode: 255, Stderr: "Key load error: Incorrect key provided for 'rpool/home'."})

	resp := postForm(t, mux, "key=wrong-pass")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, "Incorrect key provided")
	assert.NotContains(t, body, "wrong-pass")
	assert.False(t, signalled(shutdown))
	mockLoader.AssertExpectations(t)
}

func TestHandleLoadKey_SpawnFailure(t *testing.T) {
	mux, mockLoader, shutdown := setupTestHandler(t)
	mockLoader.On("LoadKey", mock.Anything, testDataset, mock.Anything).
		Return(&cmdutil.SpawnError{Command: "zfs", Err: errors.New(`exec: "zfs": executable file not found in $PATH`)})

	resp := postForm(t, mux, "key=whatever")

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "executable file not found")
	assert.False(t, signalled(shutdown))
}

func TestHandleLoadKey_RepeatedSuccessDoesNotBlock(t *testing.T) {
	mux, mockLoader, shutdown := setupTestHandler(t)
	mockLoader.On("LoadKey", mock.Anything, testDataset, []byte("correct-pass")).Return(nil)

	for i := 0; i < 3; i++ {
		resp := postForm(t, mux, "key=correct-pass")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	assert.True(t, signalled(shutdown))
	assert.False(t, signalled(shutdown))
}

func TestNotFound(t *testing.T) {
	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/loadkey"},
		{http.MethodPost, "/"},
		{http.MethodPut, "/loadkey"},
		{http.MethodDelete, "/"},
		{http.MethodPost, "/loadkey/extra"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			mux, mockLoader, _ := setupTestHandler(t)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader("key=x"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			resp := w.Result()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Empty(t, readBody(t, resp))
			mockLoader.AssertNotCalled(t, "LoadKey", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}
