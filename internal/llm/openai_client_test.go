// ABOUTME: Tests for the OpenAI chat client against a local fake API
// ABOUTME: Covers success, retries on server errors and permanent client errors
package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, call int32)) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r, calls.Add(1))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func writeCompletion(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"server_error"}}`))
}

func testClient(t *testing.T, url string, retries int) *OpenAIClient {
	t.Helper()
	cfg := DefaultConfig("test-key")
	cfg.BaseURL = url + "/v1"
	cfg.MaxRetries = retries
	cfg.RetryDelay = time.Millisecond
	cfg.Timeout = 5 * time.Second

	client, err := NewOpenAIClientWithConfig(cfg)
	require.NoError(t, err)
	return client
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	assert.Error(t, err)

	client, err := NewOpenAIClient("key")
	require.NoError(t, err)
	assert.Equal(t, DefaultChatModel, client.Model())
}

func TestComplete(t *testing.T) {
	var gotBody map[string]any
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request, call int32) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeCompletion(t, w, "  date,goal\n")
	})

	out, err := testClient(t, srv.URL, 2).Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "date,goal", out)
	assert.Equal(t, int32(1), calls.Load())

	messages, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "sys", messages[0].(map[string]any)["content"])
	assert.Equal(t, "usr", messages[1].(map[string]any)["content"])
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request, call int32) {
		if call < 3 {
			writeError(w, http.StatusInternalServerError)
			return
		}
		writeCompletion(t, w, "ok")
	})

	out, err := testClient(t, srv.URL, 3).Complete(context.Background(), "sys", "usr")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, int32(3), calls.Load())
}

func TestComplete_ClientErrorIsPermanent(t *testing.T) {
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request, call int32) {
		writeError(w, http.StatusUnauthorized)
	})

	_, err := testClient(t, srv.URL, 3).Complete(context.Background(), "sys", "usr")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_EmptyChoicesExhaustRetries(t *testing.T) {
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request, call int32) {
		writeCompletion(t, w, "   ")
	})

	_, err := testClient(t, srv.URL, 1).Complete(context.Background(), "sys", "usr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty completion")
	assert.Equal(t, int32(2), calls.Load())
}
