package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const responseBody = `{
  "id": "resp_1",
  "object": "response",
  "created_at": 1700000000,
  "status": "completed",
  "model": "gpt-3.5-turbo",
  "output": [{
    "type": "message",
    "id": "msg_1",
    "status": "completed",
    "role": "assistant",
    "content": [{"type": "output_text", "text": "Why are tennis players bad at parties? They always raise a racket.", "annotations": []}]
  }]
}`

func TestClient_Generate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/responses", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responseBody))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", Model: "gpt-3.5-turbo", BaseURL: srv.URL}, zaptest.NewLogger(t))

	text, err := c.Generate(context.Background(), "Write a joke about tennis.")
	require.NoError(t, err)
	assert.Equal(t, "Why are tennis players bad at parties? They always raise a racket.", text)
	assert.Equal(t, "gpt-3.5-turbo", got["model"])
	assert.Equal(t, "Write a joke about tennis.", got["input"])
}

func TestClient_Generate_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream exploded","type":"server_error"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", Model: "gpt-3.5-turbo", BaseURL: srv.URL}, zaptest.NewLogger(t))

	_, err := c.Generate(context.Background(), "Write a joke about tennis.")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
