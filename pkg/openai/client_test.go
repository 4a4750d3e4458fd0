package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voo-ward/voo-citizen-backend/pkg/config"
	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

func newTestServer(t *testing.T, content string, capture *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		if capture != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	client, err := NewClient(config.OpenAIConfig{
		APIKey:            "sk-test",
		Model:             "gpt-4o",
		RequestsPerSecond: 100,
		Burst:             10,
		Timeout:           5 * time.Second,
	}, WithBaseURL(serverURL+"/v1"))
	require.NoError(t, err)
	return client
}

func TestCompleteSendsImageAndJSONFormat(t *testing.T) {
	var payload map[string]any
	server := newTestServer(t, `  {"category":"Damaged Roads"}  `, &payload)
	defer server.Close()

	client := newTestClient(t, server.URL)
	out, err := client.Complete(context.Background(), Request{
		System:    "system prompt",
		User:      "Analyze this civic issue image and categorize it.",
		ImageURL:  "https://cdn.example/pothole.jpg",
		MaxTokens: 500,
		JSON:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"category":"Damaged Roads"}`, out)

	assert.Equal(t, "gpt-4o", payload["model"])
	assert.EqualValues(t, 500, payload["max_tokens"])
	format, ok := payload["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])

	messages, ok := payload["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)
	parts, ok := user["content"].([]any)
	require.True(t, ok, "expected multi-part user content")
	require.Len(t, parts, 2)
	assert.Equal(t, "image_url", parts[0].(map[string]any)["type"])
}

func TestCompleteRejectsEmptyContent(t *testing.T) {
	server := newTestServer(t, "   ", nil)
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), Request{User: "hi", MaxTokens: 20})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestCompleteWrapsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL).Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	assert.True(t, pkgerrors.Is(err, pkgerrors.CodeDependency))
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(config.OpenAIConfig{})
	assert.ErrorIs(t, err, errAPIKeyRequired)
}
