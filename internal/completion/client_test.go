package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.OpenAIConfig{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		Model:          "gpt-4o-mini",
		TimeoutSeconds: 5,
	}, zap.NewNop())
}

func TestCompleteSendsChatRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "gpt-4o-mini", body.Model)
		require.Equal(t, 80, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		require.Equal(t, "system", body.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  One sentence summary.  "}},
			},
		})
	})

	text, err := client.Complete(context.Background(), Request{
		System:    "Summarize.",
		User:      "voicemail text",
		MaxTokens: 80,
	})
	require.NoError(t, err)
	require.Equal(t, "One sentence summary.", text)
}

func TestCompleteOmitsSystemMessageWhenEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		require.Equal(t, "user", body.Messages[0].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	require.NoError(t, err)
}

func TestCompleteNon2xxIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUpstream, apperrors.CodeOf(err))
}

func TestCompleteEmptyChoicesIsUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), Request{User: "hi"})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeUpstream, apperrors.CodeOf(err))
}
