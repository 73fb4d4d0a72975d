package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// Request describes one completion call. MaxTokens and Temperature are
// omitted from the wire request when zero.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient builds a completion client. The configured timeout is the only
// bound on a call; the upstream API imposes none of its own.
func NewClient(cfg config.OpenAIConfig, logger *zap.Logger) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete performs one chat-completion call and returns the trimmed text of
// the first choice. Any transport failure, non-2xx status or empty choice list
// is reported as an upstream error.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.User})

	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", apperrors.NewUpstreamError("completion service", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", apperrors.NewUpstreamError("completion service", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", apperrors.NewUpstreamError("completion service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewUpstreamError("completion service", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("completion call failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return "", apperrors.NewUpstreamError("completion service",
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", apperrors.NewUpstreamError("completion service", err)
	}
	if len(parsed.Choices) == 0 {
		return "", apperrors.NewUpstreamError("completion service", fmt.Errorf("response contained no choices"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
