package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/observability"
)

func TestSummarizeReturnsCompletionText(t *testing.T) {
	completions := &fakeCompletion{handler: func(req completion.Request) (string, error) {
		require.Equal(t, summaryMaxTokens, req.MaxTokens)
		require.Contains(t, req.User, "user: I locked myself out.")
		return "Customer is locked out of their account.", nil
	}}
	summarizer := NewSummarizer(completions, zap.NewNop(), observability.NewMetrics())

	transcript := domain.NewTranscript([]domain.Turn{
		{Role: domain.TurnRoleUser, Message: "I locked myself out."},
	})
	summary := summarizer.Summarize(context.Background(), transcript)
	require.Equal(t, "Customer is locked out of their account.", summary)
}

func TestSummarizeFallsBackToTruncatedTranscript(t *testing.T) {
	completions := &fakeCompletion{handler: func(completion.Request) (string, error) {
		return "", errors.New("upstream down")
	}}
	summarizer := NewSummarizer(completions, zap.NewNop(), observability.NewMetrics())

	long := strings.Repeat("a", 1500)
	summary := summarizer.Summarize(context.Background(), domain.NewTranscriptFromText(long))
	require.Len(t, summary, summaryFallbackLen)
	require.Equal(t, long[:summaryFallbackLen], summary)
}

func TestSummarizeTreatsEmptyResponseAsFailure(t *testing.T) {
	completions := &fakeCompletion{handler: func(completion.Request) (string, error) {
		return "", nil
	}}
	summarizer := NewSummarizer(completions, zap.NewNop(), observability.NewMetrics())

	summary := summarizer.Summarize(context.Background(), domain.NewTranscriptFromText("short voicemail"))
	require.Equal(t, "short voicemail", summary)
}
