package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/observability"
)

// CompletionClient is the text-completion collaborator consumed by the
// pipeline stages.
type CompletionClient interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

const (
	summarySystemPrompt = "Summarize customer voicemails for ticket creation. Focus on the main issue and urgency."
	summaryMaxTokens    = 80
	summaryFallbackLen  = 1000
)

// Summarizer condenses a transcript into one sentence. It never fails: any
// collaborator problem degrades to a truncated raw transcript.
type Summarizer struct {
	completions CompletionClient
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewSummarizer builds the stage.
func NewSummarizer(completions CompletionClient, logger *zap.Logger, metrics *observability.Metrics) *Summarizer {
	return &Summarizer{completions: completions, logger: logger, metrics: metrics}
}

// Summarize returns a one-sentence summary, or the first kilobyte of the
// transcript when the collaborator is unavailable.
func (s *Summarizer) Summarize(ctx context.Context, transcript domain.Transcript) string {
	text, err := s.completions.Complete(ctx, completion.Request{
		System:    summarySystemPrompt,
		User:      "Summarize this voicemail in one sentence:\n" + transcript.Joined(),
		MaxTokens: summaryMaxTokens,
	})
	if err != nil || text == "" {
		s.logger.Warn("summarization failed, using raw transcript", zap.Error(err))
		s.metrics.RecordFallback(observability.StageSummarize)
		joined := transcript.Joined()
		if len(joined) > summaryFallbackLen {
			joined = joined[:summaryFallbackLen]
		}
		return joined
	}
	s.metrics.RecordStage(observability.StageSummarize, "ok")
	return text
}
