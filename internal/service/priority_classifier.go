package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/observability"
)

// Keyword matching is substring-based on purpose: "urgently" must hit
// "urgent". The occasional false positive ("down" inside "download") is
// accepted.
var urgencyKeywords = []string{
	"urgent", "asap", "critical", "emergency", "immediately",
	"broken", "down", "not working", "failed", "error",
}

var lowPriorityKeywords = []string{
	"question", "inquiry", "information", "when", "how",
	"general", "feedback", "suggestion",
}

const prioritySystemPrompt = "Determine the priority level for a customer service request. Respond with only one word: Low, Medium, or High."

// PriorityClassifier assigns urgency with a two-tier heuristic: lexical scan
// first, completion call only for ambiguous text.
type PriorityClassifier struct {
	completions CompletionClient
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewPriorityClassifier builds the stage.
func NewPriorityClassifier(completions CompletionClient, logger *zap.Logger, metrics *observability.Metrics) *PriorityClassifier {
	return &PriorityClassifier{completions: completions, logger: logger, metrics: metrics}
}

// Classify returns exactly one priority. Lexical signals pre-empt the model;
// Medium is the universal default when everything else is inconclusive.
func (p *PriorityClassifier) Classify(ctx context.Context, transcript domain.Transcript, summary string) domain.Priority {
	text := strings.ToLower(transcript.Joined() + " " + summary)

	for _, keyword := range urgencyKeywords {
		if strings.Contains(text, keyword) {
			p.metrics.RecordStage(observability.StagePrioritize, "ok")
			return domain.PriorityHigh
		}
	}
	for _, keyword := range lowPriorityKeywords {
		if strings.Contains(text, keyword) {
			p.metrics.RecordStage(observability.StagePrioritize, "ok")
			return domain.PriorityLow
		}
	}

	response, err := p.completions.Complete(ctx, completion.Request{
		System:      prioritySystemPrompt,
		User:        "Voicemail: " + transcript.Joined() + "\nSummary: " + summary,
		MaxTokens:   10,
		Temperature: 0.1,
	})
	if err != nil {
		p.logger.Warn("priority classification failed, defaulting to Medium", zap.Error(err))
		p.metrics.RecordFallback(observability.StagePrioritize)
		return domain.PriorityMedium
	}

	priority := domain.Priority(strings.TrimSpace(response))
	if priority.IsValid() {
		p.metrics.RecordStage(observability.StagePrioritize, "ok")
		return priority
	}
	p.metrics.RecordFallback(observability.StagePrioritize)
	return domain.PriorityMedium
}
