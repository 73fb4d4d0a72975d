package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/observability"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// RequestTypeClassifier picks one request type from the tenant catalog based
// on the voicemail summary. Its output is always a member of the catalog.
type RequestTypeClassifier struct {
	completions CompletionClient
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewRequestTypeClassifier builds the stage.
func NewRequestTypeClassifier(completions CompletionClient, logger *zap.Logger, metrics *observability.Metrics) *RequestTypeClassifier {
	return &RequestTypeClassifier{completions: completions, logger: logger, metrics: metrics}
}

type requestTypeChoice struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Classify returns the chosen catalog entry. An empty catalog is the only
// error; every collaborator or parse failure falls back to the first entry.
// A malformed response is absorbed, never retried.
func (c *RequestTypeClassifier) Classify(ctx context.Context, summary string, catalog []domain.RequestType) (domain.RequestType, error) {
	if len(catalog) == 0 {
		return domain.RequestType{}, apperrors.NewEmptyCatalog("")
	}

	text, err := c.completions.Complete(ctx, completion.Request{
		User:        c.buildPrompt(summary, catalog),
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Warn("request type classification failed, using first catalog entry", zap.Error(err))
		c.metrics.RecordFallback(observability.StageClassify)
		return catalog[0], nil
	}

	var choice requestTypeChoice
	if err := json.Unmarshal([]byte(text), &choice); err != nil {
		c.logger.Warn("request type response was not valid JSON, using first catalog entry",
			zap.String("response", text))
		c.metrics.RecordFallback(observability.StageClassify)
		return catalog[0], nil
	}

	for _, entry := range catalog {
		if choice.ID != "" && entry.ID == choice.ID {
			c.metrics.RecordStage(observability.StageClassify, "ok")
			return entry, nil
		}
	}
	for _, entry := range catalog {
		if choice.Name != "" && entry.Name == choice.Name {
			c.metrics.RecordStage(observability.StageClassify, "ok")
			return entry, nil
		}
	}

	c.logger.Warn("classified request type not in catalog, using first catalog entry",
		zap.String("chosen_id", choice.ID), zap.String("chosen_name", choice.Name))
	c.metrics.RecordFallback(observability.StageClassify)
	return catalog[0], nil
}

func (c *RequestTypeClassifier) buildPrompt(summary string, catalog []domain.RequestType) string {
	var b strings.Builder
	b.WriteString("You are an AI service-desk router. Given a voicemail summary, pick the most appropriate request type.\n\n")
	b.WriteString("Available request types:\n")
	for _, entry := range catalog {
		fmt.Fprintf(&b, "- %s (id: %s)\n", entry.Name, entry.ID)
	}
	b.WriteString("\nRespond ONLY with valid JSON:\n{\"name\": \"<name>\", \"id\": \"<id>\"}\n\n")
	fmt.Fprintf(&b, "Summary: %q\n", summary)
	return b.String()
}
