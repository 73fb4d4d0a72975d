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
)

const fieldSystemPrompt = `You are an AI assistant that fills service request fields based on a voicemail transcript.
Given the voicemail transcript and summary, provide intelligent values for ALL fields, both required and optional.
Output ONLY valid JSON in the format:
{"fieldId1": "value1", "fieldId2": "value2", ... }
Do NOT leave any field as "N/A" or blank. Make each value meaningful based on the transcript.`

// FieldValueSynthesizer generates values for every field of the chosen
// request type in a single completion call.
type FieldValueSynthesizer struct {
	completions CompletionClient
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewFieldValueSynthesizer builds the stage.
func NewFieldValueSynthesizer(completions CompletionClient, logger *zap.Logger, metrics *observability.Metrics) *FieldValueSynthesizer {
	return &FieldValueSynthesizer{completions: completions, logger: logger, metrics: metrics}
}

// Synthesize returns a value map covering the given specs. With no specs it
// returns an empty map without calling the collaborator. On any collaborator
// or parse failure it degrades to filling only summary and description;
// callers must tolerate the partially filled map. Multi-value fields come back
// as arrays on every path.
func (f *FieldValueSynthesizer) Synthesize(ctx context.Context, transcript domain.Transcript, summary string, specs []domain.FieldSpec) domain.FieldValueMap {
	if len(specs) == 0 {
		return domain.FieldValueMap{}
	}

	values := f.generate(ctx, transcript, summary, specs)
	values.CoerceArrays(specs)
	return values
}

func (f *FieldValueSynthesizer) generate(ctx context.Context, transcript domain.Transcript, summary string, specs []domain.FieldSpec) domain.FieldValueMap {
	text, err := f.completions.Complete(ctx, completion.Request{
		System:      fieldSystemPrompt,
		User:        f.buildPrompt(transcript, summary, specs),
		Temperature: 0.3,
	})
	if err != nil {
		f.logger.Warn("field synthesis failed, filling summary and description only", zap.Error(err))
		f.metrics.RecordFallback(observability.StageSynthesize)
		return fallbackFieldValues(transcript, summary, specs)
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		f.logger.Warn("field synthesis response was not valid JSON, filling summary and description only",
			zap.String("response", text))
		f.metrics.RecordFallback(observability.StageSynthesize)
		return fallbackFieldValues(transcript, summary, specs)
	}

	// Keep only declared fields; the model occasionally invents extras.
	values := make(domain.FieldValueMap, len(specs))
	for _, spec := range specs {
		if val, ok := raw[spec.FieldID]; ok && val != nil {
			values[spec.FieldID] = val
		}
	}
	f.metrics.RecordStage(observability.StageSynthesize, "ok")
	return values
}

// fallbackFieldValues fills only summary and description. Other fields stay
// unset even when required; the ticketing service is the final arbiter of
// whether the degraded ticket is acceptable.
func fallbackFieldValues(transcript domain.Transcript, summary string, specs []domain.FieldSpec) domain.FieldValueMap {
	values := domain.FieldValueMap{}
	for _, spec := range specs {
		switch {
		case isSummaryField(spec):
			values[spec.FieldID] = "AI Voicemail: " + summary
		case isDescriptionField(spec):
			values[spec.FieldID] = transcript.Joined()
		}
	}
	return values
}

func isSummaryField(spec domain.FieldSpec) bool {
	return spec.FieldID == "summary" || strings.Contains(strings.ToLower(spec.DisplayName), "summary")
}

func isDescriptionField(spec domain.FieldSpec) bool {
	return spec.FieldID == "description" || strings.Contains(strings.ToLower(spec.DisplayName), "description")
}

func (f *FieldValueSynthesizer) buildPrompt(transcript domain.Transcript, summary string, specs []domain.FieldSpec) string {
	var b strings.Builder
	b.WriteString("Voicemail transcript:\n")
	b.WriteString(transcript.Joined())
	b.WriteString("\n\nSummary:\n")
	b.WriteString(summary)
	b.WriteString("\n\nFields to fill:\n")
	for _, spec := range specs {
		fmt.Fprintf(&b, "- %s (id: %s, type: %s, required: %t)\n",
			spec.DisplayName, spec.FieldID, spec.Type, spec.Required)
	}
	return b.String()
}
