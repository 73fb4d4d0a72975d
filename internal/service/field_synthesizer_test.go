package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/observability"
)

func newSynthesizer(handler func(completion.Request) (string, error)) (*FieldValueSynthesizer, *fakeCompletion) {
	completions := &fakeCompletion{handler: handler}
	return NewFieldValueSynthesizer(completions, zap.NewNop(), observability.NewMetrics()), completions
}

func TestSynthesizeEmptySpecsSkipsCompletion(t *testing.T) {
	synthesizer, completions := newSynthesizer(nil)

	values := synthesizer.Synthesize(context.Background(),
		domain.NewTranscriptFromText("anything"), "summary", nil)
	require.Empty(t, values)
	require.Zero(t, completions.callCount())
}

func TestSynthesizeKeepsOnlyDeclaredFields(t *testing.T) {
	synthesizer, _ := newSynthesizer(func(completion.Request) (string, error) {
		return `{"summary": "Printer broken", "description": "Office printer jams", "invented": "extra"}`, nil
	})

	specs := []domain.FieldSpec{
		{FieldID: "summary", DisplayName: "Summary", Required: true, Type: domain.FieldTypeText},
		{FieldID: "description", DisplayName: "Description", Required: true, Type: domain.FieldTypeTextArea},
	}
	values := synthesizer.Synthesize(context.Background(),
		domain.NewTranscriptFromText("printer jams"), "printer issue", specs)

	require.Equal(t, "Printer broken", values["summary"])
	require.Equal(t, "Office printer jams", values["description"])
	require.NotContains(t, values, "invented")
}

func TestSynthesizeFallbackFillsSummaryAndDescriptionOnly(t *testing.T) {
	synthesizer, _ := newSynthesizer(func(completion.Request) (string, error) {
		return "", errors.New("upstream down")
	})

	specs := []domain.FieldSpec{
		{FieldID: "summary", DisplayName: "Summary", Type: domain.FieldTypeText},
		{FieldID: "description", DisplayName: "Description", Type: domain.FieldTypeTextArea},
		{FieldID: "priority", DisplayName: "Priority", Required: true, Type: domain.FieldTypeSelect},
	}
	transcript := domain.NewTranscriptFromText("cannot access email")
	values := synthesizer.Synthesize(context.Background(), transcript, "email outage", specs)

	require.Equal(t, "AI Voicemail: email outage", values["summary"])
	require.Equal(t, transcript.Joined(), values["description"])
	// Required fields beyond the two safe ones stay unset; the ticketing
	// service decides whether the degraded ticket is acceptable.
	require.NotContains(t, values, "priority")
}

func TestSynthesizeFallbackMatchesByDisplayName(t *testing.T) {
	synthesizer, _ := newSynthesizer(func(completion.Request) (string, error) {
		return "not json", nil
	})

	specs := []domain.FieldSpec{
		{FieldID: "customfield_10001", DisplayName: "Request Summary", Type: domain.FieldTypeText},
	}
	values := synthesizer.Synthesize(context.Background(),
		domain.NewTranscriptFromText("hello"), "greeting", specs)
	require.Equal(t, "AI Voicemail: greeting", values["customfield_10001"])
}

func TestSynthesizeCoercesMultiValueFields(t *testing.T) {
	synthesizer, _ := newSynthesizer(func(completion.Request) (string, error) {
		return `{"labels": "hardware", "components": ["printer", "network"]}`, nil
	})

	specs := []domain.FieldSpec{
		{FieldID: "labels", DisplayName: "Labels", Type: domain.FieldTypeMultiValue},
		{FieldID: "components", DisplayName: "Components", Type: domain.FieldTypeMultiValue},
	}
	values := synthesizer.Synthesize(context.Background(),
		domain.NewTranscriptFromText("printer down"), "printer", specs)

	require.Equal(t, []any{"hardware"}, values["labels"])
	require.Equal(t, []any{"printer", "network"}, values["components"])
}
