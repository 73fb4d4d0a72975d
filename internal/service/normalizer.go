package service

import (
	"strings"

	"github.com/spec-kit/voicedesk/internal/domain"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// RawEvent is the transcript-bearing part of an inbound webhook payload.
// Either Turns or Transcript carries the content; Turns wins when both are set.
type RawEvent struct {
	EventID    string
	Transcript string
	Turns      []domain.Turn
}

// NormalizeTranscript turns a raw event into a canonical Transcript. A turn
// list that is present but empty is malformed even when a raw string exists,
// because it signals a broken upstream extraction.
func NormalizeTranscript(event RawEvent) (domain.Transcript, error) {
	if event.Turns != nil {
		if len(event.Turns) == 0 {
			return domain.Transcript{}, apperrors.NewMalformedInput("transcript turn list is empty")
		}
		return domain.NewTranscript(event.Turns), nil
	}
	if strings.TrimSpace(event.Transcript) != "" {
		return domain.NewTranscriptFromText(event.Transcript), nil
	}
	return domain.Transcript{}, apperrors.NewMalformedInput("event carries no transcript")
}
