package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voicedesk/internal/domain"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

func TestNormalizeTranscriptFromTurns(t *testing.T) {
	transcript, err := NormalizeTranscript(RawEvent{
		Turns: []domain.Turn{
			{Role: domain.TurnRoleAgent, Message: "Thanks for calling, leave a message."},
			{Role: domain.TurnRoleUser, Message: "My printer is broken."},
		},
	})
	require.NoError(t, err)
	require.Len(t, transcript.Turns(), 2)
	require.Equal(t, "agent: Thanks for calling, leave a message.\nuser: My printer is broken.", transcript.Joined())
}

func TestNormalizeTranscriptFromFlatString(t *testing.T) {
	transcript, err := NormalizeTranscript(RawEvent{Transcript: "I need help with billing."})
	require.NoError(t, err)
	require.Empty(t, transcript.Turns())
	require.Equal(t, "I need help with billing.", transcript.Joined())
}

func TestNormalizeTranscriptEmptyTurnListIsMalformed(t *testing.T) {
	// An empty turn list signals a broken upstream extraction, so the raw
	// string does not rescue the event.
	_, err := NormalizeTranscript(RawEvent{
		Turns:      []domain.Turn{},
		Transcript: "raw text present",
	})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeMalformedInput, apperrors.CodeOf(err))
}

func TestNormalizeTranscriptNoContent(t *testing.T) {
	_, err := NormalizeTranscript(RawEvent{Transcript: "   "})
	require.Error(t, err)
	require.Equal(t, apperrors.CodeMalformedInput, apperrors.CodeOf(err))
}
