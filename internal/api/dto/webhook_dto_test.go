package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voicedesk/internal/domain"
)

func TestVoicemailWebhookRequestFlatTranscript(t *testing.T) {
	var req VoicemailWebhookRequest
	payload := `{"companyId": "c1", "transcript": "I need help"}`
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	require.Equal(t, "c1", req.CompanyID)
	require.Equal(t, "I need help", req.Transcript)
	require.Nil(t, req.Turns())
	require.Empty(t, req.EventID())
}

func TestVoicemailWebhookRequestStructuredEvent(t *testing.T) {
	var req VoicemailWebhookRequest
	payload := `{
		"companyId": "c1",
		"event": {"type": "end-of-call-report", "data": {"transcript": [
			{"role": "agent", "message": "Leave a message."},
			{"role": "user", "message": "My laptop is broken."}
		]}},
		"metadata": {"eventId": "evt-9"}
	}`
	require.NoError(t, json.Unmarshal([]byte(payload), &req))

	turns := req.Turns()
	require.Len(t, turns, 2)
	require.Equal(t, domain.TurnRoleAgent, turns[0].Role)
	require.Equal(t, domain.TurnRoleUser, turns[1].Role)
	require.Equal(t, "My laptop is broken.", turns[1].Message)
	require.Equal(t, "evt-9", req.EventID())
}

func TestVoicemailWebhookRequestUnknownRoleDefaultsToUser(t *testing.T) {
	req := VoicemailWebhookRequest{Event: &VoicemailEvent{
		Data: VoicemailEventData{Transcript: []VoicemailTurn{{Role: "bot", Message: "hi"}}},
	}}
	turns := req.Turns()
	require.Equal(t, domain.TurnRoleUser, turns[0].Role)
}

func TestVoicemailWebhookRequestCallIDFallback(t *testing.T) {
	req := VoicemailWebhookRequest{Metadata: &VoicemailMetadata{CallID: "call-3"}}
	require.Equal(t, "call-3", req.EventID())
}

func TestVoicemailWebhookRequestEmptyStructuredTranscript(t *testing.T) {
	req := VoicemailWebhookRequest{Event: &VoicemailEvent{}}
	turns := req.Turns()
	require.NotNil(t, turns)
	require.Empty(t, turns)
}
