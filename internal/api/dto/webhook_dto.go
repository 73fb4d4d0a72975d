package dto

import (
	"github.com/spec-kit/voicedesk/internal/domain"
)

// VoicemailWebhookRequest is the inbound voicemail payload. Providers either
// send a flat transcript string or a structured event with per-turn messages.
type VoicemailWebhookRequest struct {
	CompanyID  string             `json:"companyId"`
	Transcript string             `json:"transcript,omitempty"`
	Event      *VoicemailEvent    `json:"event,omitempty"`
	Metadata   *VoicemailMetadata `json:"metadata,omitempty"`
}

// VoicemailEvent is the structured variant of the payload.
type VoicemailEvent struct {
	Type string             `json:"type"`
	Data VoicemailEventData `json:"data"`
}

// VoicemailEventData carries the turn list.
type VoicemailEventData struct {
	Transcript []VoicemailTurn `json:"transcript"`
}

// VoicemailTurn is one utterance of the call.
type VoicemailTurn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// VoicemailMetadata carries provider-side identifiers.
type VoicemailMetadata struct {
	EventID string `json:"eventId,omitempty"`
	CallID  string `json:"callId,omitempty"`
}

// EventID returns the provider event id, when present.
func (r *VoicemailWebhookRequest) EventID() string {
	if r.Metadata == nil {
		return ""
	}
	if r.Metadata.EventID != "" {
		return r.Metadata.EventID
	}
	return r.Metadata.CallID
}

// Turns converts the structured payload to domain turns. Returns nil when the
// payload has no structured event, so flat-transcript handling can kick in.
func (r *VoicemailWebhookRequest) Turns() []domain.Turn {
	if r.Event == nil {
		return nil
	}
	turns := make([]domain.Turn, 0, len(r.Event.Data.Transcript))
	for _, t := range r.Event.Data.Transcript {
		role := domain.TurnRoleUser
		if t.Role == string(domain.TurnRoleAgent) {
			role = domain.TurnRoleAgent
		}
		turns = append(turns, domain.Turn{Role: role, Message: t.Message})
	}
	return turns
}

// WebhookTicketResponse reports the pipeline outcome to the webhook caller.
type WebhookTicketResponse struct {
	Success     bool                 `json:"success"`
	IssueKey    string               `json:"issue_key,omitempty"`
	Summary     string               `json:"summary,omitempty"`
	Priority    domain.Priority      `json:"priority,omitempty"`
	RequestType string               `json:"request_type,omitempty"`
	FieldValues domain.FieldValueMap `json:"field_values,omitempty"`
	Updated     bool                 `json:"updated,omitempty"`
	Usage       *QuotaUsage          `json:"usage,omitempty"`
}

// QuotaUsage reports the tenant's ticket consumption.
type QuotaUsage struct {
	TicketsUsed int `json:"tickets_used"`
	MaxTickets  int `json:"max_tickets"`
}
