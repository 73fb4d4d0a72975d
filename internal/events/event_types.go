package events

import (
	"time"

	"github.com/spec-kit/voicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventVoicemailReceived    EventType = "voicemail_received"
	EventTicketCommitted      EventType = "ticket_committed"
	EventPipelineFailed       EventType = "pipeline_failed"
	EventQuotaExhausted       EventType = "quota_exhausted"
	EventWorkspaceProvisioned EventType = "workspace_provisioned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	CompanyID string      `json:"company_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// VoicemailReceivedPayload payload.
type VoicemailReceivedPayload struct {
	EventID   string `json:"event_id,omitempty"`
	TurnCount int    `json:"turn_count"`
}

// TicketCommittedPayload payload.
type TicketCommittedPayload struct {
	IssueKey    string          `json:"issue_key"`
	RequestType string          `json:"request_type"`
	Priority    domain.Priority `json:"priority"`
	Updated     bool            `json:"updated"`
}

// PipelineFailedPayload payload.
type PipelineFailedPayload struct {
	ErrorKind string `json:"error_kind"`
	Message   string `json:"message"`
}

// QuotaExhaustedPayload payload.
type QuotaExhaustedPayload struct {
	TicketsUsed int `json:"tickets_used"`
	MaxTickets  int `json:"max_tickets"`
}

// WorkspaceProvisionedPayload payload.
type WorkspaceProvisionedPayload struct {
	SetupStatus domain.SetupStatus `json:"setup_status"`
	SiteID      string             `json:"site_id,omitempty"`
	Error       string             `json:"error,omitempty"`
}
