package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/domain"
)

// TicketingClient is the service-desk collaborator consumed by the pipeline.
type TicketingClient interface {
	ListRequestTypes(ctx context.Context, serviceDeskID string) ([]domain.RequestType, error)
	ListFields(ctx context.Context, serviceDeskID, requestTypeID string) ([]domain.FieldSpec, error)
	CreateRequest(ctx context.Context, serviceDeskID, requestTypeID string, fieldValues domain.FieldValueMap) (string, error)
	UpdateRequest(ctx context.Context, issueKey, summary, description string) error
}

// CommitInput describes one commit attempt.
type CommitInput struct {
	ServiceDeskID    string
	RequestType      domain.RequestType
	FieldValues      domain.FieldValueMap
	Summary          string
	Description      string
	ExistingIssueKey string
}

// TicketCommitter issues the final create or update call. A failure here is
// terminal for the run; it performs no fallback of its own.
type TicketCommitter struct {
	ticketing TicketingClient
	logger    *zap.Logger
}

// NewTicketCommitter builds the stage.
func NewTicketCommitter(ticketing TicketingClient, logger *zap.Logger) *TicketCommitter {
	return &TicketCommitter{ticketing: ticketing, logger: logger}
}

// Commit creates a new request, or updates summary/description of the known
// issue when one is supplied. It reports whether a new issue was created so
// the caller knows whether to consume quota.
func (c *TicketCommitter) Commit(ctx context.Context, input CommitInput) (issueKey string, created bool, err error) {
	if input.ExistingIssueKey != "" {
		if err := c.ticketing.UpdateRequest(ctx, input.ExistingIssueKey, input.Summary, input.Description); err != nil {
			return "", false, err
		}
		c.logger.Info("ticket updated", zap.String("issue_key", input.ExistingIssueKey))
		return input.ExistingIssueKey, false, nil
	}

	issueKey, err = c.ticketing.CreateRequest(ctx, input.ServiceDeskID, input.RequestType.ID, input.FieldValues)
	if err != nil {
		return "", false, err
	}
	c.logger.Info("ticket created",
		zap.String("issue_key", issueKey),
		zap.String("request_type", input.RequestType.Name))
	return issueKey, true, nil
}
