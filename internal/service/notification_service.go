package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/events"
)

// NotificationService reacts to pipeline events. Email delivery is a stub that
// logs the message; the outbound webhook, when configured, receives the raw
// event as JSON. Delivery failures never propagate back into the pipeline as
// anything other than a joined handler error.
type NotificationService struct {
	cfg        config.NotificationConfig
	logger     *zap.Logger
	httpClient *http.Client
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		cfg:        cfg,
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register subscribes the service to the events it cares about.
func (n *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCommitted, n.onTicketCommitted)
	dispatcher.Subscribe(events.EventPipelineFailed, n.onPipelineFailed)
	dispatcher.Subscribe(events.EventQuotaExhausted, n.onQuotaExhausted)
	dispatcher.Subscribe(events.EventWorkspaceProvisioned, n.onWorkspaceProvisioned)
}

func (n *NotificationService) onTicketCommitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommittedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	n.logger.Info("ticket committed",
		zap.String("company_id", event.CompanyID),
		zap.String("issue_key", payload.IssueKey),
		zap.String("request_type", payload.RequestType),
		zap.String("priority", string(payload.Priority)),
		zap.Bool("updated", payload.Updated))
	return n.forward(ctx, event)
}

func (n *NotificationService) onPipelineFailed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PipelineFailedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	n.logger.Warn("pipeline failure notification",
		zap.String("company_id", event.CompanyID),
		zap.String("error_kind", payload.ErrorKind),
		zap.String("message", payload.Message))
	return n.forward(ctx, event)
}

func (n *NotificationService) onQuotaExhausted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QuotaExhaustedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	n.sendEmailStub(event.CompanyID, "ticket quota exhausted",
		fmt.Sprintf("used %d of %d tickets", payload.TicketsUsed, payload.MaxTickets))
	return n.forward(ctx, event)
}

func (n *NotificationService) onWorkspaceProvisioned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.WorkspaceProvisionedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type for %s", event.Type)
	}
	n.logger.Info("workspace provisioning finished",
		zap.String("company_id", event.CompanyID),
		zap.String("setup_status", string(payload.SetupStatus)),
		zap.String("site_id", payload.SiteID))
	if payload.Error != "" {
		n.sendEmailStub(event.CompanyID, "workspace provisioning failed", payload.Error)
	}
	return n.forward(ctx, event)
}

// sendEmailStub stands in for an email provider integration.
func (n *NotificationService) sendEmailStub(companyID, subject, body string) {
	n.logger.Info("email notification (stub)",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("company_id", companyID),
		zap.String("subject", subject),
		zap.String("body", body))
}

// forward posts the event to the configured outbound webhook, if any.
func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.cfg.WebhookURL == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("notification webhook delivery failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("notification webhook rejected event",
			zap.Int("status", resp.StatusCode), zap.String("event_type", string(event.Type)))
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}
	return nil
}
