package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voicedesk/internal/api/dto"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/service"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// testTranscript is the canned payload served by the smoke-test endpoint.
const testTranscript = "Hi, I need help with my account. I can't log in and it's urgent!"

// WebhookHandler receives voicemail transcripts from telephony providers and
// runs them through the triage pipeline.
type WebhookHandler struct {
	secret    string
	triage    *service.TriageService
	companies *service.CompanyService
}

// NewWebhookHandler constructs handler.
func NewWebhookHandler(secret string, triage *service.TriageService, companies *service.CompanyService) *WebhookHandler {
	return &WebhookHandler{secret: secret, triage: triage, companies: companies}
}

// Authorize enforces the shared-secret bearer token on webhook routes.
func (h *WebhookHandler) Authorize(c *fiber.Ctx) error {
	if h.secret == "" {
		return apperrors.NewUnauthorized("webhook secret not configured")
	}
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") ||
		subtle.ConstantTimeCompare([]byte(parts[1]), []byte(h.secret)) != 1 {
		return apperrors.NewUnauthorized("invalid webhook credentials")
	}
	return c.Next()
}

// ReceiveVoicemail handles POST /webhooks/voicemail.
func (h *WebhookHandler) ReceiveVoicemail(c *fiber.Ctx) error {
	var req dto.VoicemailWebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid webhook payload")
	}
	if req.CompanyID == "" {
		return apperrors.NewValidationError("companyId is required", nil)
	}

	company, err := h.companies.GetCompany(c.UserContext(), req.CompanyID)
	if err != nil {
		return err
	}

	return h.process(c, company, service.RawEvent{
		EventID:    req.EventID(),
		Transcript: req.Transcript,
		Turns:      req.Turns(),
	})
}

// TestVoicemail handles POST /webhooks/test with a canned transcript. It
// exercises the full pipeline, quota included.
func (h *WebhookHandler) TestVoicemail(c *fiber.Ctx) error {
	var req struct {
		CompanyID string `json:"companyId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewMalformedInput("invalid payload")
	}
	if req.CompanyID == "" {
		return apperrors.NewValidationError("companyId is required", nil)
	}

	company, err := h.companies.GetCompany(c.UserContext(), req.CompanyID)
	if err != nil {
		return err
	}

	return h.process(c, company, service.RawEvent{Transcript: testTranscript})
}

func (h *WebhookHandler) process(c *fiber.Ctx, company *domain.Company, event service.RawEvent) error {
	if !company.IsSetupComplete() {
		return apperrors.NewValidationError("workspace setup is not complete",
			map[string]any{"setup_status": company.JiraConfig.SetupStatus})
	}
	if !company.Subscription.CanCreateTicket() {
		return apperrors.NewQuotaExceeded(company.Subscription.TicketsUsed, company.Subscription.MaxTickets)
	}

	result := h.triage.ProcessTranscript(c.UserContext(), event, company)
	if !result.Success {
		return apperrors.NewDomainError(result.ErrorKind, result.Message, statusForKind(result.ErrorKind), nil)
	}

	usage := &dto.QuotaUsage{
		TicketsUsed: company.Subscription.TicketsUsed,
		MaxTickets:  company.Subscription.MaxTickets,
	}
	if !result.Updated {
		usage.TicketsUsed++
	}

	status := http.StatusCreated
	if result.Updated {
		status = http.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"data": dto.WebhookTicketResponse{
		Success:     true,
		IssueKey:    result.IssueKey,
		Summary:     result.Summary,
		Priority:    result.Priority,
		RequestType: result.RequestType.Name,
		FieldValues: result.FieldValues,
		Updated:     result.Updated,
		Usage:       usage,
	}})
}

func statusForKind(kind string) int {
	switch kind {
	case apperrors.CodeMalformedInput:
		return http.StatusBadRequest
	case apperrors.CodeEmptyCatalog:
		return http.StatusUnprocessableEntity
	case apperrors.CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case apperrors.CodeUpstream, apperrors.CodeTicketing:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
