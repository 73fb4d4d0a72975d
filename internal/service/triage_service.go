package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/events"
	"github.com/spec-kit/voicedesk/internal/observability"
	"github.com/spec-kit/voicedesk/internal/repository"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// PipelineResult is the structured outcome of one triage run.
type PipelineResult struct {
	Success     bool
	IssueKey    string
	Summary     string
	Priority    domain.Priority
	RequestType domain.RequestType
	FieldValues domain.FieldValueMap
	Updated     bool
	ErrorKind   string
	Message     string
}

// TriageService coordinates the transcript-to-ticket pipeline: normalize,
// summarize, classify, synthesize, quota-check, commit. Summarization, field
// synthesis and priority classification degrade to safe defaults instead of
// failing; malformed input, an empty catalog, catalog fetch failures, quota
// exhaustion and commit failures are terminal.
type TriageService struct {
	ticketing   TicketingClient
	summarizer  *Summarizer
	classifier  *RequestTypeClassifier
	synthesizer *FieldValueSynthesizer
	prioritizer *PriorityClassifier
	committer   *TicketCommitter
	quota       *QuotaGuard
	voicemails  repository.VoicemailRepository
	idempotency repository.IdempotencyStore
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Completions   CompletionClient
	Ticketing     TicketingClient
	CompanyRepo   repository.CompanyRepository
	VoicemailRepo repository.VoicemailRepository
	Idempotency   repository.IdempotencyStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewTriageService constructs the service and its stages.
func NewTriageService(deps TriageDependencies) *TriageService {
	return &TriageService{
		ticketing:   deps.Ticketing,
		summarizer:  NewSummarizer(deps.Completions, deps.Logger, deps.Metrics),
		classifier:  NewRequestTypeClassifier(deps.Completions, deps.Logger, deps.Metrics),
		synthesizer: NewFieldValueSynthesizer(deps.Completions, deps.Logger, deps.Metrics),
		prioritizer: NewPriorityClassifier(deps.Completions, deps.Logger, deps.Metrics),
		committer:   NewTicketCommitter(deps.Ticketing, deps.Logger),
		quota:       NewQuotaGuard(deps.CompanyRepo),
		voicemails:  deps.VoicemailRepo,
		idempotency: deps.Idempotency,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		metrics:     deps.Metrics,
	}
}

// ProcessTranscript runs the full pipeline for one voicemail event.
func (s *TriageService) ProcessTranscript(ctx context.Context, event RawEvent, company *domain.Company) PipelineResult {
	transcript, err := NormalizeTranscript(event)
	if err != nil {
		s.metrics.RecordStage(observability.StageNormalize, apperrors.CodeOf(err))
		return s.fail(ctx, company, err)
	}
	s.metrics.RecordStage(observability.StageNormalize, "ok")
	s.publish(ctx, company.ID, events.EventVoicemailReceived, events.VoicemailReceivedPayload{
		EventID:   event.EventID,
		TurnCount: len(transcript.Turns()),
	})

	summary := s.summarizer.Summarize(ctx, transcript)

	deskID := company.JiraConfig.ServiceDeskID
	catalog, err := s.ticketing.ListRequestTypes(ctx, deskID)
	if err != nil {
		// No safe default catalog exists, so a fetch failure is terminal
		// even though completion failures in the same stage are not.
		return s.fail(ctx, company, err)
	}

	chosen, err := s.classifier.Classify(ctx, summary, catalog)
	if err != nil {
		return s.fail(ctx, company, err)
	}

	specs, err := s.ticketing.ListFields(ctx, deskID, chosen.ID)
	if err != nil {
		return s.fail(ctx, company, err)
	}

	// Field synthesis and priority classification are independent of each
	// other; run them concurrently.
	var (
		wg          sync.WaitGroup
		fieldValues domain.FieldValueMap
		priority    domain.Priority
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		fieldValues = s.synthesizer.Synthesize(ctx, transcript, summary, specs)
	}()
	go func() {
		defer wg.Done()
		priority = s.prioritizer.Classify(ctx, transcript, summary)
	}()
	wg.Wait()

	existingKey := s.lookupExistingIssue(ctx, company.ID, event.EventID)

	if existingKey == "" {
		if !s.quota.CanCreate(company) {
			s.metrics.RecordStage(observability.StageQuotaCheck, apperrors.CodeQuotaExceeded)
			s.publish(ctx, company.ID, events.EventQuotaExhausted, events.QuotaExhaustedPayload{
				TicketsUsed: company.Subscription.TicketsUsed,
				MaxTickets:  company.Subscription.MaxTickets,
			})
			return s.fail(ctx, company,
				apperrors.NewQuotaExceeded(company.Subscription.TicketsUsed, company.Subscription.MaxTickets))
		}
		s.metrics.RecordStage(observability.StageQuotaCheck, "ok")
	}

	ticketSummary := stringValue(fieldValues, "summary", "AI Voicemail: "+summary)
	ticketDescription := stringValue(fieldValues, "description", transcript.Joined())

	issueKey, created, err := s.committer.Commit(ctx, CommitInput{
		ServiceDeskID:    deskID,
		RequestType:      chosen,
		FieldValues:      fieldValues,
		Summary:          ticketSummary,
		Description:      ticketDescription,
		ExistingIssueKey: existingKey,
	})
	if err != nil {
		s.metrics.RecordStage(observability.StageCommit, apperrors.CodeOf(err))
		return s.fail(ctx, company, err)
	}
	s.metrics.RecordStage(observability.StageCommit, "ok")

	if created {
		// Exactly one increment per successful create. The ticket already
		// exists, so a failed increment is logged rather than failing the run.
		if _, err := s.quota.Increment(ctx, company); err != nil {
			s.logger.Warn("quota increment failed after successful create",
				zap.String("company_id", company.ID),
				zap.String("issue_key", issueKey),
				zap.Error(err))
		}
		s.recordVoicemail(ctx, company.ID, event, issueKey, ticketSummary, priority, transcript)
	}

	s.publish(ctx, company.ID, events.EventTicketCommitted, events.TicketCommittedPayload{
		IssueKey:    issueKey,
		RequestType: chosen.Name,
		Priority:    priority,
		Updated:     !created,
	})

	return PipelineResult{
		Success:     true,
		IssueKey:    issueKey,
		Summary:     ticketSummary,
		Priority:    priority,
		RequestType: chosen,
		FieldValues: fieldValues,
		Updated:     !created,
	}
}

// lookupExistingIssue checks whether this event already produced a ticket. A
// store failure disables dedup for the run rather than aborting it.
func (s *TriageService) lookupExistingIssue(ctx context.Context, companyID, eventID string) string {
	if s.idempotency == nil || eventID == "" {
		return ""
	}
	key, err := s.idempotency.IssueKeyForEvent(ctx, companyID, eventID)
	if err != nil {
		s.logger.Warn("idempotency lookup failed, proceeding without dedup",
			zap.String("company_id", companyID), zap.Error(err))
		return ""
	}
	return key
}

func (s *TriageService) recordVoicemail(ctx context.Context, companyID string, event RawEvent, issueKey, summary string, priority domain.Priority, transcript domain.Transcript) {
	if s.idempotency != nil {
		if err := s.idempotency.RememberIssueKey(ctx, companyID, event.EventID, issueKey); err != nil {
			s.logger.Warn("failed to remember issue key", zap.Error(err))
		}
	}
	if s.voicemails == nil {
		return
	}
	record := &domain.VoicemailRecord{
		CompanyID:  companyID,
		EventID:    event.EventID,
		IssueKey:   issueKey,
		Summary:    summary,
		Priority:   priority,
		Transcript: transcript.Joined(),
	}
	if err := s.voicemails.Create(ctx, record); err != nil {
		s.logger.Warn("failed to record voicemail", zap.String("issue_key", issueKey), zap.Error(err))
	}
}

func (s *TriageService) fail(ctx context.Context, company *domain.Company, err error) PipelineResult {
	domainErr := apperrors.ToDomainError(err)
	s.logger.Error("pipeline failed",
		zap.String("company_id", company.ID),
		zap.String("error_kind", domainErr.Code),
		zap.Error(err))
	s.publish(ctx, company.ID, events.EventPipelineFailed, events.PipelineFailedPayload{
		ErrorKind: domainErr.Code,
		Message:   domainErr.Message,
	})
	return PipelineResult{
		Success:   false,
		ErrorKind: domainErr.Code,
		Message:   domainErr.Message,
	}
}

func (s *TriageService) publish(ctx context.Context, companyID string, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		CompanyID: companyID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func stringValue(values domain.FieldValueMap, key, fallback string) string {
	if val, ok := values[key].(string); ok && val != "" {
		return val
	}
	return fallback
}
