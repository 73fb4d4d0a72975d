package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/events"
	"github.com/spec-kit/voicedesk/internal/repository"
	"github.com/spec-kit/voicedesk/internal/ticketing"
)

// ProvisionWorker provisions service-desk workspaces for newly registered
// tenants in the background. It implements the provisioning queue the company
// service enqueues into.
type ProvisionWorker struct {
	companies  repository.CompanyRepository
	ticketing  *ticketing.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	jobs       chan string
	wg         sync.WaitGroup
}

// NewProvisionWorker creates the worker with a bounded job queue.
func NewProvisionWorker(
	companies repository.CompanyRepository,
	ticketingClient *ticketing.Client,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *ProvisionWorker {
	return &ProvisionWorker{
		companies:  companies,
		ticketing:  ticketingClient,
		dispatcher: dispatcher,
		logger:     logger,
		jobs:       make(chan string, 64),
	}
}

// Enqueue queues a tenant for provisioning. Returns false when the queue is
// full; the tenant then stays in PENDING until re-enqueued.
func (w *ProvisionWorker) Enqueue(companyID string) bool {
	select {
	case w.jobs <- companyID:
		return true
	default:
		return false
	}
}

// Start launches the worker loop. It drains until ctx is cancelled.
func (w *ProvisionWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case companyID := <-w.jobs:
				w.provision(ctx, companyID)
			}
		}
	}()
}

// Wait blocks until the worker loop has exited.
func (w *ProvisionWorker) Wait() {
	w.wg.Wait()
}

func (w *ProvisionWorker) provision(ctx context.Context, companyID string) {
	log := w.logger.With(zap.String("company_id", companyID))

	company, err := w.companies.GetByID(ctx, companyID)
	if err != nil {
		log.Error("provisioning skipped, tenant not loadable", zap.Error(err))
		return
	}

	cfg := company.JiraConfig
	cfg.SetupStatus = domain.SetupStatusInProgress
	cfg.LastError = ""
	if err := w.companies.UpdateJiraConfig(ctx, companyID, cfg); err != nil {
		log.Error("failed to mark provisioning in progress", zap.Error(err))
		return
	}
	log.Info("workspace provisioning started", zap.String("workspace", cfg.WorkspaceName))

	if err := w.setupWorkspace(ctx, company, &cfg); err != nil {
		cfg.SetupStatus = domain.SetupStatusFailed
		cfg.LastError = err.Error()
		if updateErr := w.companies.UpdateJiraConfig(ctx, companyID, cfg); updateErr != nil {
			log.Error("failed to record provisioning failure", zap.Error(updateErr))
		}
		log.Error("workspace provisioning failed", zap.Error(err))
		w.publishResult(ctx, companyID, cfg, err)
		return
	}

	cfg.SetupStatus = domain.SetupStatusCompleted
	cfg.LastError = ""
	if err := w.companies.UpdateJiraConfig(ctx, companyID, cfg); err != nil {
		log.Error("failed to record provisioning completion", zap.Error(err))
		return
	}

	company.JiraConfig = cfg
	company.Status = domain.CompanyStatusActive
	if err := w.companies.Update(ctx, company); err != nil {
		log.Error("failed to activate tenant", zap.Error(err))
	}

	log.Info("workspace provisioning completed",
		zap.String("site_id", cfg.SiteID),
		zap.String("service_desk_id", cfg.ServiceDeskID))
	w.publishResult(ctx, companyID, cfg, nil)
}

// setupWorkspace fills in the workspace coordinates. The organization call is
// best effort: the workspace is usable without one, so its failure is recorded
// on the config but does not fail the run.
func (w *ProvisionWorker) setupWorkspace(ctx context.Context, company *domain.Company, cfg *domain.JiraConfig) error {
	if cfg.SiteID == "" {
		cfg.SiteID = deriveSiteID(cfg.WorkspaceName)
	}
	if cfg.ServiceDeskID == "" {
		cfg.ServiceDeskID = "1"
	}

	client := w.ticketing.ForSite(cfg.SiteBaseURL)
	if cfg.OrganizationID == "" {
		orgID, err := client.CreateOrganization(ctx, company.Name)
		if err != nil {
			cfg.LastError = fmt.Sprintf("organization setup: %v", err)
			w.logger.Warn("organization setup failed, continuing",
				zap.String("company_id", company.ID), zap.Error(err))
		} else {
			cfg.OrganizationID = orgID
		}
	}

	if _, err := client.ListRequestTypes(ctx, cfg.ServiceDeskID); err != nil {
		return fmt.Errorf("service desk %s unreachable: %w", cfg.ServiceDeskID, err)
	}
	return nil
}

func deriveSiteID(workspaceName string) string {
	slug := strings.ToLower(strings.TrimSpace(workspaceName))
	slug = strings.ReplaceAll(slug, " ", "-")
	if slug == "" {
		return uuid.NewString()
	}
	return slug
}

func (w *ProvisionWorker) publishResult(ctx context.Context, companyID string, cfg domain.JiraConfig, provisionErr error) {
	if w.dispatcher == nil {
		return
	}
	payload := events.WorkspaceProvisionedPayload{
		SetupStatus: cfg.SetupStatus,
		SiteID:      cfg.SiteID,
	}
	if provisionErr != nil {
		payload.Error = provisionErr.Error()
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventWorkspaceProvisioned,
		CompanyID: companyID,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := w.dispatcher.Publish(ctx, event); err != nil {
		w.logger.Warn("workspace event handler failed", zap.Error(err))
	}
}
