package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/repository"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// Provisioner accepts workspace-provisioning jobs for background execution.
type Provisioner interface {
	Enqueue(companyID string) bool
}

// CompanyService manages tenant records and kicks off workspace provisioning.
type CompanyService struct {
	companies   repository.CompanyRepository
	voicemails  repository.VoicemailRepository
	provisioner Provisioner
	quotaCfg    config.QuotaConfig
	logger      *zap.Logger
}

// CompanyDependencies bundles collaborators for the company service.
type CompanyDependencies struct {
	CompanyRepo   repository.CompanyRepository
	VoicemailRepo repository.VoicemailRepository
	Provisioner   Provisioner
	QuotaConfig   config.QuotaConfig
	Logger        *zap.Logger
}

// NewCompanyService constructs the service.
func NewCompanyService(deps CompanyDependencies) *CompanyService {
	return &CompanyService{
		companies:   deps.CompanyRepo,
		voicemails:  deps.VoicemailRepo,
		provisioner: deps.Provisioner,
		quotaCfg:    deps.QuotaConfig,
		logger:      deps.Logger,
	}
}

// CompanyCreateInput describes a new tenant registration.
type CompanyCreateInput struct {
	Name          string
	Domain        string
	Industry      string
	Size          string
	ContactEmail  string
	PhoneNumber   string
	WorkspaceName string
	AdminEmail    string
	Timezone      string
	SiteBaseURL   string
	RequestTypes  []domain.RequestType
}

// CreateCompany registers a tenant and enqueues workspace provisioning.
func (s *CompanyService) CreateCompany(ctx context.Context, input CompanyCreateInput) (*domain.Company, error) {
	if existing, err := s.findExisting(ctx, input.Domain, input.ContactEmail); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperrors.NewConflict("company already registered",
			map[string]any{"domain": existing.Domain})
	}

	workspaceName := input.WorkspaceName
	if workspaceName == "" {
		workspaceName = input.Name
	}
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	company := &domain.Company{
		Name:         strings.TrimSpace(input.Name),
		Domain:       strings.ToLower(strings.TrimSpace(input.Domain)),
		Industry:     input.Industry,
		Size:         input.Size,
		ContactEmail: strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		PhoneNumber:  input.PhoneNumber,
		Status:       domain.CompanyStatusPending,
		JiraConfig: domain.JiraConfig{
			WorkspaceName: workspaceName,
			AdminEmail:    input.AdminEmail,
			Timezone:      timezone,
			Language:      "en",
			SiteBaseURL:   input.SiteBaseURL,
			SetupStatus:   domain.SetupStatusPending,
		},
		ServiceDeskConfig: domain.ServiceDeskConfig{
			RequestTypes: input.RequestTypes,
		},
		Subscription: domain.Subscription{
			Plan:       "trial",
			StartDate:  time.Now(),
			MaxTickets: s.quotaCfg.TrialMaxTickets,
		},
	}

	if err := s.companies.Create(ctx, company); err != nil {
		return nil, err
	}

	if s.provisioner != nil {
		if !s.provisioner.Enqueue(company.ID) {
			s.logger.Warn("provisioning queue full, setup stays pending",
				zap.String("company_id", company.ID))
		}
	}
	return company, nil
}

// GetCompany fetches a tenant by id.
func (s *CompanyService) GetCompany(ctx context.Context, id string) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("company", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

// ListCompanies returns tenants matching the filter.
func (s *CompanyService) ListCompanies(ctx context.Context, filter repository.CompanyFilter) ([]domain.Company, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.companies.ListWithFilter(ctx, filter)
}

// CompanyUpdateInput describes mutable tenant attributes.
type CompanyUpdateInput struct {
	Name         *string
	Industry     *string
	Size         *string
	PhoneNumber  *string
	Status       *domain.CompanyStatus
	MaxTickets   *int
	RequestTypes []domain.RequestType
}

// UpdateCompany applies partial updates to a tenant.
func (s *CompanyService) UpdateCompany(ctx context.Context, id string, input CompanyUpdateInput) (*domain.Company, error) {
	company, err := s.GetCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		company.Name = *input.Name
	}
	if input.Industry != nil {
		company.Industry = *input.Industry
	}
	if input.Size != nil {
		company.Size = *input.Size
	}
	if input.PhoneNumber != nil {
		company.PhoneNumber = *input.PhoneNumber
	}
	if input.Status != nil {
		company.Status = *input.Status
	}
	if input.MaxTickets != nil {
		company.Subscription.MaxTickets = *input.MaxTickets
	}
	if input.RequestTypes != nil {
		company.ServiceDeskConfig.RequestTypes = input.RequestTypes
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// DeleteCompany removes a tenant.
func (s *CompanyService) DeleteCompany(ctx context.Context, id string) error {
	err := s.companies.Delete(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("company", map[string]any{"id": id})
	}
	return err
}

// ListVoicemails returns the processed-voicemail trace for a tenant.
func (s *CompanyService) ListVoicemails(ctx context.Context, companyID string, limit, offset int) ([]domain.VoicemailRecord, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	return s.voicemails.ListByCompany(ctx, companyID, limit, offset)
}

func (s *CompanyService) findExisting(ctx context.Context, domainName, email string) (*domain.Company, error) {
	byDomain, err := s.companies.GetByDomain(ctx, strings.ToLower(strings.TrimSpace(domainName)))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if byDomain != nil {
		return byDomain, nil
	}
	byEmail, err := s.companies.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return byEmail, nil
}
