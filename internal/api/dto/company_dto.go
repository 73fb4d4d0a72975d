package dto

import (
	"time"

	"github.com/spec-kit/voicedesk/internal/domain"
)

// CreateCompanyRequest payload for tenant registration.
type CreateCompanyRequest struct {
	Name          string               `json:"name"`
	Domain        string               `json:"domain"`
	Industry      string               `json:"industry"`
	Size          string               `json:"size"`
	ContactEmail  string               `json:"contact_email"`
	PhoneNumber   string               `json:"phone_number"`
	WorkspaceName string               `json:"workspace_name"`
	AdminEmail    string               `json:"admin_email"`
	Timezone      string               `json:"timezone"`
	SiteBaseURL   string               `json:"site_base_url"`
	RequestTypes  []domain.RequestType `json:"request_types"`
}

// UpdateCompanyRequest payload for partial tenant updates.
type UpdateCompanyRequest struct {
	Name         *string               `json:"name"`
	Industry     *string               `json:"industry"`
	Size         *string               `json:"size"`
	PhoneNumber  *string               `json:"phone_number"`
	Status       *domain.CompanyStatus `json:"status"`
	MaxTickets   *int                  `json:"max_tickets"`
	RequestTypes []domain.RequestType  `json:"request_types"`
}

// CompanyResponse is the tenant representation returned by the API.
type CompanyResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Domain        string               `json:"domain"`
	Industry      string               `json:"industry,omitempty"`
	Size          string               `json:"size,omitempty"`
	ContactEmail  string               `json:"contact_email"`
	PhoneNumber   string               `json:"phone_number,omitempty"`
	Status        domain.CompanyStatus `json:"status"`
	SetupStatus   domain.SetupStatus   `json:"setup_status"`
	SiteID        string               `json:"site_id,omitempty"`
	ServiceDeskID string               `json:"service_desk_id,omitempty"`
	Plan          string               `json:"plan"`
	TicketsUsed   int                  `json:"tickets_used"`
	MaxTickets    int                  `json:"max_tickets"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewCompanyResponse maps the aggregate to its API shape.
func NewCompanyResponse(company *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:            company.ID,
		Name:          company.Name,
		Domain:        company.Domain,
		Industry:      company.Industry,
		Size:          company.Size,
		ContactEmail:  company.ContactEmail,
		PhoneNumber:   company.PhoneNumber,
		Status:        company.Status,
		SetupStatus:   company.JiraConfig.SetupStatus,
		SiteID:        company.JiraConfig.SiteID,
		ServiceDeskID: company.JiraConfig.ServiceDeskID,
		Plan:          company.Subscription.Plan,
		TicketsUsed:   company.Subscription.TicketsUsed,
		MaxTickets:    company.Subscription.MaxTickets,
		CreatedAt:     company.CreatedAt,
		UpdatedAt:     company.UpdatedAt,
	}
}

// VoicemailRecordResponse is the processed-voicemail trace entry.
type VoicemailRecordResponse struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id,omitempty"`
	IssueKey  string          `json:"issue_key"`
	Summary   string          `json:"summary"`
	Priority  domain.Priority `json:"priority"`
	CreatedAt time.Time       `json:"created_at"`
}
