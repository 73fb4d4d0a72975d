package domain

import "time"

// CompanyStatus represents lifecycle states for a tenant.
type CompanyStatus string

const (
	CompanyStatusPending   CompanyStatus = "PENDING"
	CompanyStatusActive    CompanyStatus = "ACTIVE"
	CompanyStatusSuspended CompanyStatus = "SUSPENDED"
)

// SetupStatus tracks workspace provisioning progress.
type SetupStatus string

const (
	SetupStatusPending    SetupStatus = "PENDING"
	SetupStatusInProgress SetupStatus = "IN_PROGRESS"
	SetupStatusCompleted  SetupStatus = "COMPLETED"
	SetupStatusFailed     SetupStatus = "FAILED"
)

// JiraConfig holds the tenant's service-desk workspace coordinates.
type JiraConfig struct {
	WorkspaceName  string      `json:"workspace_name"`
	AdminEmail     string      `json:"admin_email"`
	Timezone       string      `json:"timezone"`
	Language       string      `json:"language"`
	SiteBaseURL    string      `json:"site_base_url,omitempty"`
	SiteID         string      `json:"site_id,omitempty"`
	ServiceDeskID  string      `json:"service_desk_id,omitempty"`
	OrganizationID string      `json:"organization_id,omitempty"`
	SetupStatus    SetupStatus `json:"setup_status"`
	LastError      string      `json:"last_error,omitempty"`
}

// ServiceDeskConfig is the tenant's request-type catalog as configured during
// onboarding. The live catalog is still fetched from the ticketing service per
// pipeline run; this copy drives provisioning.
type ServiceDeskConfig struct {
	RequestTypes []RequestType `json:"request_types"`
}

// Subscription carries the per-tenant ticket quota.
type Subscription struct {
	Plan        string    `json:"plan"`
	StartDate   time.Time `json:"start_date"`
	MaxTickets  int       `json:"max_tickets"`
	TicketsUsed int       `json:"tickets_used"`
}

// CanCreateTicket is the pure quota predicate: true iff the tenant is below
// its ticket ceiling.
func (s Subscription) CanCreateTicket() bool {
	return s.TicketsUsed < s.MaxTickets
}

// Company is the tenant aggregate.
type Company struct {
	ID                string
	Name              string
	Domain            string
	Industry          string
	Size              string
	ContactEmail      string
	PhoneNumber       string
	Status            CompanyStatus
	JiraConfig        JiraConfig
	ServiceDeskConfig ServiceDeskConfig
	Subscription      Subscription
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsSetupComplete reports whether the workspace is ready for ticket creation.
func (c *Company) IsSetupComplete() bool {
	return c.JiraConfig.SetupStatus == SetupStatusCompleted &&
		c.JiraConfig.SiteID != "" &&
		c.JiraConfig.ServiceDeskID != ""
}
