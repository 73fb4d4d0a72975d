package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voicedesk/internal/config"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/events"
	"github.com/spec-kit/voicedesk/internal/repository"
	"github.com/spec-kit/voicedesk/internal/ticketing"
)

type memRepo struct {
	mu      sync.Mutex
	company *domain.Company
}

func (m *memRepo) Create(context.Context, *domain.Company) error { return nil }

func (m *memRepo) Update(_ context.Context, company *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *company
	m.company = &stored
	return nil
}

func (m *memRepo) Delete(context.Context, string) error { return nil }

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.company == nil || m.company.ID != id {
		return nil, pgx.ErrNoRows
	}
	copied := *m.company
	return &copied, nil
}

func (m *memRepo) GetByDomain(context.Context, string) (*domain.Company, error) {
	return nil, pgx.ErrNoRows
}

func (m *memRepo) GetByEmail(context.Context, string) (*domain.Company, error) {
	return nil, pgx.ErrNoRows
}

func (m *memRepo) ListWithFilter(context.Context, repository.CompanyFilter) ([]domain.Company, error) {
	return nil, nil
}

func (m *memRepo) UpdateJiraConfig(_ context.Context, id string, cfg domain.JiraConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.company == nil || m.company.ID != id {
		return pgx.ErrNoRows
	}
	m.company.JiraConfig = cfg
	return nil
}

func (m *memRepo) IncrementTicketUsage(context.Context, string) (*domain.Subscription, error) {
	return nil, repository.ErrQuotaExhausted
}

func (m *memRepo) snapshot() domain.Company {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.company
}

func runProvisioning(t *testing.T, handler http.HandlerFunc, company *domain.Company) (*memRepo, events.WorkspaceProvisionedPayload) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	repo := &memRepo{company: company}
	client := ticketing.NewClient(config.JiraConfig{
		BaseURL:        server.URL,
		Email:          "bot@example.com",
		APIToken:       "token",
		TimeoutSeconds: 5,
	}, zap.NewNop())

	dispatcher := events.NewInMemoryDispatcher()
	done := make(chan events.WorkspaceProvisionedPayload, 1)
	dispatcher.Subscribe(events.EventWorkspaceProvisioned, func(_ context.Context, event events.Event) error {
		done <- event.Payload.(events.WorkspaceProvisionedPayload)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	worker := NewProvisionWorker(repo, client, dispatcher, zap.NewNop())
	worker.Start(ctx)
	require.True(t, worker.Enqueue(company.ID))

	select {
	case payload := <-done:
		return repo, payload
	case <-time.After(5 * time.Second):
		t.Fatal("provisioning did not finish in time")
		return nil, events.WorkspaceProvisionedPayload{}
	}
}

func TestProvisioningCompletesWorkspace(t *testing.T) {
	company := &domain.Company{
		ID:     "company-1",
		Name:   "Acme Corp",
		Status: domain.CompanyStatusPending,
		JiraConfig: domain.JiraConfig{
			WorkspaceName: "Acme Corp",
			SetupStatus:   domain.SetupStatusPending,
		},
	}

	repo, payload := runProvisioning(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/servicedeskapi/organization":
			_, _ = w.Write([]byte(`{"id":"9","name":"Acme Corp"}`))
		case "/rest/servicedeskapi/servicedesk/1/requesttype":
			_, _ = w.Write([]byte(`{"values":[{"id":"1","name":"General"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, company)

	require.Equal(t, domain.SetupStatusCompleted, payload.SetupStatus)
	require.Equal(t, "acme-corp", payload.SiteID)
	require.Empty(t, payload.Error)

	stored := repo.snapshot()
	require.Equal(t, domain.CompanyStatusActive, stored.Status)
	require.Equal(t, domain.SetupStatusCompleted, stored.JiraConfig.SetupStatus)
	require.Equal(t, "1", stored.JiraConfig.ServiceDeskID)
	require.Equal(t, "9", stored.JiraConfig.OrganizationID)
	require.True(t, stored.IsSetupComplete())
}

func TestProvisioningRecordsFailure(t *testing.T) {
	company := &domain.Company{
		ID:     "company-1",
		Name:   "Acme Corp",
		Status: domain.CompanyStatusPending,
		JiraConfig: domain.JiraConfig{
			WorkspaceName: "Acme Corp",
			SetupStatus:   domain.SetupStatusPending,
		},
	}

	repo, payload := runProvisioning(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, company)

	require.Equal(t, domain.SetupStatusFailed, payload.SetupStatus)
	require.NotEmpty(t, payload.Error)

	stored := repo.snapshot()
	require.Equal(t, domain.CompanyStatusPending, stored.Status)
	require.Equal(t, domain.SetupStatusFailed, stored.JiraConfig.SetupStatus)
	require.NotEmpty(t, stored.JiraConfig.LastError)
}

func TestProvisioningSurvivesOrganizationFailure(t *testing.T) {
	company := &domain.Company{
		ID:         "company-1",
		Name:       "Acme Corp",
		Status:     domain.CompanyStatusPending,
		JiraConfig: domain.JiraConfig{WorkspaceName: "Acme Corp"},
	}

	repo, payload := runProvisioning(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/servicedeskapi/organization":
			w.WriteHeader(http.StatusForbidden)
		case "/rest/servicedeskapi/servicedesk/1/requesttype":
			_, _ = w.Write([]byte(`{"values":[{"id":"1","name":"General"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, company)

	// Organization setup is best effort; the workspace still completes.
	require.Equal(t, domain.SetupStatusCompleted, payload.SetupStatus)

	stored := repo.snapshot()
	require.Equal(t, domain.CompanyStatusActive, stored.Status)
	require.Empty(t, stored.JiraConfig.OrganizationID)
}
