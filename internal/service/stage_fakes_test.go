package service

import (
	"context"
	"errors"
	"sync"

	"github.com/spec-kit/voicedesk/internal/completion"
	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/repository"
)

// fakeCompletion routes each call through a scripted handler. Safe for
// concurrent use since pipeline stages run in parallel.
type fakeCompletion struct {
	mu      sync.Mutex
	handler func(req completion.Request) (string, error)
	calls   []completion.Request
}

func (f *fakeCompletion) Complete(_ context.Context, req completion.Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	handler := f.handler
	f.mu.Unlock()
	if handler == nil {
		return "", errors.New("no scripted completion")
	}
	return handler(req)
}

func (f *fakeCompletion) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeTicketing struct {
	catalog    []domain.RequestType
	fields     []domain.FieldSpec
	issueKey   string
	catalogErr error
	fieldsErr  error
	createErr  error
	updateErr  error

	createCalls int
	updateCalls int
	lastValues  domain.FieldValueMap
	lastUpdated string
}

func (f *fakeTicketing) ListRequestTypes(context.Context, string) ([]domain.RequestType, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeTicketing) ListFields(context.Context, string, string) ([]domain.FieldSpec, error) {
	if f.fieldsErr != nil {
		return nil, f.fieldsErr
	}
	return f.fields, nil
}

func (f *fakeTicketing) CreateRequest(_ context.Context, _, _ string, values domain.FieldValueMap) (string, error) {
	f.createCalls++
	f.lastValues = values
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.issueKey, nil
}

func (f *fakeTicketing) UpdateRequest(_ context.Context, issueKey, _, _ string) error {
	f.updateCalls++
	f.lastUpdated = issueKey
	return f.updateErr
}

// fakeCompanyRepo implements just enough of CompanyRepository for pipeline
// tests: quota increments against an in-memory subscription.
type fakeCompanyRepo struct {
	company    *domain.Company
	increments int
}

func (f *fakeCompanyRepo) Create(context.Context, *domain.Company) error { return nil }
func (f *fakeCompanyRepo) Update(context.Context, *domain.Company) error { return nil }
func (f *fakeCompanyRepo) Delete(context.Context, string) error          { return nil }

func (f *fakeCompanyRepo) GetByID(context.Context, string) (*domain.Company, error) {
	return f.company, nil
}

func (f *fakeCompanyRepo) GetByDomain(context.Context, string) (*domain.Company, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCompanyRepo) GetByEmail(context.Context, string) (*domain.Company, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeCompanyRepo) ListWithFilter(context.Context, repository.CompanyFilter) ([]domain.Company, error) {
	return nil, nil
}

func (f *fakeCompanyRepo) UpdateJiraConfig(context.Context, string, domain.JiraConfig) error {
	return nil
}

func (f *fakeCompanyRepo) IncrementTicketUsage(context.Context, string) (*domain.Subscription, error) {
	if f.company.Subscription.TicketsUsed >= f.company.Subscription.MaxTickets {
		return nil, repository.ErrQuotaExhausted
	}
	f.increments++
	f.company.Subscription.TicketsUsed++
	sub := f.company.Subscription
	return &sub, nil
}

type fakeIdempotency struct {
	keys map[string]string
	err  error
}

func idemKey(companyID, eventID string) string { return companyID + ":" + eventID }

func (f *fakeIdempotency) IssueKeyForEvent(_ context.Context, companyID, eventID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.keys[idemKey(companyID, eventID)], nil
}

func (f *fakeIdempotency) RememberIssueKey(_ context.Context, companyID, eventID, issueKey string) error {
	if f.err != nil {
		return f.err
	}
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	f.keys[idemKey(companyID, eventID)] = issueKey
	return nil
}

type fakeVoicemailRepo struct {
	records []domain.VoicemailRecord
}

func (f *fakeVoicemailRepo) Create(_ context.Context, record *domain.VoicemailRecord) error {
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeVoicemailRepo) GetByEventID(context.Context, string, string) (*domain.VoicemailRecord, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeVoicemailRepo) ListByCompany(context.Context, string, int, int) ([]domain.VoicemailRecord, error) {
	return f.records, nil
}
