package service

import (
	"context"
	"errors"

	"github.com/spec-kit/voicedesk/internal/domain"
	"github.com/spec-kit/voicedesk/internal/repository"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

// QuotaGuard enforces the per-tenant ticket ceiling. The check is a pure
// predicate; the increment is an atomic conditional update in the store, so
// concurrent commits for one tenant can never both pass the ceiling.
type QuotaGuard struct {
	companies repository.CompanyRepository
}

// NewQuotaGuard builds the guard.
func NewQuotaGuard(companies repository.CompanyRepository) *QuotaGuard {
	return &QuotaGuard{companies: companies}
}

// CanCreate reports whether the tenant is below its ticket ceiling. No side
// effects.
func (q *QuotaGuard) CanCreate(company *domain.Company) bool {
	return company.Subscription.CanCreateTicket()
}

// Increment consumes one ticket from the tenant's quota. Call it exactly once
// per run, only after the ticketing service confirmed a create, and never on
// update-only paths.
func (q *QuotaGuard) Increment(ctx context.Context, company *domain.Company) (*domain.Subscription, error) {
	sub, err := q.companies.IncrementTicketUsage(ctx, company.ID)
	if errors.Is(err, repository.ErrQuotaExhausted) {
		return nil, apperrors.NewQuotaExceeded(company.Subscription.TicketsUsed, company.Subscription.MaxTickets)
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}
