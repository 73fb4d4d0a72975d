package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voicedesk/internal/domain"
	apperrors "github.com/spec-kit/voicedesk/pkg/util"
)

func TestQuotaGuardCanCreate(t *testing.T) {
	guard := NewQuotaGuard(nil)

	company := &domain.Company{Subscription: domain.Subscription{MaxTickets: 100, TicketsUsed: 99}}
	require.True(t, guard.CanCreate(company))

	company.Subscription.TicketsUsed = 100
	require.False(t, guard.CanCreate(company))
}

func TestQuotaGuardIncrement(t *testing.T) {
	company := &domain.Company{
		ID:           "company-1",
		Subscription: domain.Subscription{MaxTickets: 2, TicketsUsed: 1},
	}
	repo := &fakeCompanyRepo{company: company}
	guard := NewQuotaGuard(repo)

	sub, err := guard.Increment(context.Background(), company)
	require.NoError(t, err)
	require.Equal(t, 2, sub.TicketsUsed)

	_, err = guard.Increment(context.Background(), company)
	require.Error(t, err)
	require.Equal(t, apperrors.CodeQuotaExceeded, apperrors.CodeOf(err))
	require.Equal(t, 1, repo.increments)
}
