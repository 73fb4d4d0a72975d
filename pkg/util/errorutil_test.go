package util

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThrough(t *testing.T) {
	err := NewQuotaExceeded(100, 100)
	domainErr := ToDomainError(err)
	require.Equal(t, CodeQuotaExceeded, domainErr.Code)
	require.Equal(t, http.StatusTooManyRequests, domainErr.HTTPStatus)
	require.Equal(t, 100, domainErr.Details["tickets_used"])
}

func TestToDomainErrorWrapsUnknown(t *testing.T) {
	domainErr := ToDomainError(errors.New("boom"))
	require.Equal(t, CodeInternal, domainErr.Code)
	require.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestToDomainErrorUnwrapsWrapped(t *testing.T) {
	inner := NewEmptyCatalog("10")
	wrapped := errors.Join(inner, errors.New("context"))
	require.Equal(t, CodeEmptyCatalog, ToDomainError(wrapped).Code)
}

func TestUpstreamErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUpstreamError("completion service", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeUpstream, CodeOf(err))
	require.Contains(t, err.Error(), "completion service unavailable")
}

func TestCodeOf(t *testing.T) {
	require.Empty(t, CodeOf(nil))
	require.Equal(t, CodeMalformedInput, CodeOf(NewMalformedInput("bad payload")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("anything")))
}
