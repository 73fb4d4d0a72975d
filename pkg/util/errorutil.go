package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to API clients. The pipeline-specific codes mirror the
// terminal failure kinds of the triage flow.
const (
	CodeMalformedInput = "MALFORMED_INPUT"
	CodeEmptyCatalog   = "EMPTY_CATALOG"
	CodeQuotaExceeded  = "QUOTA_EXCEEDED"
	CodeUpstream       = "UPSTREAM_ERROR"
	CodeTicketing      = "TICKETING_ERROR"
	CodeValidation     = "VALIDATION_FAILED"
	CodeNotFound       = "NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewMalformedInput signals an event payload with no usable transcript.
func NewMalformedInput(message string) error {
	return NewDomainError(CodeMalformedInput, message, http.StatusBadRequest, nil)
}

// NewEmptyCatalog signals a tenant with zero configured request types.
func NewEmptyCatalog(serviceDeskID string) error {
	return NewDomainError(CodeEmptyCatalog, "service desk has no request types configured", http.StatusUnprocessableEntity,
		map[string]any{"service_desk_id": serviceDeskID})
}

// NewQuotaExceeded signals a tenant at its ticket ceiling.
func NewQuotaExceeded(ticketsUsed, maxTickets int) error {
	return NewDomainError(CodeQuotaExceeded, "ticket quota exceeded", http.StatusTooManyRequests,
		map[string]any{"tickets_used": ticketsUsed, "max_tickets": maxTickets})
}

// NewUpstreamError wraps a collaborator failure (completion or catalog fetch).
func NewUpstreamError(collaborator string, err error) error {
	return &DomainError{
		Code:       CodeUpstream,
		Message:    fmt.Sprintf("%s unavailable", collaborator),
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewTicketingError wraps a failed ticket create/update call.
func NewTicketingError(err error) error {
	return &DomainError{
		Code:       CodeTicketing,
		Message:    "ticketing service request failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf returns the error code, or INTERNAL_ERROR for unclassified errors.
func CodeOf(err error) string {
	if err == nil {
		return ""
	}
	return ToDomainError(err).Code
}
