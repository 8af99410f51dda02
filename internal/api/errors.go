package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a failed upstream call. Detail carries the upstream's
// human-readable message and is surfaced to the operator verbatim.
type Error struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Op, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("%s: upstream returned status %d", e.Op, e.StatusCode)
}

// IsAuthError reports whether the failure means the credential is
// missing or expired and the operator must sign in again.
func IsAuthError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
	}
	return false
}

// IsConflict reports a business-rule rejection (duplicate
// consolidation, already-closed event and the like).
func IsConflict(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusConflict
	}
	return false
}

// IsNotFound reports a missing upstream record.
func IsNotFound(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// Detail extracts the upstream message from an error, falling back to
// a generic line for transport failures so the operator always sees
// something actionable.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "request failed, please try again"
}
