package fleet

import (
	"errors"
	"fmt"
)

// Sentinel errors for upstream response classes. Login maps HTTP statuses
// onto these; data fetches reuse ErrTimeout and ErrSessionExpired.
var (
	ErrInvalidCredentials  = errors.New("incorrect credentials")
	ErrUpstreamUnavailable = errors.New("server error, try later")
	ErrTimeout             = errors.New("request timed out")
	ErrSessionExpired      = errors.New("session expired")
)

// ValidationError reports missing or malformed local input. It is raised
// before any network I/O happens.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Msg)
}

// InvalidRequestError carries the upstream 400 message when one is present.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	if e.Message == "" {
		return "invalid request"
	}
	return e.Message
}

// UnexpectedStatusError reports a non-2xx status outside the mapped classes.
type UnexpectedStatusError struct {
	Code int
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}
