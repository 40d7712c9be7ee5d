package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned for bad input detected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// TransportError covers non-2xx responses, network failures and undecodable bodies.
type TransportError struct {
	Op         string
	StatusCode int
	Status     string
	// Message is the error text reported by the backend, if any.
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: bad status: %s: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: bad status: %s", e.Op, e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// NotFoundError is returned when a candidate is unknown to the backend or the store.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func statusError(op string, resp *http.Response, body []byte) error {
	return &TransportError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    errorMessage(body),
	}
}
