package tuvibe

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned before any request is issued when the
// session carries no bearer token.
var ErrMissingCredential = errors.New("tuvibe: no token")

// ErrorKind classifies request failures.
type ErrorKind string

const (
	// KindNetwork marks transport failures (offline, DNS, timeout).
	KindNetwork ErrorKind = "network"
	// KindRejected marks non-2xx responses and {success:false} envelopes.
	KindRejected ErrorKind = "rejected"
)

// RequestError reports a failed backend call.
type RequestError struct {
	Kind    ErrorKind
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("tuvibe: %s %s: network error: %v", e.Method, e.Path, e.Err)
	case e.Status > 0:
		return fmt.Sprintf("tuvibe: %s %s: remote error %d: %s", e.Method, e.Path, e.Status, e.Message)
	default:
		return fmt.Sprintf("tuvibe: %s %s: %s", e.Method, e.Path, e.Message)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage returns the text shown to an operator: the server supplied
// message when there is one, a generic line otherwise.
func (e *RequestError) UserMessage() string {
	if e.Kind == KindNetwork {
		return "Network error. Please check your connection and try again."
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Request failed with status %d", e.Status)
}

// ValidationError is raised by client-side checks before any request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "tuvibe: validation failed: " + e.Message
	}
	return fmt.Sprintf("tuvibe: validation failed: %s: %s", e.Field, e.Message)
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindNetwork
}

// IsRejected reports whether err is a server rejection.
func IsRejected(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == KindRejected
}

// IsValidation reports whether err came from client-side validation.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// Message extracts an operator-facing message from any client error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrMissingCredential) {
		return "No authentication token found. Please log in again."
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.UserMessage()
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	return err.Error()
}
