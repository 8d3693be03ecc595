package generation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRetryable marks a failure that exhausted the retry budget.
	ErrRetryable = errors.New("generation: retryable failure")
	// ErrTerminal marks a failure that retrying cannot fix.
	ErrTerminal = errors.New("generation: terminal failure")
	// ErrNoArtifact is returned when the backend answered without an image.
	ErrNoArtifact = errors.New("generation: no images returned")
)

// BackendError is a service error reported by a backend.
type BackendError struct {
	Code       string
	Message    string
	StatusCode int
}

func (e *BackendError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// DefaultRetryableCodes are the service error codes worth retrying.
var DefaultRetryableCodes = []string{
	"ThrottlingException",
	"ServiceQuotaExceededException",
	"TooManyRequestsException",
	"InternalServerError",
	"InternalServerException",
	"ServiceUnavailableException",
	"RequestTimeoutException",
	"ModelTimeoutException",
	"ModelNotReadyException",
}

// classify reports whether err may succeed on another attempt. Coded errors
// are looked up in codes; uncoded ones are retried only for timeouts and
// connection problems.
func classify(err error, codes map[string]struct{}) bool {
	if err == nil || errors.Is(err, ErrNoArtifact) {
		return false
	}
	var be *BackendError
	if errors.As(err, &be) && be.Code != "" {
		_, ok := codes[be.Code]
		return ok
	}
	text := strings.ToLower(err.Error())
	return strings.Contains(text, "timeout") || strings.Contains(text, "connection")
}
