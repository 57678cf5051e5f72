package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"invite-reviewer/internal/models"
)

// ErrRateLimited matches any StatusError carrying HTTP 429.
var ErrRateLimited = errors.New("rate limited by provider")

// Provider defines the behaviour required to serve a completion request.
type Provider interface {
	Name() string
	Messages(ctx context.Context, req models.MessageRequest) (*models.MessageResponse, error)
}

// TransportError reports that the provider could not be reached at all.
type TransportError struct {
	Provider string
	Cause    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
	Type       string
	Message    string
	// ReadErr is set when the error body could not be read in full.
	ReadErr error
}

func (e *StatusError) Error() string {
	if e.ReadErr != nil {
		return fmt.Sprintf("upstream error status %d (body read failed: %v): %s", e.StatusCode, e.ReadErr, e.Body)
	}
	if e.Message != "" {
		return fmt.Sprintf("upstream error status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("upstream error status %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrRateLimited) match throttling responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrRateLimited && e.StatusCode == http.StatusTooManyRequests
}
