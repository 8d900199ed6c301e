package backlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrInvalidResponse means a body could not be decoded as the expected JSON.
	ErrInvalidResponse = errors.New("invalid response")

	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("authentication failed")
	ErrForbidden    = errors.New("permission denied")
	ErrNotFound     = errors.New("resource not found")
	ErrRateLimited  = errors.New("rate limit exceeded")
	ErrServerError  = errors.New("server error")
)

// APIError is a non-2xx answer from the Backlog API.
type APIError struct {
	StatusCode int
	Endpoint   string
	Messages   []string
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("backlog api error (%d) at %s: %s", e.StatusCode, e.Endpoint, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("backlog api error (%d) at %s", e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		if e.StatusCode >= 500 {
			return ErrServerError
		}
		return nil
	}
}

func parseAPIError(status int, endpoint string, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Endpoint: endpoint}

	var payload struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, e := range payload.Errors {
			if e.Message != "" {
				apiErr.Messages = append(apiErr.Messages, e.Message)
			}
		}
	}
	if len(apiErr.Messages) == 0 {
		apiErr.Messages = []string{http.StatusText(status)}
	}
	return apiErr
}

// redact strips the query string, and with it the api key, from transport
// errors. The URL may be one that failed to parse, so it is cut as text.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if i := strings.IndexAny(urlErr.URL, "?#"); i >= 0 {
			urlErr.URL = urlErr.URL[:i]
		}
	}
	return err
}
