package graphql

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RequestError is returned for non-2xx HTTP responses from the remote API.
// RetryAfter carries the parsed Retry-After header when the server sent one.
type RequestError struct {
	StatusCode int
	RetryAfter *time.Duration
	Body       string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.RetryAfter != nil {
		return fmt.Sprintf("request failed with status %d (retry after %s)", e.StatusCode, *e.RetryAfter)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// GraphQLError is one field-level error in a 200 response. Code carries the
// server's extensions.code when present.
type GraphQLError struct {
	Message string   `json:"message"`
	Code    string   `json:"code,omitempty"`
	Path    []string `json:"path,omitempty"`
}

func (e GraphQLError) Error() string {
	if len(e.Path) > 0 {
		return fmt.Sprintf("%s (at %s)", e.Message, strings.Join(e.Path, "."))
	}
	return e.Message
}

// GraphQLErrors aggregates the errors array of a GraphQL response into a
// single error value. It is never empty when returned.
type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ge := range e {
		msgs[i] = ge.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e), strings.Join(msgs, "; "))
}

// ParseRetryAfter parses a Retry-After header value given in decimal seconds.
// It returns nil for empty or non-numeric input; callers must treat nil as
// "no hint", not as a failure.
func ParseRetryAfter(header string) *time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	seconds, err := strconv.ParseFloat(header, 64)
	if err != nil || seconds < 0 {
		return nil
	}
	d := time.Duration(seconds * float64(time.Second))
	return &d
}
