package resilience

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"storesync/internal/graphql"
)

// Kind is the classified category of a remote-operation failure. The
// classifier maps every error at the I/O boundary onto this closed set so
// downstream code switches on a tag instead of probing error shapes.
type Kind int

const (
	// KindUnknown is the fail-safe bucket for anything unrecognized.
	KindUnknown Kind = iota
	// KindRateLimit covers HTTP 429, throttling codes and messages.
	KindRateLimit
	// KindNetwork covers connection-level failures: refused, reset,
	// timeouts, DNS.
	KindNetwork
	// KindGraphQL covers application-level errors the server returned in a
	// well-formed response (permission denied, invalid input, ...).
	KindGraphQL
	// KindValidation covers pre-flight input failures raised before any
	// network call.
	KindValidation
)

// String makes Kind satisfy the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate-limit"
	case KindNetwork:
		return "network"
	case KindGraphQL:
		return "graphql"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Retryable reports whether an error of this kind is worth retrying.
// GraphQL application errors and validation errors will fail identically on
// every attempt; unknown errors are not retried to fail safe.
func (k Kind) Retryable() bool {
	return k == KindRateLimit || k == KindNetwork
}

// ValidationError is a pre-flight input failure (missing natural key,
// duplicate keys in a batch). It is raised before any network call and is
// never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

var rateLimitPhrases = []string{"rate limit", "too many requests", "throttl"}

var networkPhrases = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"timeout",
	"eof",
}

var rateLimitCodes = map[string]bool{
	"THROTTLED":           true,
	"RATE_LIMITED":        true,
	"TOO_MANY_REQUESTS":   true,
	"QUERY_COST_EXCEEDED": true,
}

// Classify inspects an opaque failure and returns its Kind. It only looks at
// the documented error shapes from the graphql package plus standard
// transport errors, and returns KindUnknown for anything else. It never
// panics on unexpected values.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return KindValidation
	}

	var reqErr *graphql.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.StatusCode == http.StatusTooManyRequests || reqErr.RetryAfter != nil {
			return KindRateLimit
		}
		if containsAny(strings.ToLower(reqErr.Body), rateLimitPhrases) {
			return KindRateLimit
		}
		return KindUnknown
	}

	var gqlErrs graphql.GraphQLErrors
	if errors.As(err, &gqlErrs) {
		for _, ge := range gqlErrs {
			if rateLimitCodes[ge.Code] || containsAny(strings.ToLower(ge.Message), rateLimitPhrases) {
				return KindRateLimit
			}
		}
		return KindGraphQL
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	if errors.Is(err, context.Canceled) {
		return KindUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	if containsAny(msg, rateLimitPhrases) {
		return KindRateLimit
	}
	if containsAny(msg, networkPhrases) {
		return KindNetwork
	}
	return KindUnknown
}

// RetryAfterHint extracts a server-provided Retry-After delay from an error,
// or nil when the error carries none.
func RetryAfterHint(err error) *time.Duration {
	var reqErr *graphql.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.RetryAfter
	}
	return nil
}

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}
	return false
}
