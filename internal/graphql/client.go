package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"storesync/pkg/logging"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRequestsSec = 10
	userAgent          = "storesync"
)

// Client issues GraphQL requests against the remote store API.
//
// The client applies a flat requests-per-second budget via x/time/rate before
// every call. This is the static first line of defense; the adaptive
// rate-limit handling on top of it lives in the resilience package and reacts
// to what the server actually returns.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. Tests use this to
// point the client at a httptest server transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithRequestsPerSecond overrides the static request pacing budget.
func WithRequestsPerSecond(n float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(n), 1)
	}
}

// NewClient creates a client for the given endpoint. A non-empty token is
// attached to every request as a Bearer credential via oauth2's transport.
func NewClient(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(defaultRequestsSec), 1),
	}

	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		c.http = oauth2.NewClient(context.Background(), src)
		c.http.Timeout = defaultTimeout
	} else {
		c.http = &http.Client{Timeout: defaultTimeout}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []wireError     `json:"errors"`
}

type wireError struct {
	Message    string        `json:"message"`
	Path       []interface{} `json:"path"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

// Do executes one GraphQL document and decodes the data payload into out
// (which may be nil when the caller ignores the payload).
//
// Failure modes map onto the classifier's closed error set: transport
// failures are returned as-is, non-2xx responses become *RequestError with
// any Retry-After hint attached, and 200-with-errors responses become
// GraphQLErrors.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		reqErr := &RequestError{
			StatusCode: resp.StatusCode,
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After")),
			Body:       string(raw),
		}
		logging.Debug("GraphQLClient", "Request failed: %v", reqErr)
		return reqErr
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	if len(envelope.Errors) > 0 {
		errs := make(GraphQLErrors, len(envelope.Errors))
		for i, we := range envelope.Errors {
			errs[i] = GraphQLError{
				Message: we.Message,
				Code:    we.Extensions.Code,
				Path:    pathStrings(we.Path),
			}
		}
		logging.Debug("GraphQLClient", "Server returned %d errors", len(errs))
		return errs
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
	}
	return nil
}

// pathStrings flattens a GraphQL error path, whose segments may be field
// names or list indices, into printable strings.
func pathStrings(path []interface{}) []string {
	if len(path) == 0 {
		return nil
	}
	out := make([]string, len(path))
	for i, seg := range path {
		switch v := seg.(type) {
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.Itoa(int(v))
		default:
			out[i] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
