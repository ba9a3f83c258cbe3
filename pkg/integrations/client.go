package integrations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/iandesj/aperture/pkg/errors"
	"github.com/iandesj/aperture/pkg/httputil"
)

// Client provides shared HTTP functionality for the provider API clients.
// It applies default headers, retries transient failures, and maps
// response status codes to structured errors.
type Client struct {
	http    *http.Client
	headers map[string]string
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string) *Client {
	return &Client{
		http:    NewHTTPClient(),
		headers: headers,
	}
}

// Do performs an HTTP GET and returns the raw response after status
// classification, retrying transient failures with backoff. Callers that
// need pagination or rate-limit headers read them from the returned
// response; everyone else should prefer [Client.GetJSON] or
// [Client.GetText]. The caller owns the response body.
func (c *Client) Do(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response
	err := httputil.RetryWithBackoff(ctx, func() error {
		r, err := c.doRequest(ctx, url, headers)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetJSON performs an HTTP GET and JSON-decodes the response into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Do(ctx, url, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(v)
}

// GetText performs an HTTP GET and returns the response body as a string.
// Useful for raw-file endpoints serving descriptor documents.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.Do(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "request failed")}
	}

	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// CheckStatus maps a provider response to a structured error, or nil for
// 2xx. Rate-limit rejections (GitHub's 403 with an exhausted quota header,
// GitLab's 429) become *errors.RateLimitedError carrying the reset time so
// the import pipeline can halt the run.
func CheckStatus(resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "resource not found")
	case code == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "authentication failed; check your token")
	case code == http.StatusForbidden:
		if resp.Header.Get("x-ratelimit-remaining") == "0" {
			return &errors.RateLimitedError{
				Reset:   epochHeader(resp, "x-ratelimit-reset"),
				Message: "API rate limit exceeded",
			}
		}
		return errors.New(errors.ErrCodeForbidden, "access forbidden: status %d", code)
	case code == http.StatusTooManyRequests:
		return &errors.RateLimitedError{
			Reset:   rateLimitReset(resp),
			Message: "API rate limit exceeded",
		}
	case code >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "server error: status %d", code)}
	default:
		return errors.New(errors.ErrCodeNetwork, "unexpected status %d", code)
	}
}

// epochHeader parses a unix-seconds header into a time, zero if absent.
func epochHeader(resp *http.Response, name string) time.Time {
	raw := resp.Header.Get(name)
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

// rateLimitReset extracts the reset time from a 429 response, trying the
// RateLimit-Reset epoch header first, then Retry-After seconds.
func rateLimitReset(resp *http.Response) time.Time {
	if t := epochHeader(resp, "RateLimit-Reset"); !t.IsZero() {
		return t
	}
	if raw := resp.Header.Get("Retry-After"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil {
			return time.Now().UTC().Add(time.Duration(secs) * time.Second)
		}
	}
	return time.Time{}
}
