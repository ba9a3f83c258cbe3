// Package integrations provides shared HTTP functionality for the remote
// source-control provider clients (GitHub, GitLab): a base client with
// default headers, centralized status-code classification including
// rate-limit detection, and retry wiring.
package integrations

import (
	"net/http"
	"net/url"
	"time"
)

const httpTimeout = 10 * time.Second

// DescriptorFileName is the fixed catalog descriptor filename looked up at
// the root of every candidate repository.
const DescriptorFileName = "catalog-info.yaml"

// DefaultBranch is the ref descriptor files are fetched from.
const DefaultBranch = "main"

// NewHTTPClient creates an HTTP client with a standard timeout for
// provider API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URL path or query segments.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }
