// Package jinko is a client for the Jinko clinical trial simulation API.
//
// The client attaches project authentication headers to every request,
// optionally attaches base64-encoded project-item metadata headers, and
// surfaces non-2xx responses as *APIError values. There are no retries and no
// backoff: every call is one synchronous HTTP round trip.
package jinko

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/novainsilico/jinkoctl/pkg/logging"
)

const (
	// DefaultBaseURL is the production Jinko API endpoint.
	DefaultBaseURL = "https://api.jinko.ai"

	// ProjectIDHeader carries the project the request is scoped to.
	ProjectIDHeader = "X-jinko-project-id"

	// ItemURLBase is the base of shareable project-item URLs.
	ItemURLBase = "https://jinko.ai"
)

// APIError represents an error response from the Jinko API.
type APIError struct {
	StatusCode int
	ErrorCode  string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the Jinko REST API on behalf of one project.
type Client struct {
	baseURL    string
	projectID  string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the HTTP timeout for the client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Jinko API client. The base URL defaults to JINKO_BASE_URL
// when set, DefaultBaseURL otherwise.
func New(projectID, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("project ID cannot be empty")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key cannot be empty")
	}

	baseURL := DefaultBaseURL
	if env := os.Getenv("JINKO_BASE_URL"); env != "" {
		baseURL = env
	}

	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// reqSpec collects per-request options before dispatch.
type reqSpec struct {
	jsonBody any
	csvBody  string
	hasJSON  bool
	hasCSV   bool
	meta     *ItemMeta
}

// ReqOption configures one request.
type ReqOption func(*reqSpec)

// WithJSON attaches a JSON body. Takes precedence over WithCSV when both are
// given, matching the original dispatch rule.
func WithJSON(v any) ReqOption {
	return func(s *reqSpec) {
		s.jsonBody = v
		s.hasJSON = true
	}
}

// WithCSV attaches a raw CSV body with Content-Type text/csv.
func WithCSV(data string) ReqOption {
	return func(s *reqSpec) {
		s.csvBody = data
		s.hasCSV = true
	}
}

// WithMeta attaches base64-encoded project-item metadata headers.
func WithMeta(meta *ItemMeta) ReqOption {
	return func(s *reqSpec) {
		s.meta = meta
	}
}

// Do performs one API request and returns the raw response. The caller owns
// the response body. Non-2xx responses are drained and returned as *APIError.
func (c *Client) Do(ctx context.Context, method, path string, opts ...ReqOption) (*http.Response, error) {
	var spec reqSpec
	for _, opt := range opts {
		opt(&spec)
	}

	var bodyReader io.Reader
	contentType := ""
	switch {
	case spec.hasJSON:
		data, err := json.Marshal(spec.jsonBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
		contentType = "application/json"
	case spec.hasCSV:
		bodyReader = strings.NewReader(spec.csvBody)
		contentType = "text/csv"
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(ProjectIDHeader, c.projectID)
	req.Header.Set("Authorization", "ApiKey "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if spec.meta != nil {
		metaHeaders, err := spec.meta.Headers()
		if err != nil {
			return nil, err
		}
		for k, v := range metaHeaders {
			req.Header.Set(k, v)
		}
	}

	c.log.Debug("jinko request", "method", method, "url", fullURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{
			StatusCode: 0,
			ErrorCode:  "connection_error",
			Message:    fmt.Sprintf("cannot reach Jinko API at %s: %v", c.baseURL, err),
		}
	}
	if resp.StatusCode >= 400 {
		apiErr := c.parseError(resp)
		c.log.Warn("jinko request failed", "method", method, "url", fullURL, "status", resp.StatusCode)
		return nil, apiErr
	}
	return resp, nil
}

// CheckAuthentication reports whether the stored credentials are accepted by
// the API. Transport errors, non-2xx responses, and non-JSON bodies all count
// as a failed check; this is the one place errors collapse to a boolean.
func (c *Client) CheckAuthentication(ctx context.Context) bool {
	resp, err := c.Do(ctx, http.MethodGet, "/app/v1/auth/check")
	if err != nil {
		c.log.Warn("authentication check failed", "error", err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	var body any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Warn("authentication check returned a non-JSON body")
		return false
	}
	return true
}

// GetProjectItem retrieves a project item by its short ID, optionally at a
// specific revision (revision 0 means latest).
func (c *Client) GetProjectItem(ctx context.Context, shortID string, revision int) (*ProjectItem, error) {
	path := "/app/v1/project-item/" + url.PathEscape(shortID)
	if revision > 0 {
		path += "?revision=" + strconv.Itoa(revision)
	}
	var item ProjectItem
	if err := c.getJSON(ctx, path, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetCoreItemID resolves the CoreItemId of a project item.
func (c *Client) GetCoreItemID(ctx context.Context, shortID string, revision int) (string, error) {
	item, err := c.GetProjectItem(ctx, shortID, revision)
	if err != nil {
		return "", err
	}
	if item.CoreID == "" {
		return "", fmt.Errorf("project item %q has no CoreItemId", shortID)
	}
	return item.CoreID, nil
}

// ProjectItemURL returns the shareable URL of a project item, or "" when the
// item has no short id.
func (c *Client) ProjectItemURL(ctx context.Context, coreItemID string) (string, error) {
	var item ProjectItem
	if err := c.getJSON(ctx, "/app/v1/core-item/"+url.PathEscape(coreItemID), &item); err != nil {
		return "", err
	}
	if item.SID == "" {
		return "", nil
	}
	return ItemURLBase + "/" + item.SID, nil
}

// getJSON performs a GET and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	return decodeJSON(resp, v)
}

// postJSON performs a JSON POST and decodes the JSON response into v.
func (c *Client) postJSON(ctx context.Context, path string, v any, opts ...ReqOption) error {
	resp, err := c.Do(ctx, http.MethodPost, path, opts...)
	if err != nil {
		return err
	}
	return decodeJSON(resp, v)
}

// decodeJSON decodes a response body into v and closes it.
func decodeJSON(resp *http.Response, v any) error {
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// parseError reads and closes an error response body.
func (c *Client) parseError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			ErrorCode:  errResp.Error,
			Message:    errResp.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		ErrorCode:  "unknown_error",
		Message:    fmt.Sprintf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
	}
}
