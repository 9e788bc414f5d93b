// Package client talks to the Amelia booking REST API.
//
// Every logical operation is one HTTP request. The client never retries and
// never returns an error: failures come back as a tagged [Failure] inside the
// [Result] so callers can decide whether to skip, retry or abort.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// DefaultTimeout is used when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 32 << 20

// HTTPDoer executes HTTP requests. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Auth      Authenticator
	Timeout   time.Duration
	HTTP      HTTPDoer
	UserAgent string
	// Resources replaces the built-in resource table when non-nil.
	Resources []Resource
}

// Client is the Amelia API client.
type Client struct {
	baseURL   string
	auth      Authenticator
	http      HTTPDoer
	userAgent string
	resources map[string]Resource
}

// New creates a client. The base URL may carry a query string, as the
// WordPress admin-ajax endpoint does.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	doer := opts.HTTP
	if doer == nil {
		doer = &http.Client{Timeout: timeout}
	}
	auth := opts.Auth
	if auth == nil {
		auth = NoAuth{}
	}
	resources := opts.Resources
	if resources == nil {
		resources = DefaultResources()
	}

	c := &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		auth:      auth,
		http:      doer,
		userAgent: opts.UserAgent,
		resources: make(map[string]Resource, len(resources)),
	}
	for _, r := range resources {
		c.resources[r.Name] = r
	}
	return c
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL joins the base URL, path and query parameters. "appointments" and
// "/appointments" resolve to the same URL.
func (c *Client) URL(path string, params url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(params) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + params.Encode()
}

// Do issues a single request. body is JSON-encoded for POST and PUT and
// ignored for GET and DELETE.
func (c *Client) Do(ctx context.Context, method, path string, body any, params url.Values) Result {
	method = strings.ToUpper(method)
	target := c.URL(path, params)
	log := logging.FromContext(ctx)

	var reqBody io.Reader
	switch method {
	case http.MethodGet, http.MethodDelete:
	case http.MethodPost, http.MethodPut:
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return failed(FailureRequest, 0, "encode request body: "+err.Error())
			}
			reqBody = bytes.NewReader(payload)
		}
	default:
		return failed(FailureRequest, 0, "unsupported HTTP method: "+method)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return failed(FailureRequest, 0, "build request: "+err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	c.auth.Apply(req.Header)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("api request failed", "method", method, "path", path, "error", err)
		return failed(FailureTransport, 0, transportMessage(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return failed(FailureTransport, resp.StatusCode, "read response body: "+err.Error())
	}

	log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failed(FailureHTTP, resp.StatusCode, errorMessage(resp.StatusCode, raw))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if resp.StatusCode == http.StatusNoContent {
			return Result{StatusCode: resp.StatusCode}
		}
		return failed(FailureMalformed, resp.StatusCode, "empty response body")
	}

	data, err := decodeJSON(raw)
	if err != nil {
		return failed(FailureMalformed, resp.StatusCode, "response is not valid JSON: "+err.Error())
	}

	return Result{StatusCode: resp.StatusCode, Data: data, Raw: raw}
}

// Get is shorthand for a GET request.
func (c *Client) Get(ctx context.Context, path string, params url.Values) Result {
	return c.Do(ctx, http.MethodGet, path, nil, params)
}

// Post is shorthand for a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) Result {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// TestConnection performs one lightweight read and reports whether it
// succeeded. A 2xx response carrying an "error" field counts as a failure.
func (c *Client) TestConnection(ctx context.Context) bool {
	res := c.Get(ctx, "/categories", nil)
	if !res.OK() {
		return false
	}
	_, hasErr := Envelope("error").Extract(res.Data)
	return !hasErr
}

// transportMessage turns network errors into short messages.
func transportMessage(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "request timed out"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "cannot resolve host " + dnsErr.Name
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
