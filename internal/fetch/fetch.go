package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is one fetched body with the URL it was finally served from.
type Response struct {
	URL         string
	ContentType string
	Body        []byte
}

// Client issues single GET requests with a per-request timeout and explicit
// headers. It never retries: the caller moves on to the next mirror or stops
// paginating instead.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Header carries extra request headers; User-Agent here is ignored in
	// favour of UserAgent.
	Header http.Header
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration

	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes caps how much of a body is read. Zero means 10 MiB.
	MaxBodyBytes int64
}

// BrowserHeaders are the request headers sent to HTML pages.
func BrowserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Cache-Control", "max-age=0")
	return h
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.PerRequestTimeout, CheckRedirect: c.checkRedirectFunc()}
}

// Get issues a GET and returns the body of a 2xx response. Any transport
// failure, timeout or non-2xx status comes back as *Error.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	return c.get(ctx, rawURL, c.PerRequestTimeout)
}

// Probe issues a GET with its own, usually shorter, timeout. Used to find a
// live mirror.
func (c *Client) Probe(ctx context.Context, rawURL string, timeout time.Duration) (Response, error) {
	if timeout <= 0 {
		timeout = c.PerRequestTimeout
	}
	return c.get(ctx, rawURL, timeout)
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	return DecodeJSON(resp, v)
}

// DecodeJSON decodes an already fetched body into v.
func DecodeJSON(resp Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return &Error{URL: resp.URL, Status: http.StatusOK, Err: fmt.Errorf("decode json: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, timeout time.Duration) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, &Error{URL: rawURL, Err: fmt.Errorf("new request: %w", err)}
	}
	// Reject non-HTTP(S) schemes early
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Response{}, &Error{URL: rawURL, Err: fmt.Errorf("unsupported URL scheme: %q", rawURL)}
	}
	for k, vals := range c.Header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	httpClient := c.getHTTPClient()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return Response{}, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.CopyN(io.Discard, resp.Body, 4096)
		return Response{}, &Error{URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status: %d", resp.StatusCode)}
	}

	limit := c.MaxBodyBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return Response{}, &Error{URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	final := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return Response{URL: final, ContentType: resp.Header.Get("Content-Type"), Body: b}, nil
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
