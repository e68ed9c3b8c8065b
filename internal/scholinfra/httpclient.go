package scholinfra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/helixir/scholinfra-service/internal/domain"
)

const (
	// maxBodySize bounds how much of a provider response is read.
	maxBodySize = 10 << 20

	// maxErrorSnippet bounds how much of a failed response body ends up in
	// the error message.
	maxErrorSnippet = 256
)

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Timeout is the request timeout for HTTP operations.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// UserAgent is the User-Agent header sent with requests.
	UserAgent string

	// Transport overrides the underlying round tripper. Nil uses
	// http.DefaultTransport.
	Transport http.RoundTripper

	// OnThrottle, when set, is called with the provider name each time a
	// request has to wait for the rate limiter.
	OnThrottle func(provider string)
}

// HTTPClient wraps http.Client with politeness rate limiting. It never
// retries: each call is a single request whose failure is reported to the
// caller. It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	config      HTTPClientConfig
}

// NewHTTPClient creates a new HTTP client with rate limiting.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize == 0 {
		cfg.BurstSize = 10
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Helixir-ScholInfra/1.0"
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		config:      cfg,
	}
}

// Do executes an HTTP request after waiting for the rate limiter. It sets
// the User-Agent header unless the request already carries one.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	return c.do(req, "")
}

func (c *HTTPClient) do(req *http.Request, provider string) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	if !c.rateLimiter.Allow() {
		if c.config.OnThrottle != nil {
			c.config.OnThrottle(provider)
		}
		if err := c.rateLimiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// GetText issues a GET request and returns the response body as text.
// Any failure, including a non-2xx status, is a *domain.TransportError
// attributed to provider.
func (c *HTTPClient) GetText(ctx context.Context, provider, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", domain.NewTransportError(provider, target, 0, "creating request", stripURL(err))
	}
	return c.DoText(req, provider)
}

// PostText issues a POST request with the given body and content type.
// Extra headers are copied onto the request.
func (c *HTTPClient) PostText(ctx context.Context, provider, target, contentType, body string, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(body))
	if err != nil {
		return "", domain.NewTransportError(provider, target, 0, "creating request", stripURL(err))
	}
	req.Header.Set("Content-Type", contentType)
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	return c.DoText(req, provider)
}

// DoText executes req and returns the response body as text.
func (c *HTTPClient) DoText(req *http.Request, provider string) (string, error) {
	target := req.URL.String()

	resp, err := c.do(req, provider)
	if err != nil {
		return "", domain.NewTransportError(provider, target, 0, "executing request", stripURL(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", domain.NewTransportError(provider, target, resp.StatusCode, "reading response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", domain.NewTransportError(provider, target, resp.StatusCode, errorSnippet(body, resp.Status), nil)
	}

	return string(body), nil
}

// stripURL drops the *url.Error layer, which repeats the request URL and
// with it any credentials in the query.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func errorSnippet(body []byte, status string) string {
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return status
	}
	if len(msg) > maxErrorSnippet {
		msg = msg[:maxErrorSnippet] + "..."
	}
	return msg
}
