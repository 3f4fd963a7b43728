package distance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"vrp-route-service/internal/platform/metrics"

	"golang.org/x/time/rate"
)

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("Code %d: %s", e.Code, e.Body)
}

// client is the outbound HTTP plumbing shared by every provider: header
// injection, a request-rate limiter and retries with backoff.
type client struct {
	provider string
	session  *http.Client
	limiter  *rate.Limiter
	headers  map[string]string

	maxAttempts int
	backoff     time.Duration
}

type clientOptions struct {
	Provider       string
	Timeout        time.Duration
	RequestsPerSec float64
	Headers        map[string]string
	HTTPClient     *http.Client
}

func newClient(opts clientOptions) *client {
	session := opts.HTTPClient
	if session == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		session = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}

	return &client{
		provider:    opts.Provider,
		session:     session,
		limiter:     rate.NewLimiter(limit, 1),
		headers:     opts.Headers,
		maxAttempts: 4,
		backoff:     200 * time.Millisecond,
	}
}

func (c *client) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &httpStatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

// doWithRetry retries transient failures (network errors, 429 and 5xx
// responses) using exponential backoff. Every attempt waits on the limiter.
func (c *client) doWithRetry(
	ctx context.Context,
	makeReq func() (*http.Request, error),
) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := makeReq()
		if err != nil {
			return nil, fmt.Errorf("make request: %w", err)
		}

		resp, err := c.do(req)
		if err == nil {
			metrics.ProviderRequests.WithLabelValues(c.provider, "ok").Inc()
			return resp, nil
		}
		lastErr = err

		retry := false
		var he *httpStatusError
		if errors.As(err, &he) {
			switch he.Code {
			case 429, 500, 502, 503, 504:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(err, &netErr) && ctx.Err() == nil {
			retry = true
		}

		if !retry || attempt == c.maxAttempts {
			metrics.ProviderRequests.WithLabelValues(c.provider, "error").Inc()
			return nil, lastErr
		}
		metrics.ProviderRequests.WithLabelValues(c.provider, "retry").Inc()

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}

// normalize ensures consistent cache keys by collapsing whitespace.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
