package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foildb/internal/config"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 3
	defaultBaseDelay = 500 * time.Millisecond
	defaultMaxDelay  = 5 * time.Second
	defaultMaxBody   = 32 << 20
)

// StatusError reports a non-success HTTP response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
}

// retryableStatuses are the upstream responses worth another attempt.
var retryableStatuses = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

// Client issues GET requests with bounded retries for transient upstream
// failures. Only GET is ever retried.
type Client struct {
	httpClient *http.Client
	retries    int
	baseDelay  time.Duration
	maxDelay   time.Duration
	maxBody    int64
	sleeper    func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetries sets how many times a failed GET is reissued after the
// initial attempt.
func WithRetries(retries int) Option {
	return func(c *Client) {
		if retries >= 0 {
			c.retries = retries
		}
	}
}

// WithBackoff overrides the retry backoff delays.
func WithBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// WithMaxBodyBytes bounds how large a fetched payload may be.
func WithMaxBodyBytes(limit int64) Option {
	return func(c *Client) {
		if limit > 0 {
			c.maxBody = limit
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// New constructs a fetch client with the given per-request timeout.
func New(timeoutSeconds int, opts ...Option) *Client {
	timeout := defaultTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		retries:    defaultRetries,
		baseDelay:  defaultBaseDelay,
		maxDelay:   defaultMaxDelay,
		maxBody:    defaultMaxBody,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}
	return client
}

// NewFromConfig builds a client from the fetch section of the configuration.
func NewFromConfig(cfg *config.Config) *Client {
	return New(
		cfg.Fetch.Timeout,
		WithRetries(cfg.Fetch.Retries),
		WithBackoff(time.Duration(cfg.Fetch.BackoffMS)*time.Millisecond, defaultMaxDelay),
		WithMaxBodyBytes(cfg.Fetch.MaxImageBytes),
	)
}

// Get downloads target, retrying connection failures and retryable status
// codes with exponential backoff.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("fetch: url required")
	}

	attempts := c.retries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		body, err := c.getOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !c.retryable(ctx, err) {
			return nil, err
		}
		if attempt == attempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.backoffDelay(attempt)); sleepErr != nil {
			return nil, sleepErr
		}
	}
	return nil, fmt.Errorf("fetch %s: %d attempts exhausted: %w", target, attempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("fetch %s: payload exceeds %d byte limit", target, c.maxBody)
	}
	return body, nil
}

func (c *Client) retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		_, ok := retryableStatuses[statusErr.StatusCode]
		return ok
	}
	// Transport-level failures (refused connections, resets, DNS, request
	// timeouts) surface as url.Error from the HTTP client.
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.baseDelay
	if base <= 0 {
		return 0
	}
	delay := base
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			delay = c.maxDelay
			break
		}
		delay *= 2
	}
	if c.maxDelay > 0 && delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
