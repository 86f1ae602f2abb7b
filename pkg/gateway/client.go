package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/provisioner/pkg/logger"
	"github.com/dmitrymomot/provisioner/pkg/provisioning"
)

const (
	maxBodySize       = 1 << 20 // maxBodySize caps how much of a Gateway response is read.
	defaultTimeout    = 10 * time.Second
	defaultMaxRetries = 2
)

// Client talks to the remote subscription Gateway over HTTP.
// It implements provisioning.Gateway.
type Client struct {
	baseURL    *url.URL
	token      string
	authHeader string
	authScheme string
	userAgent  string

	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	backoff    BackoffStrategy
	breaker    *CircuitBreaker
	log        *slog.Logger
}

// New creates a Gateway client for baseURL, authenticating every call with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", ErrInvalidConfiguration)
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConfiguration)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConfiguration)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: auth token is required", ErrInvalidConfiguration)
	}

	c := &Client{
		baseURL:    u,
		token:      token,
		authHeader: "Authorization",
		authScheme: "Bearer",
		userAgent:  "provisioner/1.0",
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		backoff:    DefaultBackoff(),
		log:        logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetSubscription fetches the current subscription snapshot.
// Upstream failures are retried with backoff up to the configured limit.
func (c *Client) GetSubscription(ctx context.Context, id int64) (provisioning.Subscription, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return provisioning.Subscription{}, fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(c.backoff.NextInterval(attempt)):
			}
		}

		sub, err := c.getSubscription(ctx, id)
		if err == nil {
			return sub, nil
		}
		lastErr = err

		if !retryable(err) {
			return provisioning.Subscription{}, err
		}
		c.log.WarnContext(ctx, "gateway read failed",
			logger.SubscriptionID(id),
			logger.Attempt(attempt+1),
			logger.Error(err),
		)
	}
	return provisioning.Subscription{}, fmt.Errorf("read failed after %d attempts: %w", c.maxRetries+1, lastErr)
}

func (c *Client) getSubscription(ctx context.Context, id int64) (provisioning.Subscription, error) {
	status, body, err := c.do(ctx, http.MethodGet, id, nil)
	if err != nil {
		return provisioning.Subscription{}, err
	}

	switch {
	case status == http.StatusNotFound:
		return provisioning.Subscription{}, fmt.Errorf("%w: id %d", provisioning.ErrSubscriptionNotFound, id)
	case isTransientStatus(status):
		return provisioning.Subscription{}, fmt.Errorf("%w: %s", provisioning.ErrUpstreamUnavailable, describe(status, body))
	case !isSuccess(status):
		return provisioning.Subscription{}, fmt.Errorf("%w: %w: %s", provisioning.ErrUpstreamUnavailable, ErrPermanentFailure, describe(status, body))
	}

	var sub provisioning.Subscription
	if err := json.Unmarshal(body, &sub); err != nil {
		return provisioning.Subscription{}, fmt.Errorf("%w: %w", provisioning.ErrMalformedResponse, err)
	}
	return sub, nil
}

type statusUpdate struct {
	DeploymentStatus provisioning.DeploymentStatus `json:"deploymentStatus"`
}

// SetDeploymentStatus writes a new status. It is a single call and is never
// retried: any 4xx answer means the Gateway refused the transition.
func (c *Client) SetDeploymentStatus(ctx context.Context, id int64, status provisioning.DeploymentStatus) error {
	code, body, err := c.do(ctx, http.MethodPatch, id, statusUpdate{DeploymentStatus: status})
	if err != nil {
		return err
	}

	switch {
	case isSuccess(code):
		return nil
	case isTransientStatus(code):
		return fmt.Errorf("%w: %s", provisioning.ErrUpstreamUnavailable, describe(code, body))
	case code >= 400 && code < 500:
		return fmt.Errorf("%w: %s", provisioning.ErrTransitionRejected, describe(code, body))
	default:
		return fmt.Errorf("%w: %s", provisioning.ErrUpstreamUnavailable, describe(code, body))
	}
}

// do performs a single request and classifies transport failures.
// The returned body is already read and the connection released.
func (c *Client) do(ctx context.Context, method string, id int64, payload any) (int, []byte, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return 0, nil, fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, ErrCircuitOpen)
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, method, c.subscriptionURL(id), reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(c.authHeader, c.authValue())
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, c.transportError(ctx, reqCtx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, c.transportError(ctx, reqCtx, fmt.Errorf("failed to read response: %w", err))
	}

	if isTransientStatus(resp.StatusCode) {
		c.recordFailure()
	} else if c.breaker != nil {
		c.breaker.RecordSuccess()
	}

	c.log.DebugContext(ctx, "gateway call",
		slog.String("method", method),
		logger.SubscriptionID(id),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)
	return resp.StatusCode, body, nil
}

func (c *Client) subscriptionURL(id int64) string {
	return c.baseURL.JoinPath("subscription", strconv.FormatInt(id, 10)).String()
}

func (c *Client) authValue() string {
	if c.authScheme == "" {
		return c.token
	}
	return c.authScheme + " " + c.token
}

// transportError classifies a failed exchange. A caller that gave up says
// nothing about Gateway health, so only failures seen while ctx is still live
// count against the breaker.
func (c *Client) transportError(ctx, reqCtx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, context.Cause(ctx))
	}
	c.recordFailure()
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %w", provisioning.ErrUpstreamUnavailable, ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", provisioning.ErrUpstreamUnavailable, err)
}

func (c *Client) recordFailure() {
	if c.breaker != nil {
		c.breaker.RecordFailure()
	}
}

// retryable reports whether a read failure may succeed on a later attempt.
func retryable(err error) bool {
	return errors.Is(err, provisioning.ErrUpstreamUnavailable) &&
		!errors.Is(err, ErrPermanentFailure) &&
		!errors.Is(err, ErrCircuitOpen)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

// isTransientStatus lists answers that say nothing about the request itself:
// server errors plus the 4xx codes used for throttling and timing.
func isTransientStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
		return true
	}
	return code >= 500
}

// describe renders a status and a trimmed, single-line body for error messages.
func describe(code int, body []byte) string {
	msg := fmt.Sprintf("gateway returned status %d", code)
	if len(body) == 0 {
		return msg
	}
	text := strings.ReplaceAll(string(body), "\n", " ")
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return msg + ": " + text
}
