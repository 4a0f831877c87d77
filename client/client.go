package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-crm-client/core"
	"github.com/goliatone/go-crm-client/retry"
	"github.com/goliatone/go-crm-client/transport"
)

// Client executes logical API calls against the configured origin. It holds
// no mutable cross-call state beyond the immutable resolved config, so one
// instance serves concurrent callers without locking.
type Client struct {
	config  core.Config
	adapter transport.Adapter
	retry   retry.Policy
	logger  core.Logger
	metrics core.MetricsRecorder
	now     func() time.Time
	sleep   func(ctx context.Context, delay time.Duration) error

	loggerProvider  core.LoggerProvider
	configProvider  core.ConfigProvider
	optionsResolver core.OptionsResolver
}

type Option func(*Client)

func WithTransport(adapter transport.Adapter) Option {
	return func(c *Client) {
		c.adapter = adapter
	}
}

func WithHTTPClient(doer transport.HTTPDoer) Option {
	return func(c *Client) {
		c.adapter = transport.NewHTTPAdapter(doer)
	}
}

func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

func WithLogger(logger core.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(c *Client) {
		c.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = recorder
	}
}

func WithConfigProvider(provider core.ConfigProvider) Option {
	return func(c *Client) {
		c.configProvider = provider
	}
}

func WithOptionsResolver(resolver core.OptionsResolver) Option {
	return func(c *Client) {
		c.optionsResolver = resolver
	}
}

// WithClock substitutes the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithSleep substitutes the backoff pause, for deterministic tests.
func WithSleep(sleep func(ctx context.Context, delay time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

// New resolves configuration (defaults < provider-loaded < runtime) and wires
// the executor. The resolved config is immutable for the client's lifetime.
func New(cfg core.Config, options ...Option) (*Client, error) {
	client := &Client{
		retry:   retry.NewExponentialPolicy(),
		metrics: core.NopMetricsRecorder{},
		now: func() time.Time {
			return time.Now().UTC()
		},
		sleep: sleepContext,
	}
	for _, option := range options {
		if option == nil {
			continue
		}
		option(client)
	}

	defaults := core.DefaultConfig()
	loaded := defaults
	if client.configProvider != nil {
		value, err := client.configProvider.Load(context.Background(), defaults)
		if err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "client: load config").
				WithCode(http.StatusBadRequest).
				WithTextCode(core.ErrorCodeInvalidRequest)
		}
		loaded = value
	}
	resolver := client.optionsResolver
	if resolver == nil {
		resolver = core.GoOptionsResolver{}
	}
	resolved, err := resolver.Resolve(defaults, loaded, cfg)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "client: resolve config").
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorCodeInvalidRequest)
	}
	client.config = resolved

	if client.logger == nil {
		provider, logger := glog.Resolve("crm-client", client.loggerProvider, nil)
		client.loggerProvider = provider
		client.logger = logger
	}
	if client.adapter == nil {
		client.adapter = transport.NewHTTPAdapter(nil)
	}
	return client, nil
}

// Config returns the resolved, immutable configuration.
func (c *Client) Config() core.Config {
	if c == nil {
		return core.Config{}
	}
	return c.config
}

// Execute resolves the spec once, then drives the attempt/backoff loop until
// success, a terminal failure, or retry exhaustion. Retryable failures are
// never surfaced individually; only the last one is, once retries run out.
func (c *Client) Execute(ctx context.Context, spec RequestSpec) (*Envelope, error) {
	if c == nil || c.adapter == nil {
		return nil, goerrors.New("client: executor is not configured", goerrors.CategoryInternal).
			WithCode(http.StatusInternalServerError).
			WithTextCode(core.ErrorCodeUnknown)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	startedAt := c.clock()()
	resolved, err := c.resolve(spec)
	if err != nil {
		return nil, err
	}

	var envelope *Envelope
	var lastErr error
	attempts := 0
	for attempt := 0; ; attempt++ {
		attempts = attempt + 1
		envelope, lastErr = c.attempt(ctx, resolved)
		if lastErr == nil {
			break
		}
		if !c.shouldRetry(lastErr) || attempt >= c.config.MaxRetries {
			envelope = nil
			break
		}
		if sleepErr := c.pause(ctx, c.retryPolicy().NextDelay(attempt+1)); sleepErr != nil {
			envelope = nil
			lastErr = sleepErr
			break
		}
	}

	c.observeRequest(ctx, startedAt, resolved, attempts, lastErr)
	if lastErr != nil {
		return nil, lastErr
	}
	return envelope, nil
}

// Get is shorthand for Execute with a GET spec.
func (c *Client) Get(ctx context.Context, path string, query map[string]any) (*Envelope, error) {
	return c.Execute(ctx, RequestSpec{Method: http.MethodGet, Path: path, Query: query})
}

// Post is shorthand for Execute with a POST spec.
func (c *Client) Post(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Execute(ctx, RequestSpec{Method: http.MethodPost, Path: path, Body: body})
}

// Put is shorthand for Execute with a PUT spec.
func (c *Client) Put(ctx context.Context, path string, body any) (*Envelope, error) {
	return c.Execute(ctx, RequestSpec{Method: http.MethodPut, Path: path, Body: body})
}

// Delete is shorthand for Execute with a DELETE spec.
func (c *Client) Delete(ctx context.Context, path string) (*Envelope, error) {
	return c.Execute(ctx, RequestSpec{Method: http.MethodDelete, Path: path})
}

func (c *Client) attempt(ctx context.Context, req transport.Request) (*Envelope, error) {
	res, err := c.adapter.Do(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, cancelledError(ctx.Err())
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, timeoutError(err, req.Timeout)
		}
		return nil, err
	}

	body := bytes.TrimSpace(res.Body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	if !json.Valid(body) {
		return nil, invalidResponseError(res.StatusCode)
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		envelope := &Envelope{}
		if err := json.Unmarshal(body, envelope); err != nil {
			return nil, invalidResponseError(res.StatusCode)
		}
		return envelope, nil
	}

	errorEnvelope := &apiErrorEnvelope{}
	// Valid JSON with an unexpected shape falls back to the defaults.
	_ = json.Unmarshal(body, errorEnvelope)
	return nil, apiError(res.StatusCode, errorEnvelope)
}

func (c *Client) shouldRetry(err error) bool {
	if err == nil {
		return false
	}
	switch core.TextCode(err) {
	case core.ErrorCodeInvalidResponse, core.ErrorCodeInvalidRequest, core.ErrorCodeCancelled:
		return false
	}
	return c.retryPolicy().Retryable(core.StatusCode(err))
}

func (c *Client) pause(ctx context.Context, delay time.Duration) error {
	sleep := c.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	if err := sleep(ctx, delay); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return timeoutError(err, delay)
		}
		return cancelledError(err)
	}
	return nil
}

func (c *Client) retryPolicy() retry.Policy {
	if c != nil && c.retry != nil {
		return c.retry
	}
	return retry.NewExponentialPolicy()
}

func (c *Client) clock() func() time.Time {
	if c != nil && c.now != nil {
		return c.now
	}
	return func() time.Time {
		return time.Now().UTC()
	}
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
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

var _ fmt.Stringer = RequestSpec{}

// String renders the logical call shape without credentials or payloads.
func (s RequestSpec) String() string {
	return fmt.Sprintf("%s %s", s.Method, s.Path)
}
