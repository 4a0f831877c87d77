// Package crmclient is the entry point for the hosted CRM API client:
// request execution with retries, typed resource accessors, and webhook
// signature verification.
package crmclient

import (
	"context"
	"time"

	"github.com/goliatone/go-crm-client/client"
	"github.com/goliatone/go-crm-client/core"
	"github.com/goliatone/go-crm-client/resources"
	"github.com/goliatone/go-crm-client/webhooks"
)

type Config = core.Config

type CredentialConfig = core.CredentialConfig

type Option = client.Option

type RequestSpec = client.RequestSpec

type Envelope = client.Envelope

type Event = webhooks.Event

var (
	WithTransport       = client.WithTransport
	WithHTTPClient      = client.WithHTTPClient
	WithRetryPolicy     = client.WithRetryPolicy
	WithLogger          = client.WithLogger
	WithLoggerProvider  = client.WithLoggerProvider
	WithMetricsRecorder = client.WithMetricsRecorder
	WithConfigProvider  = client.WithConfigProvider
	WithOptionsResolver = client.WithOptionsResolver
	WithClock           = client.WithClock
	WithSleep           = client.WithSleep
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// SDK bundles the request executor, the resource accessors, and webhook
// verification behind one handle.
type SDK struct {
	client    *client.Client
	resources *resources.Service
	verifier  webhooks.Verifier
}

// New builds an SDK from the given configuration.
func New(cfg Config, opts ...Option) (*SDK, error) {
	executor, err := client.New(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &SDK{
		client:    executor,
		resources: resources.New(executor),
	}, nil
}

// Client exposes the underlying request executor.
func (s *SDK) Client() *client.Client {
	return s.client
}

// Execute runs an arbitrary request through the retry pipeline.
func (s *SDK) Execute(ctx context.Context, spec RequestSpec) (*Envelope, error) {
	return s.client.Execute(ctx, spec)
}

// Clients accesses the /clients collection.
func (s *SDK) Clients() *resources.Collection {
	return s.resources.Clients()
}

// Invoices accesses the /invoices collection.
func (s *SDK) Invoices() *resources.Collection {
	return s.resources.Invoices()
}

// Jobs accesses the /jobs collection.
func (s *SDK) Jobs() *resources.Collection {
	return s.resources.Jobs()
}

// VerifyWebhook authenticates a webhook payload with the default freshness
// tolerance.
func (s *SDK) VerifyWebhook(payload []byte, header, secret string) error {
	_, err := s.verifier.Verify(payload, header, secret, webhooks.DefaultTolerance)
	return err
}

// ConstructEvent authenticates a webhook payload and decodes it into an
// Event using the given freshness tolerance.
func (s *SDK) ConstructEvent(payload []byte, header, secret string, tolerance time.Duration) (Event, error) {
	return s.verifier.ConstructEvent(payload, header, secret, tolerance)
}
