package webhooks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/core"
	"github.com/goliatone/go-crm-client/retry"
)

// Delivery lifecycle states tracked by the ledger.
const (
	DeliveryStatusPending    = "pending"
	DeliveryStatusProcessed  = "processed"
	DeliveryStatusRetryReady = "retry_ready"
)

// DeliveryRecord is the ledger's view of a single webhook delivery.
type DeliveryRecord struct {
	DeliveryID    string
	Status        string
	Attempts      int
	Payload       []byte
	LastError     string
	NextAttemptAt time.Time
	ReceivedAt    time.Time
	UpdatedAt     time.Time
}

// DeliveryLedger records deliveries so replays are acknowledged without
// re-running the handler. Reserve must be atomic per delivery id: the first
// caller gets seen=false, every later caller for the same id gets seen=true.
type DeliveryLedger interface {
	Reserve(ctx context.Context, deliveryID string, payload []byte) (DeliveryRecord, bool, error)
	Get(ctx context.Context, deliveryID string) (DeliveryRecord, error)
	MarkProcessed(ctx context.Context, deliveryID string) error
	MarkRetry(ctx context.Context, deliveryID string, cause error, nextAttemptAt time.Time) error
}

// Handler consumes an authenticated event. A returned error marks the
// delivery for retry rather than acknowledging it.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Result summarizes how a delivery was disposed of. StatusCode is the HTTP
// status an inbound endpoint should answer with.
type Result struct {
	DeliveryID string
	Accepted   bool
	Deduped    bool
	StatusCode int
}

// Processor verifies, deduplicates, and dispatches webhook deliveries.
type Processor struct {
	secret    string
	tolerance time.Duration
	verifier  Verifier
	ledger    DeliveryLedger
	handler   Handler
	policy    retry.Policy
	now       func() time.Time
}

// ProcessorOption customizes a Processor.
type ProcessorOption func(*Processor)

// WithLedger replaces the in-memory delivery ledger.
func WithLedger(ledger DeliveryLedger) ProcessorOption {
	return func(p *Processor) {
		if ledger != nil {
			p.ledger = ledger
		}
	}
}

// WithTolerance overrides the signature freshness window.
func WithTolerance(tolerance time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.tolerance = tolerance
	}
}

// WithRetryPolicy controls the spacing of redelivery attempts.
func WithRetryPolicy(policy retry.Policy) ProcessorOption {
	return func(p *Processor) {
		if policy != nil {
			p.policy = policy
		}
	}
}

// WithProcessorClock injects the clock used for freshness checks and retry
// scheduling.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
			p.verifier = Verifier{Now: now}
		}
	}
}

// NewProcessor builds a Processor for the given signing secret and handler.
func NewProcessor(secret string, handler Handler, options ...ProcessorOption) (*Processor, error) {
	if secret == "" {
		return nil, secretRequiredError()
	}
	if handler == nil {
		return nil, goerrors.New("webhooks: handler is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorCodeInvalidRequest)
	}

	p := &Processor{
		secret:    secret,
		tolerance: DefaultTolerance,
		ledger:    NewMemoryDeliveryLedger(),
		handler:   handler,
		policy:    retry.NewExponentialPolicy(),
		now:       time.Now,
	}
	for _, option := range options {
		option(p)
	}
	return p, nil
}

// Process authenticates a raw delivery and dispatches it exactly once.
// Replays of an already-reserved delivery id are acknowledged without
// invoking the handler again.
func (p *Processor) Process(ctx context.Context, payload []byte, header string) (Result, error) {
	event, err := p.verifier.ConstructEvent(payload, header, p.secret, p.tolerance)
	if err != nil {
		return Result{StatusCode: statusFor(err)}, err
	}

	deliveryID := event.ID
	if deliveryID == "" {
		sum := sha256.Sum256(payload)
		deliveryID = hex.EncodeToString(sum[:])
	}

	record, seen, err := p.ledger.Reserve(ctx, deliveryID, payload)
	if err != nil {
		return Result{DeliveryID: deliveryID, StatusCode: http.StatusInternalServerError},
			goerrors.Wrap(err, goerrors.CategoryOperation, "webhooks: reserving delivery").
				WithCode(http.StatusInternalServerError)
	}
	if seen {
		return Result{
			DeliveryID: deliveryID,
			Accepted:   true,
			Deduped:    true,
			StatusCode: http.StatusOK,
		}, nil
	}

	if err := p.handler.Handle(ctx, event); err != nil {
		nextAttemptAt := p.now().Add(p.policy.NextDelay(record.Attempts))
		if markErr := p.ledger.MarkRetry(ctx, deliveryID, err, nextAttemptAt); markErr != nil {
			err = goerrors.Wrap(markErr, goerrors.CategoryOperation, "webhooks: marking delivery for retry").
				WithCode(http.StatusInternalServerError)
		}
		return Result{DeliveryID: deliveryID, StatusCode: http.StatusInternalServerError}, err
	}

	if err := p.ledger.MarkProcessed(ctx, deliveryID); err != nil {
		return Result{DeliveryID: deliveryID, StatusCode: http.StatusInternalServerError},
			goerrors.Wrap(err, goerrors.CategoryOperation, "webhooks: marking delivery processed").
				WithCode(http.StatusInternalServerError)
	}

	return Result{DeliveryID: deliveryID, Accepted: true, StatusCode: http.StatusOK}, nil
}

func statusFor(err error) int {
	if code := core.StatusCode(err); code > 0 {
		return code
	}
	return http.StatusBadRequest
}
