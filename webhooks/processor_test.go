package webhooks

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/goliatone/go-crm-client/core"
)

type recordingHandler struct {
	events []Event
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, event Event) error {
	h.events = append(h.events, event)
	return h.err
}

func newTestProcessor(t *testing.T, handler Handler, options ...ProcessorOption) *Processor {
	t.Helper()
	options = append([]ProcessorOption{
		WithProcessorClock(func() time.Time { return time.Unix(testTimestamp, 0) }),
	}, options...)
	p, err := NewProcessor(testSecret, handler, options...)
	if err != nil {
		t.Fatalf("new processor: %v", err)
	}
	return p
}

func TestProcessDispatchesVerifiedDelivery(t *testing.T) {
	handler := &recordingHandler{}
	p := newTestProcessor(t, handler)

	payload := []byte(`{"id":"evt_1","event":"invoice.paid"}`)
	header := signedHeader(payload, testSecret, testTimestamp)

	result, err := p.Process(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !result.Accepted || result.Deduped {
		t.Fatalf("expected fresh acceptance, got %+v", result)
	}
	if result.DeliveryID != "evt_1" {
		t.Fatalf("expected event id as delivery id, got %q", result.DeliveryID)
	}
	if result.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", result.StatusCode)
	}
	if len(handler.events) != 1 || handler.events[0].Type != "invoice.paid" {
		t.Fatalf("expected handler invoked once, got %d events", len(handler.events))
	}

	record, err := p.ledger.Get(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("get delivery: %v", err)
	}
	if record.Status != DeliveryStatusProcessed {
		t.Fatalf("expected processed status, got %q", record.Status)
	}
}

func TestProcessDeduplicatesReplays(t *testing.T) {
	handler := &recordingHandler{}
	p := newTestProcessor(t, handler)

	payload := []byte(`{"id":"evt_1","event":"invoice.paid"}`)
	header := signedHeader(payload, testSecret, testTimestamp)

	if _, err := p.Process(context.Background(), payload, header); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	result, err := p.Process(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}
	if !result.Accepted || !result.Deduped {
		t.Fatalf("expected deduped acknowledgement, got %+v", result)
	}
	if len(handler.events) != 1 {
		t.Fatalf("expected handler invoked once across replays, got %d", len(handler.events))
	}
}

func TestProcessDerivesDeliveryIDFromPayload(t *testing.T) {
	handler := &recordingHandler{}
	p := newTestProcessor(t, handler)

	payload := []byte(`{"event":"client.created"}`)
	header := signedHeader(payload, testSecret, testTimestamp)

	first, err := p.Process(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if first.DeliveryID == "" {
		t.Fatalf("expected derived delivery id")
	}

	second, err := p.Process(context.Background(), payload, header)
	if err != nil {
		t.Fatalf("replayed delivery: %v", err)
	}
	if second.DeliveryID != first.DeliveryID {
		t.Fatalf("expected stable derived id, got %q then %q", first.DeliveryID, second.DeliveryID)
	}
	if !second.Deduped {
		t.Fatalf("expected identical payload deduplicated")
	}
}

func TestProcessMarksFailedHandlerForRetry(t *testing.T) {
	handlerErr := errors.New("downstream unavailable")
	handler := &recordingHandler{err: handlerErr}
	p := newTestProcessor(t, handler)

	payload := []byte(`{"id":"evt_5","event":"job.completed"}`)
	header := signedHeader(payload, testSecret, testTimestamp)

	result, err := p.Process(context.Background(), payload, header)
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error surfaced, got %v", err)
	}
	if result.Accepted {
		t.Fatalf("expected failed delivery not accepted")
	}
	if result.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", result.StatusCode)
	}

	record, getErr := p.ledger.Get(context.Background(), "evt_5")
	if getErr != nil {
		t.Fatalf("get delivery: %v", getErr)
	}
	if record.Status != DeliveryStatusRetryReady {
		t.Fatalf("expected retry_ready status, got %q", record.Status)
	}
	if record.LastError != "downstream unavailable" {
		t.Fatalf("expected cause recorded, got %q", record.LastError)
	}
	wantNext := time.Unix(testTimestamp, 0).Add(time.Second)
	if !record.NextAttemptAt.Equal(wantNext) {
		t.Fatalf("expected first retry one second out, got %v", record.NextAttemptAt)
	}
}

func TestProcessRejectsBadSignatureWithoutLedgerWrite(t *testing.T) {
	handler := &recordingHandler{}
	p := newTestProcessor(t, handler)

	payload := []byte(`{"id":"evt_7","event":"invoice.paid"}`)
	header := "t=1706400000,v1=" + testSignature

	result, err := p.Process(context.Background(), payload, header)
	if err == nil {
		t.Fatalf("expected signature rejection")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
	if result.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", result.StatusCode)
	}
	if len(handler.events) != 0 {
		t.Fatalf("expected handler never invoked")
	}
	if _, getErr := p.ledger.Get(context.Background(), "evt_7"); getErr == nil {
		t.Fatalf("expected no ledger record for rejected delivery")
	}
}

func TestNewProcessorValidatesInputs(t *testing.T) {
	if _, err := NewProcessor("", &recordingHandler{}); err == nil {
		t.Fatalf("expected secret requirement")
	}
	if _, err := NewProcessor(testSecret, nil); err == nil {
		t.Fatalf("expected handler requirement")
	}
}
