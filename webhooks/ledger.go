package webhooks

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// MemoryDeliveryLedger keeps delivery state in process memory. Suitable for
// tests and single-instance receivers; use the SQL-backed ledger when
// deliveries must survive restarts or span instances.
type MemoryDeliveryLedger struct {
	mu      sync.Mutex
	records map[string]*DeliveryRecord
	now     func() time.Time
}

// NewMemoryDeliveryLedger builds an empty in-memory ledger.
func NewMemoryDeliveryLedger() *MemoryDeliveryLedger {
	return &MemoryDeliveryLedger{
		records: map[string]*DeliveryRecord{},
		now:     time.Now,
	}
}

func (l *MemoryDeliveryLedger) Reserve(_ context.Context, deliveryID string, payload []byte) (DeliveryRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, found := l.records[deliveryID]; found {
		existing.Attempts++
		existing.UpdatedAt = l.now()
		return *existing, true, nil
	}

	record := &DeliveryRecord{
		DeliveryID: deliveryID,
		Status:     DeliveryStatusPending,
		Attempts:   1,
		Payload:    append([]byte(nil), payload...),
		ReceivedAt: l.now(),
		UpdatedAt:  l.now(),
	}
	l.records[deliveryID] = record
	return *record, false, nil
}

func (l *MemoryDeliveryLedger) Get(_ context.Context, deliveryID string) (DeliveryRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, found := l.records[deliveryID]
	if !found {
		return DeliveryRecord{}, goerrors.New("webhooks: delivery not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"delivery_id": deliveryID})
	}
	return *record, nil
}

func (l *MemoryDeliveryLedger) MarkProcessed(_ context.Context, deliveryID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, found := l.records[deliveryID]
	if !found {
		return goerrors.New("webhooks: delivery not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"delivery_id": deliveryID})
	}
	record.Status = DeliveryStatusProcessed
	record.LastError = ""
	record.NextAttemptAt = time.Time{}
	record.UpdatedAt = l.now()
	return nil
}

func (l *MemoryDeliveryLedger) MarkRetry(_ context.Context, deliveryID string, cause error, nextAttemptAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, found := l.records[deliveryID]
	if !found {
		return goerrors.New("webhooks: delivery not found", goerrors.CategoryNotFound).
			WithMetadata(map[string]any{"delivery_id": deliveryID})
	}
	record.Status = DeliveryStatusRetryReady
	if cause != nil {
		record.LastError = cause.Error()
	}
	record.NextAttemptAt = nextAttemptAt
	record.UpdatedAt = l.now()
	return nil
}
