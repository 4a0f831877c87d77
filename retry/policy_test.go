package retry

import (
	"testing"
	"time"
)

func TestExponentialPolicyDelaySequence(t *testing.T) {
	policy := NewExponentialPolicy()

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second,
		10 * time.Second,
	}
	for i, want := range expected {
		attempt := i + 1
		if got := policy.NextDelay(attempt); got != want {
			t.Fatalf("expected delay %s before retry %d, got %s", want, attempt, got)
		}
	}
}

func TestExponentialPolicyZeroValuesFallBackToDefaults(t *testing.T) {
	policy := ExponentialPolicy{}
	if got := policy.NextDelay(1); got != time.Second {
		t.Fatalf("expected default initial delay, got %s", got)
	}
	if got := policy.NextDelay(20); got != 10*time.Second {
		t.Fatalf("expected default cap, got %s", got)
	}
}

func TestExponentialPolicyRetryableClassification(t *testing.T) {
	policy := NewExponentialPolicy()

	for _, status := range []int{0, 429, 500, 502, 503, 599} {
		if !policy.Retryable(status) {
			t.Fatalf("expected status %d to be retryable", status)
		}
	}
	for _, status := range []int{200, 204, 301, 400, 401, 403, 404, 409, 422, 600} {
		if policy.Retryable(status) {
			t.Fatalf("expected status %d to be terminal", status)
		}
	}
}
