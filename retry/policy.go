package retry

import (
	"net/http"
	"time"
)

// Policy decides whether a failed attempt is worth repeating and how long to
// pause before the next submission. Implementations must be stateless so a
// single policy can serve concurrent calls.
type Policy interface {
	// Retryable classifies a completed attempt by status code. Status 0 stands
	// for transport-level failures (network error, timeout) and is retryable.
	Retryable(status int) bool
	// NextDelay returns the pause before retry n (1-based).
	NextDelay(attempt int) time.Duration
}

// ExponentialPolicy doubles the initial delay per retry up to a hard cap.
// No jitter: the executor applies the returned delay as a full-length pause.
type ExponentialPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

// NewExponentialPolicy returns the default policy: 1s initial, 10s cap.
func NewExponentialPolicy() ExponentialPolicy {
	return ExponentialPolicy{
		Initial: time.Second,
		Max:     10 * time.Second,
	}
}

func (p ExponentialPolicy) Retryable(status int) bool {
	if status == 0 {
		return true
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status < 600
}

func (p ExponentialPolicy) NextDelay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = 10 * time.Second
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

var _ Policy = ExponentialPolicy{}
