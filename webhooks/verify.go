package webhooks

import (
	"crypto/hmac"
	"encoding/hex"
	"time"
)

// DefaultTolerance bounds how old a signed timestamp may be before the
// delivery is rejected as a potential replay.
const DefaultTolerance = 300 * time.Second

// Verifier authenticates webhook payloads against a shared secret.
// The zero value uses the wall clock.
type Verifier struct {
	// Now is injected by tests to freeze the freshness window.
	Now func() time.Time
}

func (v Verifier) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Verify parses the signature header, enforces the freshness window, and
// compares digests in constant time. A non-positive tolerance disables the
// freshness check entirely; the digest comparison always runs.
func (v Verifier) Verify(payload []byte, header, secret string, tolerance time.Duration) (SignatureHeader, error) {
	if secret == "" {
		return SignatureHeader{}, secretRequiredError()
	}

	parsed, err := ParseSignatureHeader(header)
	if err != nil {
		return SignatureHeader{}, err
	}

	if tolerance > 0 {
		age := v.now().Unix() - parsed.Timestamp
		limit := int64(tolerance / time.Second)
		if age > limit {
			return SignatureHeader{}, staleSignatureError(age, limit)
		}
		if age < -limit {
			return SignatureHeader{}, clockSkewError(age, limit)
		}
	}

	expected := ComputeSignature(payload, secret, parsed.Timestamp)
	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return SignatureHeader{}, invalidSignatureError()
	}
	providedRaw, err := hex.DecodeString(parsed.Signature)
	if err != nil {
		return SignatureHeader{}, invalidSignatureError()
	}
	if len(providedRaw) != len(expectedRaw) || !hmac.Equal(providedRaw, expectedRaw) {
		return SignatureHeader{}, invalidSignatureError()
	}

	return parsed, nil
}
