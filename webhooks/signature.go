package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// SignatureHeader is the parsed "t=<unixSeconds>,v1=<hex>" header value.
// It is derived fresh for every verification and never persisted.
type SignatureHeader struct {
	Timestamp int64
	Signature string
}

// ParseSignatureHeader parses the compact signature header. Unknown keys are
// ignored for forward compatibility; when a key repeats, the last occurrence
// wins, matching sender implementations that append rotated signatures.
func ParseSignatureHeader(header string) (SignatureHeader, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return SignatureHeader{}, malformedHeaderError("webhooks: signature header is empty")
	}

	var timestampRaw, signature string
	seenTimestamp := false
	seenSignature := false
	for _, part := range strings.Split(trimmed, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, found := strings.Cut(part, "=")
		if !found {
			return SignatureHeader{}, malformedHeaderError("webhooks: signature header is not a key=value list")
		}
		switch strings.TrimSpace(key) {
		case "t":
			timestampRaw = strings.TrimSpace(value)
			seenTimestamp = true
		case "v1":
			signature = strings.TrimSpace(value)
			seenSignature = true
		}
	}

	if !seenTimestamp {
		return SignatureHeader{}, malformedHeaderError("webhooks: signature header is missing the t component")
	}
	timestamp, err := strconv.ParseInt(timestampRaw, 10, 64)
	if err != nil {
		return SignatureHeader{}, malformedHeaderError("webhooks: signature timestamp is not an integer")
	}
	if !seenSignature || signature == "" {
		return SignatureHeader{}, malformedHeaderError("webhooks: signature header is missing the v1 component")
	}

	return SignatureHeader{Timestamp: timestamp, Signature: signature}, nil
}

// ComputeSignature derives the lowercase-hex HMAC-SHA256 digest over the
// canonical signed string "<timestamp>.<payload>". This must reproduce the
// sender's computation exactly; any deviation breaks all verification.
func ComputeSignature(payload []byte, secret string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte{'.'})
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
