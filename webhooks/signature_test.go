package webhooks

import (
	"testing"
	"time"

	"github.com/goliatone/go-crm-client/core"
)

const (
	testSecret    = "whsec_test"
	testTimestamp = int64(1706400000)
	testPayload   = `{"event":"client.created"}`
	// HMAC-SHA256(testSecret, "1706400000." + testPayload)
	testSignature = "e63a0c6936079f1c246b0c457213a575add33a32969f43e69da31fe1530091b1"
)

func frozenVerifier(unix int64) Verifier {
	return Verifier{Now: func() time.Time { return time.Unix(unix, 0) }}
}

func TestParseSignatureHeader(t *testing.T) {
	cases := []struct {
		name      string
		header    string
		timestamp int64
		signature string
		errCode   string
	}{
		{
			name:      "well formed",
			header:    "t=1706400000,v1=" + testSignature,
			timestamp: testTimestamp,
			signature: testSignature,
		},
		{
			name:      "whitespace tolerated",
			header:    " t=1706400000 , v1=" + testSignature + " ",
			timestamp: testTimestamp,
			signature: testSignature,
		},
		{
			name:      "unknown keys ignored",
			header:    "t=1706400000,v0=deadbeef,v1=" + testSignature,
			timestamp: testTimestamp,
			signature: testSignature,
		},
		{
			name:      "duplicate keys last wins",
			header:    "t=1,t=1706400000,v1=ffff,v1=" + testSignature,
			timestamp: testTimestamp,
			signature: testSignature,
		},
		{
			name:    "empty header",
			header:  "",
			errCode: core.ErrorCodeMalformedHeader,
		},
		{
			name:    "missing timestamp",
			header:  "v1=" + testSignature,
			errCode: core.ErrorCodeMalformedHeader,
		},
		{
			name:    "missing signature",
			header:  "t=1706400000",
			errCode: core.ErrorCodeMalformedHeader,
		},
		{
			name:    "non integer timestamp",
			header:  "t=yesterday,v1=" + testSignature,
			errCode: core.ErrorCodeMalformedHeader,
		},
		{
			name:    "part without separator",
			header:  "t=1706400000,garbage,v1=" + testSignature,
			errCode: core.ErrorCodeMalformedHeader,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSignatureHeader(tc.header)
			if tc.errCode != "" {
				if err == nil {
					t.Fatalf("expected parse error")
				}
				if got := core.TextCode(err); got != tc.errCode {
					t.Fatalf("expected %s, got %q", tc.errCode, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse header: %v", err)
			}
			if parsed.Timestamp != tc.timestamp {
				t.Fatalf("expected timestamp %d, got %d", tc.timestamp, parsed.Timestamp)
			}
			if parsed.Signature != tc.signature {
				t.Fatalf("expected signature %q, got %q", tc.signature, parsed.Signature)
			}
		})
	}
}

func TestComputeSignatureKnownVector(t *testing.T) {
	got := ComputeSignature([]byte(testPayload), testSecret, testTimestamp)
	if got != testSignature {
		t.Fatalf("expected %s, got %s", testSignature, got)
	}
}

func TestComputeSignatureSecondVector(t *testing.T) {
	payload := `{"id":"evt_1","event":"invoice.paid"}`
	got := ComputeSignature([]byte(payload), "whsec_demo", testTimestamp)
	want := "53ef64c129c10b4154f75d67a7b653a861535d5f5be81e6a73a85969bca7bfc3"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestVerifyRoundTrip(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=" + ComputeSignature([]byte(testPayload), testSecret, testTimestamp)

	parsed, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if parsed.Timestamp != testTimestamp {
		t.Fatalf("expected parsed timestamp, got %d", parsed.Timestamp)
	}
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=" + testSignature

	_, err := v.Verify([]byte(`{"event":"client.deleted"}`), header, testSecret, DefaultTolerance)
	if err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	flipped := "f" + testSignature[1:]
	header := "t=1706400000,v1=" + flipped

	_, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
	if err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=" + testSignature

	_, err := v.Verify([]byte(testPayload), header, "whsec_other", DefaultTolerance)
	if err == nil {
		t.Fatalf("expected signature mismatch")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
}

func TestVerifyRejectsTruncatedSignature(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=" + testSignature[:32]

	_, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
	if err == nil {
		t.Fatalf("expected length mismatch rejection")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
}

func TestVerifyRejectsNonHexSignature(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=zz" + testSignature[2:]

	_, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
	if err == nil {
		t.Fatalf("expected hex decode rejection")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidSignature {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidSignature, got)
	}
}

func TestVerifyFreshnessWindow(t *testing.T) {
	header := "t=1706400000,v1=" + testSignature

	t.Run("just inside tolerance", func(t *testing.T) {
		v := frozenVerifier(testTimestamp + 299)
		if _, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance); err != nil {
			t.Fatalf("expected acceptance inside the window, got %v", err)
		}
	})

	t.Run("exactly at tolerance", func(t *testing.T) {
		v := frozenVerifier(testTimestamp + 300)
		if _, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance); err != nil {
			t.Fatalf("expected acceptance at the boundary, got %v", err)
		}
	})

	t.Run("past tolerance", func(t *testing.T) {
		v := frozenVerifier(testTimestamp + 301)
		_, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
		if err == nil {
			t.Fatalf("expected stale rejection")
		}
		if got := core.TextCode(err); got != core.ErrorCodeStaleSignature {
			t.Fatalf("expected %s, got %q", core.ErrorCodeStaleSignature, got)
		}
	})

	t.Run("timestamp in the future", func(t *testing.T) {
		v := frozenVerifier(testTimestamp - 301)
		_, err := v.Verify([]byte(testPayload), header, testSecret, DefaultTolerance)
		if err == nil {
			t.Fatalf("expected clock skew rejection")
		}
		if got := core.TextCode(err); got != core.ErrorCodeClockSkew {
			t.Fatalf("expected %s, got %q", core.ErrorCodeClockSkew, got)
		}
	})

	t.Run("zero tolerance disables the check", func(t *testing.T) {
		v := frozenVerifier(testTimestamp + 100000)
		if _, err := v.Verify([]byte(testPayload), header, testSecret, 0); err != nil {
			t.Fatalf("expected freshness check disabled, got %v", err)
		}
	})
}

func TestVerifyRequiresSecret(t *testing.T) {
	v := frozenVerifier(testTimestamp)
	header := "t=1706400000,v1=" + testSignature

	_, err := v.Verify([]byte(testPayload), header, "", DefaultTolerance)
	if err == nil {
		t.Fatalf("expected secret requirement")
	}
	if got := core.TextCode(err); got != core.ErrorCodeInvalidRequest {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidRequest, got)
	}
}
