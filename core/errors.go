package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Machine codes surfaced on every normalized error. HTTP error responses carry
// the server-supplied code verbatim; these cover everything produced locally.
const (
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeNetwork          = "NETWORK_ERROR"
	ErrorCodeInvalidResponse  = "INVALID_RESPONSE"
	ErrorCodeInvalidRequest   = "INVALID_REQUEST"
	ErrorCodeCancelled        = "REQUEST_CANCELLED"
	ErrorCodeUnknown          = "UNKNOWN_ERROR"
	ErrorCodeMalformedHeader  = "MALFORMED_HEADER"
	ErrorCodeStaleSignature   = "STALE_SIGNATURE"
	ErrorCodeClockSkew        = "CLOCK_SKEW"
	ErrorCodeInvalidSignature = "INVALID_SIGNATURE"
	ErrorCodeInvalidPayload   = "INVALID_PAYLOAD"
)

// CategoryForStatus maps an HTTP status to the go-errors category used when
// normalizing API error envelopes.
func CategoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusUnprocessableEntity:
		return goerrors.CategoryValidation
	case status >= 500:
		return goerrors.CategoryExternal
	case status >= 400:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

// TextCode extracts the machine code from a normalized error, or empty when
// the error is not a *goerrors.Error.
func TextCode(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	return strings.TrimSpace(richErr.TextCode)
}

// StatusCode extracts the numeric status from a normalized error; 0 covers
// transport-level failures and non-normalized errors alike.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return 0
	}
	return richErr.Code
}
