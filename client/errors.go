package client

import (
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/core"
)

func timeoutError(cause error, timeout time.Duration) error {
	return goerrors.Wrap(cause, goerrors.CategoryExternal, "client: request deadline exceeded").
		WithCode(0).
		WithTextCode(core.ErrorCodeTimeout).
		WithMetadata(map[string]any{"timeout_ms": timeout.Milliseconds()})
}

func cancelledError(cause error) error {
	return goerrors.Wrap(cause, goerrors.CategoryOperation, "client: request cancelled by caller").
		WithCode(0).
		WithTextCode(core.ErrorCodeCancelled)
}

func invalidResponseError(status int) error {
	return goerrors.New("client: response body is not valid JSON", goerrors.CategoryExternal).
		WithCode(status).
		WithTextCode(core.ErrorCodeInvalidResponse).
		WithMetadata(map[string]any{"status_code": status})
}

// apiError normalizes a non-2xx error envelope. Missing fields fall back to
// UNKNOWN_ERROR / "Unknown error"; the server code passes through verbatim.
func apiError(status int, envelope *apiErrorEnvelope) error {
	code := core.ErrorCodeUnknown
	message := "Unknown error"
	metadata := map[string]any{}

	if envelope != nil && envelope.Error != nil {
		if value := strings.TrimSpace(envelope.Error.Code); value != "" {
			code = value
		}
		if value := strings.TrimSpace(envelope.Error.Message); value != "" {
			message = value
		}
		if len(envelope.Error.Details) > 0 {
			metadata["details"] = envelope.Error.Details
		}
	}
	if envelope != nil && envelope.Meta != nil {
		if value := strings.TrimSpace(envelope.Meta.RequestID); value != "" {
			metadata["request_id"] = value
		}
	}

	err := goerrors.New(message, core.CategoryForStatus(status)).
		WithCode(status).
		WithTextCode(code)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
