package webhooks

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/core"
)

func malformedHeaderError(message string) error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeMalformedHeader)
}

func staleSignatureError(age int64, tolerance int64) error {
	return goerrors.New("webhooks: signature timestamp is outside the tolerance window", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ErrorCodeStaleSignature).
		WithMetadata(map[string]any{
			"age_seconds":       age,
			"tolerance_seconds": tolerance,
		})
}

func clockSkewError(age int64, tolerance int64) error {
	return goerrors.New("webhooks: signature timestamp is in the future", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ErrorCodeClockSkew).
		WithMetadata(map[string]any{
			"age_seconds":       age,
			"tolerance_seconds": tolerance,
		})
}

func invalidSignatureError() error {
	return goerrors.New("webhooks: signature does not match the payload", goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(core.ErrorCodeInvalidSignature)
}

func invalidPayloadError() error {
	return goerrors.New("webhooks: verified payload is not valid JSON", goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeInvalidPayload)
}

func secretRequiredError() error {
	return goerrors.New("webhooks: secret is required", goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeInvalidRequest)
}
