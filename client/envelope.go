package client

import (
	"encoding/json"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/core"
)

// Envelope is the wire wrapper around every API payload: {data, meta} for
// single resources, {data[], meta, pagination} for lists. Data stays opaque;
// resource semantics are the caller's business.
type Envelope struct {
	Data       json.RawMessage `json:"data,omitempty"`
	Meta       json.RawMessage `json:"meta,omitempty"`
	Pagination json.RawMessage `json:"pagination,omitempty"`
}

// DecodeData unmarshals the envelope's data payload into T.
func DecodeData[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, goerrors.Wrap(err, goerrors.CategoryOperation, "client: decode envelope data").
			WithTextCode(core.ErrorCodeInvalidResponse)
	}
	return out, nil
}

// FieldDetail is one entry of the server's field-level error detail list.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type apiErrorEnvelope struct {
	Error *apiErrorBody `json:"error"`
	Meta  *apiErrorMeta `json:"meta"`
}

type apiErrorBody struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []FieldDetail `json:"details"`
}

type apiErrorMeta struct {
	RequestID string `json:"request_id"`
}
