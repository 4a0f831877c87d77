// Package inbound exposes the webhook processor as an HTTP endpoint.
package inbound

import (
	"encoding/json"
	"io"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/core"
	"github.com/goliatone/go-crm-client/webhooks"
)

// DefaultSignatureHeader is the request header carrying the signature.
const DefaultSignatureHeader = "X-Crm-Signature"

const defaultMaxBodyBytes = 1 << 20

// Receiver is an http.Handler that authenticates and dispatches webhook
// deliveries through a Processor.
type Receiver struct {
	processor *webhooks.Processor
	header    string
	maxBody   int64
	logger    core.Logger
}

// ReceiverOption customizes a Receiver.
type ReceiverOption func(*Receiver)

// WithSignatureHeader overrides the header the signature is read from.
func WithSignatureHeader(name string) ReceiverOption {
	return func(r *Receiver) {
		if name != "" {
			r.header = name
		}
	}
}

// WithMaxBodyBytes caps the accepted request body size.
func WithMaxBodyBytes(limit int64) ReceiverOption {
	return func(r *Receiver) {
		if limit > 0 {
			r.maxBody = limit
		}
	}
}

// WithReceiverLogger attaches a logger for rejected and failed deliveries.
func WithReceiverLogger(logger core.Logger) ReceiverOption {
	return func(r *Receiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReceiver builds a Receiver around the given processor.
func NewReceiver(processor *webhooks.Processor, options ...ReceiverOption) (*Receiver, error) {
	if processor == nil {
		return nil, goerrors.New("inbound: processor is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorCodeInvalidRequest)
	}
	r := &Receiver{
		processor: processor,
		header:    DefaultSignatureHeader,
		maxBody:   defaultMaxBodyBytes,
	}
	for _, option := range options {
		option(r)
	}
	return r, nil
}

func (r *Receiver) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
			"error": map[string]any{"code": core.ErrorCodeInvalidRequest, "message": "method not allowed"},
		})
		return
	}

	payload, err := io.ReadAll(io.LimitReader(req.Body, r.maxBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": map[string]any{"code": core.ErrorCodeInvalidPayload, "message": "read request body"},
		})
		return
	}

	result, err := r.processor.Process(req.Context(), payload, req.Header.Get(r.header))
	if err != nil {
		status := result.StatusCode
		if status == 0 {
			status = http.StatusBadRequest
		}
		code := core.TextCode(err)
		if code == "" {
			code = core.ErrorCodeUnknown
		}
		if r.logger != nil {
			r.logger.Error("webhook delivery rejected", "error", err, "delivery_id", result.DeliveryID)
		}
		writeJSON(w, status, map[string]any{
			"error": map[string]any{"code": code, "message": "webhook delivery rejected"},
		})
		return
	}

	writeJSON(w, result.StatusCode, map[string]any{
		"received":    true,
		"delivery_id": result.DeliveryID,
		"deduped":     result.Deduped,
	})
}

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
