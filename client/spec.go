package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-crm-client/core"
	"github.com/goliatone/go-crm-client/transport"
)

// RequestSpec is the logical description of one API call. Query values that
// are nil are omitted from the final URL entirely; Headers overlay the
// client's baseline headers and win on key collision.
type RequestSpec struct {
	Method  string
	Path    string
	Query   map[string]any
	Body    any
	Headers map[string]string
}

var allowedMethods = map[string]struct{}{
	http.MethodGet:    {},
	http.MethodPost:   {},
	http.MethodPut:    {},
	http.MethodDelete: {},
	http.MethodPatch:  {},
}

// resolve finalizes URL, headers and serialized body before the first network
// attempt. Retries resubmit the returned value untouched, so anything
// generated here (the correlation id included) stays fixed across attempts.
func (c *Client) resolve(spec RequestSpec) (transport.Request, error) {
	method := strings.TrimSpace(strings.ToUpper(spec.Method))
	if method == "" {
		method = http.MethodGet
	}
	if _, ok := allowedMethods[method]; !ok {
		return transport.Request{}, specError(
			fmt.Sprintf("client: unsupported method %q", spec.Method),
			map[string]any{"method": spec.Method},
		)
	}

	base, err := url.Parse(strings.TrimSpace(c.config.BaseURL))
	if err != nil {
		return transport.Request{}, specError(
			"client: invalid base url",
			map[string]any{"base_url": c.config.BaseURL},
		)
	}
	joined := *base
	joined.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(strings.TrimSpace(spec.Path), "/")

	query := joined.Query()
	for key, value := range spec.Query {
		if strings.TrimSpace(key) == "" || value == nil {
			continue
		}
		query.Set(strings.TrimSpace(key), fmt.Sprint(value))
	}
	joined.RawQuery = query.Encode()

	headers := map[string]string{
		"Authorization": "Bearer " + c.config.Credential.Bearer(),
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"X-Request-ID":  uuid.NewString(),
	}
	for key, value := range spec.Headers {
		if strings.TrimSpace(key) == "" {
			continue
		}
		headers[http.CanonicalHeaderKey(strings.TrimSpace(key))] = value
	}

	var body []byte
	if spec.Body != nil {
		serialized, err := json.Marshal(spec.Body)
		if err != nil {
			return transport.Request{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "client: serialize request body").
				WithCode(http.StatusBadRequest).
				WithTextCode(core.ErrorCodeInvalidRequest)
		}
		body = serialized
	}

	return transport.Request{
		Method:  method,
		URL:     joined.String(),
		Headers: headers,
		Body:    body,
		Timeout: time.Duration(c.config.TimeoutMS) * time.Millisecond,
	}, nil
}

func specError(message string, metadata map[string]any) error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeInvalidRequest)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
