package client

import (
	"net/url"
	"strings"
	"testing"

	"github.com/goliatone/go-crm-client/core"
)

func newResolveClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(core.Config{
		Credential: core.CredentialConfig{APIKey: "key_test"},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestResolveBuildsURLAgainstBaseOrigin(t *testing.T) {
	c := newResolveClient(t)

	resolved, err := c.resolve(RequestSpec{
		Method: "get",
		Path:   "/clients",
		Query: map[string]any{
			"status": "active",
			"page":   2,
		},
	})
	if err != nil {
		t.Fatalf("resolve spec: %v", err)
	}
	parsed, err := url.Parse(resolved.URL)
	if err != nil {
		t.Fatalf("parse resolved url: %v", err)
	}
	if parsed.Host != "api.crmhub.io" {
		t.Fatalf("expected default origin host, got %q", parsed.Host)
	}
	if parsed.Path != "/clients" {
		t.Fatalf("expected /clients path, got %q", parsed.Path)
	}
	if got := parsed.Query().Get("status"); got != "active" {
		t.Fatalf("expected status query, got %q", got)
	}
	if got := parsed.Query().Get("page"); got != "2" {
		t.Fatalf("expected numeric query serialized, got %q", got)
	}
}

func TestResolveOmitsAbsentQueryValues(t *testing.T) {
	c := newResolveClient(t)

	resolved, err := c.resolve(RequestSpec{
		Path: "invoices",
		Query: map[string]any{
			"client_id": nil,
			"status":    "",
		},
	})
	if err != nil {
		t.Fatalf("resolve spec: %v", err)
	}
	parsed, _ := url.Parse(resolved.URL)
	if _, present := parsed.Query()["client_id"]; present {
		t.Fatalf("expected nil query value omitted, got %q", parsed.RawQuery)
	}
	// Empty string is a value, not an absent parameter.
	if _, present := parsed.Query()["status"]; !present {
		t.Fatalf("expected empty-string query value kept, got %q", parsed.RawQuery)
	}
}

func TestResolveBaselineHeadersAndOverlay(t *testing.T) {
	c := newResolveClient(t)

	resolved, err := c.resolve(RequestSpec{
		Method: "POST",
		Path:   "/jobs",
		Body:   map[string]any{"title": "Install"},
		Headers: map[string]string{
			"accept":          "application/vnd.crmhub+json",
			"X-Partner-Token": "partner_1",
		},
	})
	if err != nil {
		t.Fatalf("resolve spec: %v", err)
	}
	if got := resolved.Headers["Authorization"]; got != "Bearer key_test" {
		t.Fatalf("expected bearer credential, got %q", got)
	}
	if got := resolved.Headers["Content-Type"]; got != "application/json" {
		t.Fatalf("expected json content type, got %q", got)
	}
	if got := resolved.Headers["Accept"]; got != "application/vnd.crmhub+json" {
		t.Fatalf("expected spec header to win on collision, got %q", got)
	}
	if got := resolved.Headers["X-Partner-Token"]; got != "partner_1" {
		t.Fatalf("expected extra header applied, got %q", got)
	}
	if strings.TrimSpace(resolved.Headers["X-Request-ID"]) == "" {
		t.Fatalf("expected generated correlation id header")
	}
	if string(resolved.Body) != `{"title":"Install"}` {
		t.Fatalf("expected serialized body, got %q", string(resolved.Body))
	}
}

func TestResolveLeavesBodyEmptyWhenAbsent(t *testing.T) {
	c := newResolveClient(t)

	resolved, err := c.resolve(RequestSpec{Method: "DELETE", Path: "/clients/cl_1"})
	if err != nil {
		t.Fatalf("resolve spec: %v", err)
	}
	if len(resolved.Body) != 0 {
		t.Fatalf("expected no body for DELETE, got %q", string(resolved.Body))
	}
}

func TestResolveRejectsUnsupportedMethod(t *testing.T) {
	c := newResolveClient(t)

	_, err := c.resolve(RequestSpec{Method: "TRACE", Path: "/clients"})
	if err == nil {
		t.Fatalf("expected unsupported method error")
	}
	if core.TextCode(err) != core.ErrorCodeInvalidRequest {
		t.Fatalf("expected %s, got %q", core.ErrorCodeInvalidRequest, core.TextCode(err))
	}
}
