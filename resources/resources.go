// Package resources provides thin accessors for the hosted CRM collections.
// Payloads stay opaque; callers decode the shapes they care about from the
// response envelope.
package resources

import (
	"context"
	"net/http"
	"net/url"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crm-client/client"
	"github.com/goliatone/go-crm-client/core"
)

// Executor runs a resolved request with the full retry and error pipeline.
// *client.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, spec client.RequestSpec) (*client.Envelope, error)
}

// Service groups the collection accessors behind a single executor.
type Service struct {
	exec Executor
}

// New builds a Service over the given executor.
func New(exec Executor) *Service {
	return &Service{exec: exec}
}

// Clients accesses the /clients collection.
func (s *Service) Clients() *Collection {
	return &Collection{exec: s.exec, basePath: "/clients"}
}

// Invoices accesses the /invoices collection.
func (s *Service) Invoices() *Collection {
	return &Collection{exec: s.exec, basePath: "/invoices"}
}

// Jobs accesses the /jobs collection.
func (s *Service) Jobs() *Collection {
	return &Collection{exec: s.exec, basePath: "/jobs"}
}

// Collection exposes the standard list/get/create/update/delete operations
// for one resource path.
type Collection struct {
	exec     Executor
	basePath string
}

// List fetches a page of records. Query values pass through untyped; nil
// values are dropped before the URL is built.
func (c *Collection) List(ctx context.Context, query map[string]any) (*client.Envelope, error) {
	return c.exec.Execute(ctx, client.RequestSpec{
		Method: http.MethodGet,
		Path:   c.basePath,
		Query:  query,
	})
}

// Get fetches a single record by id.
func (c *Collection) Get(ctx context.Context, id string) (*client.Envelope, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, client.RequestSpec{Method: http.MethodGet, Path: path})
}

// Create posts a new record.
func (c *Collection) Create(ctx context.Context, body any) (*client.Envelope, error) {
	return c.exec.Execute(ctx, client.RequestSpec{
		Method: http.MethodPost,
		Path:   c.basePath,
		Body:   body,
	})
}

// Update replaces a record by id.
func (c *Collection) Update(ctx context.Context, id string, body any) (*client.Envelope, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, client.RequestSpec{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Delete removes a record by id.
func (c *Collection) Delete(ctx context.Context, id string) (*client.Envelope, error) {
	path, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.exec.Execute(ctx, client.RequestSpec{Method: http.MethodDelete, Path: path})
}

func (c *Collection) itemPath(id string) (string, error) {
	if id == "" {
		return "", goerrors.New("resources: record id is required", goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(core.ErrorCodeInvalidRequest)
	}
	return c.basePath + "/" + url.PathEscape(id), nil
}
