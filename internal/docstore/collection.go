package docstore

import (
	"context"
	"net/http"
)

// Filter selects documents by exact field values, e.g. {"status": "reading"}.
type Filter map[string]string

// Document is a wire record with a store-assigned id.
type Document interface {
	DocumentID() string
}

// Collection is a typed view of one remote collection.
type Collection[T Document] struct {
	client *Client
	name   string
}

// NewCollection returns a typed collection handle.
func NewCollection[T Document](client *Client, name string) *Collection[T] {
	return &Collection[T]{client: client, name: name}
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

// Create stores a new document. The store assigns the id and the returned
// document is the stored version.
func (c *Collection[T]) Create(ctx context.Context, doc T) (T, error) {
	var out T
	err := c.client.do(ctx, http.MethodPost, "create", c.name, "", nil, doc, &out)
	return out, err
}

// Get fetches one document. Missing documents return ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	if id == "" {
		return out, &Error{Op: "get", Collection: c.name, Err: ErrNotFound}
	}
	err := c.client.do(ctx, http.MethodGet, "get", c.name, id, nil, nil, &out)
	return out, err
}

// List returns every document matching filter. A nil filter lists the whole
// collection.
func (c *Collection[T]) List(ctx context.Context, filter Filter) ([]T, error) {
	var out []T
	if err := c.client.do(ctx, http.MethodGet, "list", c.name, "", filter, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace sends the full document as a replacement and returns the stored
// version. Callers read, merge and then replace; there is no partial update.
func (c *Collection[T]) Replace(ctx context.Context, doc T) (T, error) {
	var out T
	id := doc.DocumentID()
	if id == "" {
		return out, &Error{Op: "update", Collection: c.name, Err: ErrNotFound}
	}
	err := c.client.do(ctx, http.MethodPut, "update", c.name, id, nil, doc, &out)
	return out, err
}

// Delete removes a document.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if id == "" {
		return &Error{Op: "delete", Collection: c.name, Err: ErrNotFound}
	}
	return c.client.do(ctx, http.MethodDelete, "delete", c.name, id, nil, nil, nil)
}
