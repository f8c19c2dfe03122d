package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors shared by the provider clients.
var (
	ErrNotFound    = errors.New("catalog: not found")
	ErrRateLimited = errors.New("catalog: rate limited by provider")
	ErrBadRequest  = errors.New("catalog: bad request")
	ErrServer      = errors.New("catalog: provider error")
	ErrUnknown     = errors.New("catalog: unknown provider")
)

// Error wraps a provider failure with operation context.
type Error struct {
	Provider ProviderName
	Op       string // "searchByTitle", "searchByISBN", "getDetails"
	Query    string
	Err      error
}

func (e *Error) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Provider, e.Op, e.Query, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError creates an Error with context.
func WrapError(provider ProviderName, op, query string, err error) error {
	return &Error{Provider: provider, Op: op, Query: query, Err: err}
}

// Provider is a book search service. Results are raw records; callers pass
// them through Normalize.
type Provider interface {
	Name() ProviderName
	SearchByTitle(ctx context.Context, title string, limit int) ([]Record, error)
	// SearchByISBN returns ErrNotFound when no edition matches.
	SearchByISBN(ctx context.Context, isbn string) (Record, error)
	GetDetails(ctx context.Context, id string) (Record, error)
}

// Registry resolves providers by name.
type Registry struct {
	providers map[ProviderName]Provider
	fallback  ProviderName
}

// NewRegistry creates a registry whose default is fallback.
func NewRegistry(fallback ProviderName, providers ...Provider) *Registry {
	r := &Registry{providers: make(map[ProviderName]Provider, len(providers)), fallback: fallback}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Get returns the named provider, or the default one when name is empty.
func (r *Registry) Get(name ProviderName) (Provider, error) {
	if name == "" {
		name = r.fallback
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return p, nil
}

// Default returns the provider used when a request names none.
func (r *Registry) Default() ProviderName {
	return r.fallback
}

// Names lists the registered providers.
func (r *Registry) Names() []ProviderName {
	out := make([]ProviderName, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
