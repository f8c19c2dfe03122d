package service

import (
	"context"
	"errors"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
)

// remoteError translates a document store failure into a domain error.
// Missing documents become NOT_FOUND; everything else is REMOTE_UNAVAILABLE.
func remoteError(err error, kind, id string) error {
	if err == nil {
		return nil
	}
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if docstore.IsNotFound(err) {
		return domainerrors.NotFoundf("%s %s not found", kind, id).WithCause(err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domainerrors.RemoteUnavailable("document store request failed", err)
}

// catalogError translates a provider failure into a domain error.
func catalogError(err error, query string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrNotFound):
		return domainerrors.NotFoundf("no catalog match for %q", query).WithCause(err)
	case errors.Is(err, catalog.ErrBadRequest):
		return domainerrors.Validationf("invalid catalog query %q", query).WithCause(err)
	case errors.Is(err, catalog.ErrUnknown):
		return domainerrors.Validation("unknown catalog provider").WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return domainerrors.RemoteUnavailable("catalog provider request failed", err)
	}
}
