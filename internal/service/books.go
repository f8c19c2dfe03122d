package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// BookIndexer keeps a derived index in sync with confirmed book writes.
type BookIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}

// NoopBookIndexer is a no-op implementation for testing.
type NoopBookIndexer struct{}

// IndexBook is a no-op.
func (NoopBookIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// DeleteBook is a no-op.
func (NoopBookIndexer) DeleteBook(context.Context, string) error { return nil }

// bookRepository is the read-through view of the books collection. The remote
// store is authoritative; the cache and the index only ever receive documents
// the remote store returned.
type bookRepository struct {
	remote  *docstore.Collection[docstore.BookRecord]
	cache   *store.Store
	indexer BookIndexer
	logger  *slog.Logger
}

// get serves from the cache and falls back to the remote store on a miss.
func (r *bookRepository) get(ctx context.Context, id string) (*domain.Book, error) {
	if book, err := r.cache.GetBook(ctx, id); err == nil {
		return book, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		r.logger.Warn("cache read failed", "book_id", id, "error", err)
	}
	return r.fetch(ctx, id)
}

// fetch reads the authoritative copy and refreshes the cache. Read-modify-write
// always starts here.
func (r *bookRepository) fetch(ctx context.Context, id string) (*domain.Book, error) {
	rec, err := r.remote.Get(ctx, id)
	if err != nil {
		if docstore.IsNotFound(err) {
			r.evict(ctx, id)
		}
		return nil, remoteError(err, "book", id)
	}
	book := rec.Book()
	r.remember(ctx, book, false)
	return book, nil
}

// list returns remote books matching filter. A full listing also replaces the
// cache content.
func (r *bookRepository) list(ctx context.Context, filter docstore.Filter) ([]*domain.Book, error) {
	recs, err := r.remote.List(ctx, filter)
	if err != nil {
		return nil, remoteError(err, "books", "")
	}

	books := make([]*domain.Book, len(recs))
	for i, rec := range recs {
		books[i] = rec.Book()
	}

	if len(filter) == 0 {
		if err := r.cache.ReplaceBooks(ctx, books); err != nil {
			r.logger.Warn("cache refresh failed", "error", err)
		}
	} else {
		for _, b := range books {
			r.remember(ctx, b, false)
		}
	}
	return books, nil
}

// create stores a new book. The write is not abandoned when ctx is cancelled.
func (r *bookRepository) create(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	rec, err := r.remote.Create(context.WithoutCancel(ctx), docstore.NewBookRecord(book))
	if err != nil {
		r.logger.Error("book create failed", "title", book.Title, "error", err)
		return nil, remoteError(err, "book", "")
	}
	created := rec.Book()
	r.remember(ctx, created, true)
	return created, nil
}

// replace sends the full merged record.
func (r *bookRepository) replace(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	rec, err := r.remote.Replace(context.WithoutCancel(ctx), docstore.NewBookRecord(book))
	if err != nil {
		r.logger.Error("book update failed", "book_id", book.ID, "error", err)
		if docstore.IsNotFound(err) {
			r.evict(ctx, book.ID)
		}
		return nil, remoteError(err, "book", book.ID)
	}
	updated := rec.Book()
	r.remember(ctx, updated, true)
	return updated, nil
}

// remove deletes the remote document and then evicts local copies.
func (r *bookRepository) remove(ctx context.Context, id string) error {
	err := r.remote.Delete(context.WithoutCancel(ctx), id)
	if err != nil && !docstore.IsNotFound(err) {
		r.logger.Error("book delete failed", "book_id", id, "error", err)
		return remoteError(err, "book", id)
	}
	r.evict(ctx, id)
	return remoteError(err, "book", id)
}

// findCached resolves a cache index hit and confirms it against the remote
// store. It returns store.ErrNotFound when the cache has no usable hit.
func (r *bookRepository) findCached(ctx context.Context, lookup func() (*domain.Book, error), same func(*domain.Book) bool) (*domain.Book, error) {
	hit, err := lookup()
	if err != nil {
		return nil, store.ErrNotFound
	}
	book, err := r.fetch(ctx, hit.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if !same(book) {
		return nil, store.ErrNotFound
	}
	return book, nil
}

// remember caches a confirmed document. index also pushes it to the search
// index. Local failures are logged; the remote write already succeeded.
func (r *bookRepository) remember(ctx context.Context, book *domain.Book, index bool) {
	ctx = context.WithoutCancel(ctx)
	if err := r.cache.PutBook(ctx, book); err != nil {
		r.logger.Warn("cache write failed", "book_id", book.ID, "error", err)
	}
	if index {
		if err := r.indexer.IndexBook(ctx, book); err != nil {
			r.logger.Warn("index update failed", "book_id", book.ID, "error", err)
		}
	}
}

func (r *bookRepository) evict(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	if err := r.cache.DeleteBook(ctx, id); err != nil {
		r.logger.Warn("cache eviction failed", "book_id", id, "error", err)
	}
	if err := r.indexer.DeleteBook(ctx, id); err != nil {
		r.logger.Warn("index removal failed", "book_id", id, "error", err)
	}
}

