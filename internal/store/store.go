// Package store is the local read-through cache of server-confirmed documents.
// It holds no state of its own: every entry is a copy of a document the remote
// store returned, and any entry may be dropped at any time.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// Index names.
const (
	IndexISBN        = "isbn"
	IndexTitleAuthor = "title_author"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Books *Entity[domain.Book]
	Lists *Entity[domain.BookList]
}

// New opens the cache at path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	return open(opts, logger)
}

// NewInMemory opens a cache that lives only as long as the process.
func NewInMemory(logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{db: db, logger: logger}
	s.initBooks()
	s.initLists()

	if logger != nil {
		logger.Info("cache opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing cache")
	}
	return s.db.Close()
}

// Ping verifies the database still accepts reads.
func (s *Store) Ping(context.Context) error {
	if s.db.IsClosed() {
		return badger.ErrDBClosed
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Purge drops every cached entry.
func (s *Store) Purge() error {
	return s.db.DropAll()
}

func (s *Store) initBooks() {
	s.Books = NewEntity[domain.Book](s, prefixBook).
		WithIndexTransform(IndexISBN,
			func(b *domain.Book) []string {
				if key := domain.ISBNKey(b.ISBN); key != "" {
					return []string{key}
				}
				return nil
			},
			domain.ISBNKey,
		).
		WithIndex(IndexTitleAuthor, func(b *domain.Book) []string {
			if key := b.TitleAuthorKey(); key != "" {
				return []string{key}
			}
			return nil
		})
}

func (s *Store) initLists() {
	s.Lists = NewEntity[domain.BookList](s, prefixList)
}

// PutBook caches a confirmed book under its id.
func (s *Store) PutBook(ctx context.Context, book *domain.Book) error {
	return s.Books.Put(ctx, book.ID, book)
}

// GetBook returns a cached book.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.Books.Get(ctx, id)
}

// FindBookByISBN returns the cached book whose ISBN is equivalent to isbn.
// Temporary identifiers never match.
func (s *Store) FindBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	if domain.ISBNKey(isbn) == "" {
		return nil, ErrNotFound
	}
	return s.Books.GetByIndex(ctx, IndexISBN, isbn)
}

// FindBookByTitleAuthor returns the cached book with the same folded title and
// author as book.
func (s *Store) FindBookByTitleAuthor(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	key := book.TitleAuthorKey()
	if key == "" {
		return nil, ErrNotFound
	}
	return s.Books.GetByIndex(ctx, IndexTitleAuthor, key)
}

// DeleteBook evicts a book.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.Books.Delete(ctx, id)
}

// ReplaceBooks swaps the whole book cache for books, e.g. after a full remote
// listing.
func (s *Store) ReplaceBooks(ctx context.Context, books []*domain.Book) error {
	if err := s.Books.Clear(ctx); err != nil {
		return err
	}
	for _, b := range books {
		if err := s.Books.Put(ctx, b.ID, b); err != nil {
			return err
		}
	}
	return nil
}

// PutList caches a confirmed list.
func (s *Store) PutList(ctx context.Context, list *domain.BookList) error {
	return s.Lists.Put(ctx, list.ID, list)
}

// GetList returns a cached list.
func (s *Store) GetList(ctx context.Context, id string) (*domain.BookList, error) {
	return s.Lists.Get(ctx, id)
}

// DeleteList evicts a list.
func (s *Store) DeleteList(ctx context.Context, id string) error {
	return s.Lists.Delete(ctx, id)
}
