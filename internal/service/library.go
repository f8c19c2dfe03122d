package service

import (
	"context"
	"errors"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/store"
)

// BookRef points at a book either by library id or by a catalog candidate
// that may not be in the library yet.
type BookRef struct {
	ID        string
	Candidate *domain.Book
}

// ByID references a library book.
func ByID(id string) BookRef {
	return BookRef{ID: id}
}

// ByCandidate references a catalog result.
func ByCandidate(b *domain.Book) BookRef {
	return BookRef{Candidate: b}
}

func (r BookRef) valid() bool {
	return r.ID != "" || r.Candidate != nil
}

// BookFilter narrows a library listing.
type BookFilter struct {
	Status   domain.Status
	Favorite *bool
}

// ProgressResult is the outcome of a progress update.
type ProgressResult struct {
	Book    *domain.Book
	Change  domain.ProgressChange
	Session *domain.ReadingSession // nil when the page did not advance
}

// LibraryService owns the book lifecycle: it resolves book references,
// applies transitions and persists them by read-modify-write.
type LibraryService struct {
	books         *bookRepository
	sessions      *docstore.Collection[docstore.SessionRecord]
	defaultStatus domain.Status
	logger        *slog.Logger
	now           func() time.Time
}

// NewLibraryService creates a new library service. defaultStatus applies to
// books added without an explicit status.
func NewLibraryService(remote *docstore.Store, cache *store.Store, indexer BookIndexer, defaultStatus domain.Status, logger *slog.Logger) *LibraryService {
	if indexer == nil {
		indexer = NoopBookIndexer{}
	}
	if defaultStatus != domain.StatusToRead {
		defaultStatus = domain.StatusWishlist
	}
	return &LibraryService{
		books: &bookRepository{
			remote:  remote.Books,
			cache:   cache,
			indexer: indexer,
			logger:  logger,
		},
		sessions:      remote.Sessions,
		defaultStatus: defaultStatus,
		logger:        logger,
		now:           time.Now,
	}
}

// EnsureExists resolves ref to a stored book, creating it from the candidate
// when nothing matches. It reports whether a new record was created.
//
// Candidates match an existing book by equivalent ISBN, else by folded title
// and author, else by the id they carry. A match whose ISBN is temporary is
// upgraded with the candidate's real ISBN and missing catalog fields.
func (s *LibraryService) EnsureExists(ctx context.Context, ref BookRef) (*domain.Book, bool, error) {
	return s.ensure(ctx, ref, "")
}

// ensure is EnsureExists with the status a newly created book starts in.
func (s *LibraryService) ensure(ctx context.Context, ref BookRef, status domain.Status) (*domain.Book, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if !ref.valid() {
		return nil, false, domainerrors.Validation("a book id or catalog candidate is required")
	}
	if ref.Candidate == nil {
		book, err := s.books.fetch(ctx, ref.ID)
		return book, false, err
	}

	now := s.now()
	candidate := catalog.NormalizeAt(catalog.Canonical{Book: *ref.Candidate}, now)
	candidate.ID = firstNonEmpty(ref.ID, ref.Candidate.ID)

	existing, err := s.findExisting(ctx, &candidate)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		book, err := s.upgrade(ctx, existing, &candidate)
		return book, false, err
	}

	book := s.newLibraryBook(&candidate, now)
	if status != "" {
		if err := applyStatus(book, status, now); err != nil {
			return nil, false, err
		}
	}
	created, err := s.books.create(ctx, book)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("book added to library",
		"book_id", created.ID,
		"title", created.Title,
		"isbn", created.ISBN,
		"status", created.Status,
	)
	return created, true, nil
}

// AddToLibrary commits a catalog candidate to the library. A non-empty status
// applies through the matching transition, in the same write when the book is
// new.
func (s *LibraryService) AddToLibrary(ctx context.Context, candidate *domain.Book, status domain.Status) (*domain.Book, bool, error) {
	if candidate == nil {
		return nil, false, domainerrors.Validation("book is required")
	}
	if status != "" && !status.Valid() {
		return nil, false, domainerrors.Validationf("unknown status %q", status)
	}

	book, created, err := s.ensure(ctx, ByCandidate(candidate), status)
	if err != nil {
		return nil, false, err
	}
	if created || status == "" || book.Status == status {
		return book, created, nil
	}

	if err := applyStatus(book, status, s.now()); err != nil {
		return nil, false, err
	}
	book, err = s.books.replace(ctx, book)
	return book, created, err
}

// GetBook returns a library book, serving from the cache when possible.
func (s *LibraryService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	if id == "" {
		return nil, domainerrors.Validation("book id is required")
	}
	return s.books.get(ctx, id)
}

// ListBooks returns the library, optionally filtered by status and favorite
// flag. Filtering happens in the remote store.
func (s *LibraryService) ListBooks(ctx context.Context, filter BookFilter) ([]*domain.Book, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domainerrors.Validationf("unknown status %q", filter.Status)
	}
	books, err := s.books.list(ctx, docstore.BookFilter(filter.Status, filter.Favorite))
	if err != nil {
		s.logger.Warn("library listing failed", "error", err)
		return nil, err
	}
	slices.SortStableFunc(books, func(a, b *domain.Book) int {
		return b.DateAdded.Compare(a.DateAdded)
	})
	return books, nil
}

// SetStatus moves a book to status. Reading and read route through
// StartReading and Finish so their side effects apply.
func (s *LibraryService) SetStatus(ctx context.Context, ref BookRef, status domain.Status) (*domain.Book, error) {
	if !status.Valid() {
		return nil, domainerrors.Validationf("unknown status %q", status)
	}
	return s.mutate(ctx, ref, "status changed", func(b *domain.Book, now time.Time) (bool, error) {
		if b.Status == status && status != domain.StatusReading {
			return false, nil
		}
		return true, applyStatus(b, status, now)
	})
}

// StartReading moves a book to reading. Finished books and books with
// progress start over from page zero.
func (s *LibraryService) StartReading(ctx context.Context, ref BookRef) (*domain.Book, error) {
	return s.mutate(ctx, ref, "started reading", func(b *domain.Book, now time.Time) (bool, error) {
		b.StartReading(now)
		return true, nil
	})
}

// Finish marks a book read.
func (s *LibraryService) Finish(ctx context.Context, ref BookRef) (*domain.Book, error) {
	return s.mutate(ctx, ref, "finished book", func(b *domain.Book, now time.Time) (bool, error) {
		b.Finish(now)
		return true, nil
	})
}

// ToggleFavorite flips the favorite flag. Favoriting a catalog candidate adds
// it to the library first.
func (s *LibraryService) ToggleFavorite(ctx context.Context, ref BookRef) (*domain.Book, error) {
	return s.mutate(ctx, ref, "favorite toggled", func(b *domain.Book, _ time.Time) (bool, error) {
		b.ToggleFavorite()
		return true, nil
	})
}

// UpdateProgress records the current page. Decreases are rejected before any
// write. A page advance appends a reading session after the book is saved;
// the two writes are not atomic.
func (s *LibraryService) UpdateProgress(ctx context.Context, ref BookRef, page int, notes string) (*ProgressResult, error) {
	if page < 0 {
		return nil, domainerrors.Validationf("page %d must not be negative", page).WithCause(domain.ErrPageOutOfRange)
	}
	if ref.Candidate != nil && ref.Candidate.PageCount > 0 && page > ref.Candidate.PageCount {
		return nil, domainerrors.Validationf("page %d exceeds page count %d", page, ref.Candidate.PageCount).WithCause(domain.ErrPageOutOfRange)
	}

	book, _, err := s.EnsureExists(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := s.now()
	change, err := book.ApplyProgress(page, now)
	if err != nil {
		s.logger.Info("progress update rejected", "book_id", book.ID, "page", page, "current_page", book.CurrentPage, "error", err)
		return nil, err
	}
	if !change.Advanced() {
		return &ProgressResult{Book: book, Change: change}, nil
	}

	saved, err := s.books.replace(ctx, book)
	if err != nil {
		return nil, err
	}
	result := &ProgressResult{Book: saved, Change: change}

	session, _ := domain.NewReadingSession(saved.ID, change, notes, now)
	rec, err := s.sessions.Create(context.WithoutCancel(ctx), docstore.NewSessionRecord(session))
	if err != nil {
		s.logger.Error("reading session not recorded",
			"book_id", saved.ID,
			"start_page", change.StartPage,
			"end_page", change.EndPage,
			"error", err,
		)
		return result, remoteError(err, "session", "")
	}
	result.Session = rec.Session()

	s.logger.Info("progress updated",
		"book_id", saved.ID,
		"start_page", change.StartPage,
		"end_page", change.EndPage,
		"finished", change.Finished,
	)
	return result, nil
}

// RemoveBook deletes a book. Lists that reference it keep the dangling id;
// list resolution drops it.
func (s *LibraryService) RemoveBook(ctx context.Context, id string) error {
	if id == "" {
		return domainerrors.Validation("book id is required")
	}
	if err := s.books.remove(ctx, id); err != nil {
		return err
	}
	s.logger.Info("book removed from library", "book_id", id)
	return nil
}

// Sessions returns the reading history of a book, oldest first.
func (s *LibraryService) Sessions(ctx context.Context, bookID string) ([]*domain.ReadingSession, error) {
	if bookID == "" {
		return nil, domainerrors.Validation("book id is required")
	}
	recs, err := s.sessions.List(ctx, docstore.Filter{"bookId": bookID})
	if err != nil {
		return nil, remoteError(err, "sessions", bookID)
	}
	out := make([]*domain.ReadingSession, len(recs))
	for i, rec := range recs {
		out[i] = rec.Session()
	}
	slices.SortStableFunc(out, func(a, b *domain.ReadingSession) int {
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// AllSessions returns every recorded session.
func (s *LibraryService) AllSessions(ctx context.Context) ([]*domain.ReadingSession, error) {
	recs, err := s.sessions.List(ctx, nil)
	if err != nil {
		return nil, remoteError(err, "sessions", "")
	}
	out := make([]*domain.ReadingSession, len(recs))
	for i, rec := range recs {
		out[i] = rec.Session()
	}
	return out, nil
}

// LookupCached reports the library id of a book matching candidate using only
// the local cache. It never calls the remote store.
func (s *LibraryService) LookupCached(ctx context.Context, candidate *domain.Book) string {
	if b, err := s.books.cache.FindBookByISBN(ctx, candidate.ISBN); err == nil {
		return b.ID
	}
	if b, err := s.books.cache.FindBookByTitleAuthor(ctx, candidate); err == nil {
		return b.ID
	}
	return ""
}

// mutate is the read-modify-write skeleton shared by the transitions. fn
// reports whether the book changed; unchanged books are not written.
func (s *LibraryService) mutate(ctx context.Context, ref BookRef, event string, fn func(*domain.Book, time.Time) (bool, error)) (*domain.Book, error) {
	book, _, err := s.EnsureExists(ctx, ref)
	if err != nil {
		return nil, err
	}

	changed, err := fn(book, s.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return book, nil
	}

	saved, err := s.books.replace(ctx, book)
	if err != nil {
		return nil, err
	}
	s.logger.Info(event, "book_id", saved.ID, "status", saved.Status, "favorite", saved.IsFavorite)
	return saved, nil
}

// findExisting applies the duplicate rule against the library: equivalent
// ISBN, then folded title and author, then the candidate's own id. Each rule
// is settled, cache index first and then the remote listing, before the next
// one is tried. Temporary ISBNs never match.
func (s *LibraryService) findExisting(ctx context.Context, candidate *domain.Book) (*domain.Book, error) {
	var (
		remote []*domain.Book
		listed bool
	)
	listRemote := func() ([]*domain.Book, error) {
		if listed {
			return remote, nil
		}
		books, err := s.books.list(ctx, nil)
		if err != nil {
			return nil, err
		}
		remote, listed = books, true
		return remote, nil
	}

	type rule struct {
		ok     bool
		cached func() (*domain.Book, error)
		same   func(*domain.Book) bool
	}
	key := candidate.TitleAuthorKey()
	rules := []rule{
		{
			ok:     candidate.ISBN != "" && !domain.IsTemporaryISBN(candidate.ISBN),
			cached: func() (*domain.Book, error) { return s.books.cache.FindBookByISBN(ctx, candidate.ISBN) },
			same:   func(b *domain.Book) bool { return domain.SameISBN(b.ISBN, candidate.ISBN) },
		},
		{
			ok:     key != "",
			cached: func() (*domain.Book, error) { return s.books.cache.FindBookByTitleAuthor(ctx, candidate) },
			same:   func(b *domain.Book) bool { return b.TitleAuthorKey() == key },
		},
		{
			ok:     candidate.ID != "",
			cached: func() (*domain.Book, error) { return s.books.cache.GetBook(ctx, candidate.ID) },
			same:   func(b *domain.Book) bool { return b.ID == candidate.ID },
		},
	}

	for _, r := range rules {
		if !r.ok {
			continue
		}
		hit, err := s.books.findCached(ctx, r.cached, r.same)
		if err == nil {
			return hit, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		books, err := listRemote()
		if err != nil {
			return nil, err
		}
		if i := slices.IndexFunc(books, r.same); i >= 0 {
			return books[i], nil
		}
	}
	return nil, nil
}

// upgrade fills catalog gaps of an existing book from a matching candidate
// and replaces a temporary ISBN with a real one. It writes only on change.
func (s *LibraryService) upgrade(ctx context.Context, existing, candidate *domain.Book) (*domain.Book, error) {
	before := *existing
	existing.MergeCatalog(candidate, s.now())
	if domain.IsTemporaryISBN(existing.ISBN) && candidate.ISBN != "" && !domain.IsTemporaryISBN(candidate.ISBN) {
		existing.ISBN = candidate.ISBN
	}
	if reflect.DeepEqual(before, *existing) {
		return existing, nil
	}

	s.logger.Info("upgrading library book from catalog data", "book_id", existing.ID, "isbn", existing.ISBN)
	return s.books.replace(ctx, existing)
}

// newLibraryBook prepares a candidate for its first write: no id, fresh
// tracking fields and the configured default status.
func (s *LibraryService) newLibraryBook(candidate *domain.Book, now time.Time) *domain.Book {
	b := *candidate
	b.ID = ""
	b.Status = s.defaultStatus
	b.CurrentPage = 0
	b.ProgressPercent = 0
	b.IsFavorite = false
	b.DateAdded = now
	b.LastReadAt = nil
	b.FinishedAt = nil
	return &b
}

// applyStatus performs the transition that reaches status.
func applyStatus(b *domain.Book, status domain.Status, now time.Time) error {
	switch status {
	case domain.StatusReading:
		b.StartReading(now)
		return nil
	case domain.StatusRead:
		b.Finish(now)
		return nil
	default:
		return b.SetStatus(status)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, domainerrors.ErrNotFound)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
