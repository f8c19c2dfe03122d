package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pagetrail/pagetrail-server/internal/color"
	"github.com/pagetrail/pagetrail-server/internal/docstore"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/store"
	"github.com/pagetrail/pagetrail-server/internal/validation"
)

// maxConcurrentLookups bounds the book lookups ListBooks runs at once.
const maxConcurrentLookups = 8

// CreateListInput describes a new list.
type CreateListInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,listcolor"`
	Icon        string `json:"icon" validate:"max=50"`
}

// UpdateListInput carries the fields to change. Nil fields are kept.
type UpdateListInput struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Color       *string `json:"color" validate:"omitempty,listcolor"`
	Icon        *string `json:"icon" validate:"omitempty,max=50"`
}

// ListService maintains book lists and their membership.
type ListService struct {
	remote    *docstore.Collection[docstore.ListRecord]
	cache     *store.Store
	library   *LibraryService
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewListService creates a new list service.
func NewListService(remote *docstore.Store, cache *store.Store, library *LibraryService, logger *slog.Logger) *ListService {
	return &ListService{
		remote:    remote.Lists,
		cache:     cache,
		library:   library,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// CreateList creates an empty list.
func (s *ListService) CreateList(ctx context.Context, in CreateListInput) (*domain.BookList, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domainerrors.Validation("list name cannot be empty")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	if in.Color == "" {
		in.Color = color.ForList(name)
	}

	now := s.now()
	list := &domain.BookList{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Color:       in.Color,
		Icon:        in.Icon,
		BookIDs:     []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	rec, err := s.remote.Create(context.WithoutCancel(ctx), docstore.NewListRecord(list))
	if err != nil {
		s.logger.Error("list create failed", "name", name, "error", err)
		return nil, remoteError(err, "list", "")
	}
	created := rec.List()
	s.remember(ctx, created)

	s.logger.Info("list created", "list_id", created.ID, "name", created.Name)
	return created, nil
}

// GetList returns a list, serving from the cache when possible.
func (s *ListService) GetList(ctx context.Context, id string) (*domain.BookList, error) {
	if id == "" {
		return nil, domainerrors.Validation("list id is required")
	}
	if list, err := s.cache.GetList(ctx, id); err == nil {
		return list, nil
	}
	return s.fetch(ctx, id)
}

// ListLists returns every list, most recently updated first.
func (s *ListService) ListLists(ctx context.Context) ([]*domain.BookList, error) {
	recs, err := s.remote.List(ctx, nil)
	if err != nil {
		return nil, remoteError(err, "lists", "")
	}
	out := make([]*domain.BookList, len(recs))
	for i, rec := range recs {
		out[i] = rec.List()
		s.remember(ctx, out[i])
	}
	slices.SortStableFunc(out, func(a, b *domain.BookList) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

// UpdateList changes list metadata.
func (s *ListService) UpdateList(ctx context.Context, id string, in UpdateListInput) (*domain.BookList, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domainerrors.Validation("list name cannot be empty")
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(l *domain.BookList) bool {
		changed := false
		set := func(dst *string, src *string, trim bool) {
			if src == nil {
				return
			}
			v := *src
			if trim {
				v = strings.TrimSpace(v)
			}
			if *dst != v {
				*dst = v
				changed = true
			}
		}
		set(&l.Name, in.Name, true)
		set(&l.Description, in.Description, true)
		set(&l.Color, in.Color, false)
		set(&l.Icon, in.Icon, false)
		if changed {
			l.UpdatedAt = s.now()
		}
		return changed
	})
}

// DeleteList removes a list. Its books stay in the library.
func (s *ListService) DeleteList(ctx context.Context, id string) error {
	if id == "" {
		return domainerrors.Validation("list id is required")
	}
	err := s.remote.Delete(context.WithoutCancel(ctx), id)
	if err != nil && !docstore.IsNotFound(err) {
		s.logger.Error("list delete failed", "list_id", id, "error", err)
		return remoteError(err, "list", id)
	}
	if cacheErr := s.cache.DeleteList(context.WithoutCancel(ctx), id); cacheErr != nil {
		s.logger.Warn("cache eviction failed", "list_id", id, "error", cacheErr)
	}
	if err != nil {
		return remoteError(err, "list", id)
	}
	s.logger.Info("list deleted", "list_id", id)
	return nil
}

// AddBook appends a library book to a list. Adding a book already present
// changes nothing and sends no write.
func (s *ListService) AddBook(ctx context.Context, listID, bookID string) (*domain.BookList, bool, error) {
	if listID == "" || bookID == "" {
		return nil, false, domainerrors.Validation("list id and book id are required")
	}
	if _, err := s.library.GetBook(ctx, bookID); err != nil {
		return nil, false, err
	}

	added := false
	list, err := s.mutate(ctx, listID, func(l *domain.BookList) bool {
		added = l.AddBook(bookID, s.now())
		return added
	})
	if err != nil {
		return nil, false, err
	}
	if added {
		s.logger.Info("book added to list", "list_id", listID, "book_id", bookID)
	}
	return list, added, nil
}

// RemoveBook takes a book off a list. Removing an absent book changes nothing.
func (s *ListService) RemoveBook(ctx context.Context, listID, bookID string) (*domain.BookList, bool, error) {
	if listID == "" || bookID == "" {
		return nil, false, domainerrors.Validation("list id and book id are required")
	}

	removed := false
	list, err := s.mutate(ctx, listID, func(l *domain.BookList) bool {
		removed = l.RemoveBook(bookID, s.now())
		return removed
	})
	if err != nil {
		return nil, false, err
	}
	if removed {
		s.logger.Info("book removed from list", "list_id", listID, "book_id", bookID)
	}
	return list, removed, nil
}

// AddToListFromCatalog commits a catalog candidate to the library and adds it to the
// list. The two steps are not atomic: if the list write fails the book stays
// in the library.
func (s *ListService) AddToListFromCatalog(ctx context.Context, listID string, candidate *domain.Book) (*domain.BookList, *domain.Book, error) {
	if listID == "" {
		return nil, nil, domainerrors.Validation("list id is required")
	}
	book, _, err := s.library.EnsureExists(ctx, ByCandidate(candidate))
	if err != nil {
		return nil, nil, err
	}
	list, _, err := s.AddBook(ctx, listID, book.ID)
	if err != nil {
		s.logger.Warn("book added to library but not to list", "list_id", listID, "book_id", book.ID, "error", err)
		return nil, book, err
	}
	return list, book, nil
}

// ListBooks resolves the list's books in list order. Ids whose book no longer
// exists are dropped; any other lookup failure fails the call.
func (s *ListService) ListBooks(ctx context.Context, listID string) ([]*domain.Book, error) {
	list, err := s.GetList(ctx, listID)
	if err != nil {
		return nil, err
	}

	resolved := make([]*domain.Book, len(list.BookIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for i, bookID := range list.BookIDs {
		g.Go(func() error {
			book, err := s.library.GetBook(gctx, bookID)
			switch {
			case err == nil:
				resolved[i] = book
				return nil
			case isNotFound(err):
				s.logger.Debug("dropping dangling list entry", "list_id", listID, "book_id", bookID)
				return nil
			default:
				return err
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	books := make([]*domain.Book, 0, len(resolved))
	for _, b := range resolved {
		if b != nil {
			books = append(books, b)
		}
	}
	return books, nil
}

// mutate runs read-modify-write on a list. fn reports whether it changed the
// list; unchanged lists are not written.
func (s *ListService) mutate(ctx context.Context, id string, fn func(*domain.BookList) bool) (*domain.BookList, error) {
	if id == "" {
		return nil, domainerrors.Validation("list id is required")
	}
	list, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !fn(list) {
		return list, nil
	}

	rec, err := s.remote.Replace(context.WithoutCancel(ctx), docstore.NewListRecord(list))
	if err != nil {
		s.logger.Error("list update failed", "list_id", id, "error", err)
		return nil, remoteError(err, "list", id)
	}
	saved := rec.List()
	s.remember(ctx, saved)
	return saved, nil
}

func (s *ListService) fetch(ctx context.Context, id string) (*domain.BookList, error) {
	rec, err := s.remote.Get(ctx, id)
	if err != nil {
		if docstore.IsNotFound(err) {
			if cacheErr := s.cache.DeleteList(context.WithoutCancel(ctx), id); cacheErr != nil {
				s.logger.Warn("cache eviction failed", "list_id", id, "error", cacheErr)
			}
		}
		return nil, remoteError(err, "list", id)
	}
	list := rec.List()
	s.remember(ctx, list)
	return list, nil
}

func (s *ListService) remember(ctx context.Context, list *domain.BookList) {
	if err := s.cache.PutList(context.WithoutCancel(ctx), list); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("cache write failed", "list_id", list.ID, "error", err)
	}
}
