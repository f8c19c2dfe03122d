package api

import (
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	domainerrors "github.com/pagetrail/pagetrail-server/internal/errors"
	"github.com/pagetrail/pagetrail-server/internal/service"
)

// BookResponse is a library book or catalog result in API responses.
type BookResponse struct {
	ID              string     `json:"id,omitempty" doc:"Library id; empty for catalog results not in the library"`
	Title           string     `json:"title" doc:"Book title"`
	Author          string     `json:"author" doc:"Primary author"`
	Authors         []string   `json:"authors,omitempty" doc:"All credited authors"`
	CoverURL        string     `json:"cover_url,omitempty" doc:"HTTPS cover image URL"`
	Description     string     `json:"description,omitempty" doc:"Plain-text description"`
	ISBN            string     `json:"isbn,omitempty" doc:"ISBN-13, ISBN-10 or a temporary TEMP- identifier"`
	PublishYear     int        `json:"publish_year,omitempty" doc:"Year of first publication"`
	PageCount       int        `json:"page_count,omitempty" doc:"Number of pages, 0 when unknown"`
	Publisher       string     `json:"publisher,omitempty" doc:"Publisher name"`
	Language        string     `json:"language,omitempty" doc:"Language code"`
	Categories      []string   `json:"categories,omitempty" doc:"Subject categories"`
	Rating          float64    `json:"rating,omitempty" doc:"Average provider rating"`
	Status          string     `json:"status" doc:"Reading status"`
	CurrentPage     int        `json:"current_page" doc:"Last page reached"`
	ProgressPercent int        `json:"progress_percent" doc:"Progress through the book, 0-100"`
	IsFavorite      bool       `json:"is_favorite" doc:"Whether the book is a favorite"`
	DateAdded       time.Time  `json:"date_added,omitzero" doc:"When the book entered the library"`
	LastReadAt      *time.Time `json:"last_read_at,omitempty" doc:"Last progress update"`
	FinishedAt      *time.Time `json:"finished_at,omitempty" doc:"When the book was finished"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Authors:         b.Authors,
		CoverURL:        b.CoverURL,
		Description:     b.Description,
		ISBN:            b.ISBN,
		PublishYear:     b.PublishYear,
		PageCount:       b.PageCount,
		Publisher:       b.Publisher,
		Language:        b.Language,
		Categories:      b.Categories,
		Rating:          b.Rating,
		Status:          string(b.Status),
		CurrentPage:     b.CurrentPage,
		ProgressPercent: b.ProgressPercent,
		IsFavorite:      b.IsFavorite,
		DateAdded:       b.DateAdded,
		LastReadAt:      b.LastReadAt,
		FinishedAt:      b.FinishedAt,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for _, b := range books {
		out = append(out, toBookResponse(b))
	}
	return out
}

// BookCandidate is a catalog result sent back by the client to add or mutate it.
type BookCandidate struct {
	Title       string   `json:"title" minLength:"1" maxLength:"500" doc:"Book title"`
	Author      string   `json:"author,omitempty" maxLength:"300" doc:"Primary author"`
	Authors     []string `json:"authors,omitempty" doc:"All credited authors"`
	CoverURL    string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	Description string   `json:"description,omitempty" doc:"Plain-text description"`
	ISBN        string   `json:"isbn,omitempty" doc:"ISBN-13, ISBN-10 or a temporary TEMP- identifier"`
	PublishYear int      `json:"publish_year,omitempty" minimum:"0" doc:"Year of first publication"`
	PageCount   int      `json:"page_count,omitempty" minimum:"0" doc:"Number of pages"`
	Publisher   string   `json:"publisher,omitempty" doc:"Publisher name"`
	Language    string   `json:"language,omitempty" doc:"Language code"`
	Categories  []string `json:"categories,omitempty" doc:"Subject categories"`
	Rating      float64  `json:"rating,omitempty" minimum:"0" doc:"Average provider rating"`
}

func (c BookCandidate) toDomain() *domain.Book {
	b := &domain.Book{
		Title:       strings.TrimSpace(c.Title),
		Author:      strings.TrimSpace(c.Author),
		Authors:     c.Authors,
		CoverURL:    c.CoverURL,
		Description: c.Description,
		ISBN:        strings.TrimSpace(c.ISBN),
		PublishYear: c.PublishYear,
		PageCount:   c.PageCount,
		Publisher:   c.Publisher,
		Language:    c.Language,
		Categories:  c.Categories,
		Rating:      c.Rating,
	}
	if b.Author == "" && len(b.Authors) > 0 {
		b.Author = b.Authors[0]
	}
	return b
}

// SessionResponse is one reading session in API responses.
type SessionResponse struct {
	ID        string    `json:"id" doc:"Session id"`
	BookID    string    `json:"book_id" doc:"Book the session belongs to"`
	Date      time.Time `json:"date" doc:"When the session was recorded"`
	StartPage int       `json:"start_page" doc:"Page before the update"`
	EndPage   int       `json:"end_page" doc:"Page after the update"`
	PagesRead int       `json:"pages_read" doc:"Pages read in this session"`
	Notes     string    `json:"notes,omitempty" doc:"Optional session notes"`
}

func toSessionResponse(s *domain.ReadingSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		BookID:    s.BookID,
		Date:      s.Date,
		StartPage: s.StartPage,
		EndPage:   s.EndPage,
		PagesRead: s.PagesRead,
		Notes:     s.Notes,
	}
}

// ListResponse is a book list in API responses.
type ListResponse struct {
	ID          string    `json:"id" doc:"List id"`
	Name        string    `json:"name" doc:"List name"`
	Description string    `json:"description,omitempty" doc:"List description"`
	Color       string    `json:"color,omitempty" doc:"Hex display color"`
	Icon        string    `json:"icon,omitempty" doc:"Display icon name"`
	BookIDs     []string  `json:"book_ids" doc:"Member book ids in insertion order"`
	BookCount   int       `json:"book_count" doc:"Number of member books"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last modification time"`
}

func toListResponse(l *domain.BookList) ListResponse {
	ids := l.BookIDs
	if ids == nil {
		ids = []string{}
	}
	return ListResponse{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Color:       l.Color,
		Icon:        l.Icon,
		BookIDs:     ids,
		BookCount:   len(ids),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// parseStatus accepts an optional status; empty means none.
func parseStatus(raw string) (domain.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return "", domainerrors.Validationf("unknown status %q", raw)
	}
	return status, nil
}

// parseFavorite maps the favorite query parameter onto a tri-state filter.
func parseFavorite(raw string) (*bool, error) {
	switch strings.ToLower(raw) {
	case "":
		return nil, nil
	case "true":
		v := true
		return &v, nil
	case "false":
		v := false
		return &v, nil
	default:
		return nil, domainerrors.Validationf("favorite must be true or false, got %q", raw)
	}
}

// bookRef resolves a request that names a book either by id or by candidate.
func bookRef(id string, candidate *BookCandidate) (service.BookRef, error) {
	switch {
	case id != "":
		return service.ByID(id), nil
	case candidate != nil:
		return service.ByCandidate(candidate.toDomain()), nil
	default:
		return service.BookRef{}, domainerrors.Validation("either book_id or book is required")
	}
}
