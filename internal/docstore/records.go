package docstore

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// ID is a document id. Older json-server versions assign numeric ids, newer ones
// strings; both decode to the same text.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

// BookRecord is the wire form of a book.
type BookRecord struct {
	ID              ID         `json:"id,omitempty"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	Authors         []string   `json:"authors,omitempty"`
	CoverURL        string     `json:"coverUrl,omitempty"`
	Description     string     `json:"description,omitempty"`
	ISBN            string     `json:"isbn,omitempty"`
	PublishYear     int        `json:"publishYear,omitempty"`
	PageCount       int        `json:"pageCount,omitempty"`
	Publisher       string     `json:"publisher,omitempty"`
	Language        string     `json:"language,omitempty"`
	Categories      string     `json:"categories,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	Status          string     `json:"status"`
	CurrentPage     int        `json:"currentPage"`
	ProgressPercent int        `json:"progressPercent"`
	IsFavorite      bool       `json:"isFavorite"`
	DateAdded       time.Time  `json:"dateAdded"`
	LastReadAt      *time.Time `json:"lastReadAt,omitempty"`
	FinishedAt      *time.Time `json:"finishedAt,omitempty"`
}

// DocumentID implements Document.
func (r BookRecord) DocumentID() string { return string(r.ID) }

// NewBookRecord converts a book to its wire form.
func NewBookRecord(b *domain.Book) BookRecord {
	return BookRecord{
		ID:              ID(b.ID),
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
		Categories:      domain.JoinCategories(b.Categories),
		Rating:          b.Rating,
		Status:          b.Status.String(),
		CurrentPage:     b.CurrentPage,
		ProgressPercent: b.ProgressPercent,
		IsFavorite:      b.IsFavorite,
		DateAdded:       b.DateAdded,
		LastReadAt:      b.LastReadAt,
		FinishedAt:      b.FinishedAt,
	}
}

// Book converts the wire record to a book. Unknown statuses read as wishlist.
func (r BookRecord) Book() *domain.Book {
	status, err := domain.ParseStatus(r.Status)
	if err != nil {
		status = domain.StatusWishlist
	}
	return &domain.Book{
		ID:              string(r.ID),
		Title:           r.Title,
		Author:          r.Author,
		Authors:         r.Authors,
		CoverURL:        r.CoverURL,
		Description:     r.Description,
		ISBN:            r.ISBN,
		PublishYear:     r.PublishYear,
		PageCount:       r.PageCount,
		Publisher:       r.Publisher,
		Language:        r.Language,
		Categories:      domain.SplitCategories(r.Categories),
		Rating:          r.Rating,
		Status:          status,
		CurrentPage:     r.CurrentPage,
		ProgressPercent: r.ProgressPercent,
		IsFavorite:      r.IsFavorite,
		DateAdded:       r.DateAdded,
		LastReadAt:      r.LastReadAt,
		FinishedAt:      r.FinishedAt,
	}
}

// ListRecord is the wire form of a book list.
type ListRecord struct {
	ID          ID        `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	BookIDs     []ID      `json:"bookIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DocumentID implements Document.
func (r ListRecord) DocumentID() string { return string(r.ID) }

// NewListRecord converts a list to its wire form.
func NewListRecord(l *domain.BookList) ListRecord {
	ids := make([]ID, len(l.BookIDs))
	for i, bookID := range l.BookIDs {
		ids[i] = ID(bookID)
	}
	return ListRecord{
		ID:          ID(l.ID),
		Name:        l.Name,
		Description: l.Description,
		Color:       l.Color,
		Icon:        l.Icon,
		BookIDs:     ids,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// List converts the wire record to a book list. Duplicate ids written by other
// clients collapse to their first occurrence.
func (r ListRecord) List() *domain.BookList {
	ids := make([]string, 0, len(r.BookIDs))
	for _, bookID := range r.BookIDs {
		ids = append(ids, string(bookID))
	}
	l := &domain.BookList{
		ID:          string(r.ID),
		Name:        r.Name,
		Description: r.Description,
		Color:       r.Color,
		Icon:        r.Icon,
		BookIDs:     ids,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	l.Dedupe()
	return l
}

// SessionRecord is the wire form of a reading session.
type SessionRecord struct {
	ID        ID        `json:"id,omitempty"`
	BookID    ID        `json:"bookId"`
	Date      time.Time `json:"date"`
	StartPage int       `json:"startPage"`
	EndPage   int       `json:"endPage"`
	PagesRead int       `json:"pagesRead"`
	Notes     string    `json:"notes,omitempty"`
}

// DocumentID implements Document.
func (r SessionRecord) DocumentID() string { return string(r.ID) }

// NewSessionRecord converts a session to its wire form.
func NewSessionRecord(s *domain.ReadingSession) SessionRecord {
	return SessionRecord{
		ID:        ID(s.ID),
		BookID:    ID(s.BookID),
		Date:      s.Date,
		StartPage: s.StartPage,
		EndPage:   s.EndPage,
		PagesRead: s.PagesRead,
		Notes:     s.Notes,
	}
}

// Session converts the wire record to a reading session.
func (r SessionRecord) Session() *domain.ReadingSession {
	return &domain.ReadingSession{
		ID:        string(r.ID),
		BookID:    string(r.BookID),
		Date:      r.Date,
		StartPage: r.StartPage,
		EndPage:   r.EndPage,
		PagesRead: r.PagesRead,
		Notes:     r.Notes,
	}
}

// BookFilter builds a query filter for the books collection. Empty arguments
// are not filtered on.
func BookFilter(status domain.Status, favorite *bool) Filter {
	f := Filter{}
	if status != "" {
		f["status"] = status.String()
	}
	if favorite != nil {
		f["isFavorite"] = strconv.FormatBool(*favorite)
	}
	return f
}

// Store groups the three collections.
type Store struct {
	Client   *Client
	Books    *Collection[BookRecord]
	Lists    *Collection[ListRecord]
	Sessions *Collection[SessionRecord]
}

// NewStore returns typed handles for every collection.
func NewStore(client *Client) *Store {
	return &Store{
		Client:   client,
		Books:    NewCollection[BookRecord](client, Books),
		Lists:    NewCollection[ListRecord](client, Lists),
		Sessions: NewCollection[SessionRecord](client, Sessions),
	}
}
