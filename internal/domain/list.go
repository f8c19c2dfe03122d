package domain

import (
	"slices"
	"time"
)

// BookList is a user-defined, ordered set of books. Lists reference books by id;
// books do not know which lists hold them.
type BookList struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	BookIDs     []string  `json:"book_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddBook appends bookID in insertion order. Adding a present id is a no-op and
// returns false.
func (l *BookList) AddBook(bookID string, now time.Time) bool {
	if slices.Contains(l.BookIDs, bookID) {
		return false
	}
	l.BookIDs = append(l.BookIDs, bookID)
	l.UpdatedAt = now
	return true
}

// RemoveBook removes bookID. Returns false if it was not present.
func (l *BookList) RemoveBook(bookID string, now time.Time) bool {
	i := slices.Index(l.BookIDs, bookID)
	if i < 0 {
		return false
	}
	l.BookIDs = slices.Delete(l.BookIDs, i, i+1)
	l.UpdatedAt = now
	return true
}

// ContainsBook checks if a book ID is in this list.
func (l *BookList) ContainsBook(bookID string) bool {
	return slices.Contains(l.BookIDs, bookID)
}

// Dedupe drops repeated ids, keeping first occurrences. Remote documents edited
// outside the app may carry duplicates.
func (l *BookList) Dedupe() {
	seen := make(map[string]struct{}, len(l.BookIDs))
	out := l.BookIDs[:0]
	for _, id := range l.BookIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	l.BookIDs = out
}
