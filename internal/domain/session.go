package domain

import (
	"strings"
	"time"
)

// ReadingSession records one page-advancing progress update. Sessions are
// append-only history and are never edited.
type ReadingSession struct {
	ID        string    `json:"id,omitempty"`
	BookID    string    `json:"book_id"`
	Date      time.Time `json:"date"`
	StartPage int       `json:"start_page"`
	EndPage   int       `json:"end_page"`
	PagesRead int       `json:"pages_read"`
	Notes     string    `json:"notes,omitempty"`
}

// NewReadingSession builds the session for a progress change. It returns false
// when the change did not advance, in which case no session exists.
func NewReadingSession(bookID string, change ProgressChange, notes string, now time.Time) (*ReadingSession, bool) {
	if !change.Advanced() {
		return nil, false
	}
	return &ReadingSession{
		BookID:    bookID,
		Date:      now,
		StartPage: change.StartPage,
		EndPage:   change.EndPage,
		PagesRead: change.PagesRead(),
		Notes:     strings.TrimSpace(notes),
	}, true
}
