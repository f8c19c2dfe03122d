// Package domain contains the core entities of the PageTrail library and their
// lifecycle rules. Nothing here performs I/O.
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/normalize"
)

// Fallback values used when a catalog record lacks a title or author.
const (
	UntitledTitle = "untitled"
	UnknownAuthor = "unknown author"
)

// Book is the canonical book record. Catalog data is normalized into it and the
// tracking fields below are owned by the lifecycle methods.
type Book struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Authors     []string `json:"authors,omitempty"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Description string   `json:"description,omitempty"`
	ISBN        string   `json:"isbn,omitempty"`
	PublishYear int      `json:"publish_year,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Language    string   `json:"language,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Rating      float64  `json:"rating,omitempty"`

	Status          Status     `json:"status"`
	CurrentPage     int        `json:"current_page"`
	ProgressPercent int        `json:"progress_percent"`
	IsFavorite      bool       `json:"is_favorite"`
	DateAdded       time.Time  `json:"date_added"`
	LastReadAt      *time.Time `json:"last_read_at,omitempty"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
}

// ProgressChange describes the effect of a progress update.
type ProgressChange struct {
	StartPage int
	EndPage   int
	Finished  bool
}

// PagesRead returns the number of pages the update advanced.
func (c ProgressChange) PagesRead() int {
	return c.EndPage - c.StartPage
}

// Advanced reports whether the update moved the current page forward.
func (c ProgressChange) Advanced() bool {
	return c.EndPage > c.StartPage
}

// ProgressPercent returns round(page/pageCount*100) clamped to [0, 100].
// Unknown page counts yield 0.
func ProgressPercent(page, pageCount int) int {
	if pageCount <= 0 || page <= 0 {
		return 0
	}
	pct := int(math.Round(float64(page) / float64(pageCount) * 100))
	return min(max(pct, 0), 100)
}

// InLibrary reports whether the book has been stored remotely.
func (b *Book) InLibrary() bool {
	return b.ID != ""
}

// StartReading moves the book to reading. A finished book, or one with progress,
// starts over from page zero. Calling it on a book already being read only
// stamps the last read time.
func (b *Book) StartReading(now time.Time) {
	if b.Status == StatusReading {
		b.LastReadAt = &now
		return
	}

	if b.Status == StatusRead || b.CurrentPage > 0 {
		b.CurrentPage = 0
		b.ProgressPercent = 0
		b.FinishedAt = nil
	}
	b.Status = StatusReading
	b.LastReadAt = &now
}

// Finish marks the book read. When the page count is known the current page
// moves to the last page.
func (b *Book) Finish(now time.Time) {
	b.Status = StatusRead
	b.FinishedAt = &now
	b.LastReadAt = &now
	b.ProgressPercent = 100
	if b.PageCount > 0 {
		b.CurrentPage = b.PageCount
	}
}

// SetStatus reassigns one of the passive statuses. Reading and read carry side
// effects and go through StartReading and Finish instead.
func (b *Book) SetStatus(status Status) error {
	switch status {
	case StatusWishlist, StatusToRead, StatusAbandoned:
		b.Status = status
		return nil
	case StatusReading, StatusRead:
		return invalidStatusf("status %q must be set through its transition", status)
	default:
		return invalidStatusf("unknown status %q", status)
	}
}

// ValidatePage checks a page number against the book's page count.
// It does not look at the current page.
func (b *Book) ValidatePage(page int) error {
	if page < 0 {
		return pageOutOfRangef("page %d must not be negative", page)
	}
	if b.PageCount > 0 && page > b.PageCount {
		return pageOutOfRangef("page %d exceeds page count %d", page, b.PageCount)
	}
	return nil
}

// ApplyProgress moves the current page forward. Decreases are rejected and leave
// the book untouched. Reaching the last page finishes the book. An update to the
// current page changes nothing and reports no advance.
func (b *Book) ApplyProgress(page int, now time.Time) (ProgressChange, error) {
	if err := b.ValidatePage(page); err != nil {
		return ProgressChange{}, err
	}
	if page < b.CurrentPage {
		return ProgressChange{}, progressDecreasef("page %d is before current page %d", page, b.CurrentPage)
	}

	change := ProgressChange{StartPage: b.CurrentPage, EndPage: page}
	if !change.Advanced() {
		return change, nil
	}

	if b.Status != StatusReading && b.Status != StatusRead {
		b.Status = StatusReading
	}
	b.CurrentPage = page
	b.ProgressPercent = ProgressPercent(page, b.PageCount)
	b.LastReadAt = &now
	if b.Status == StatusRead {
		// Only possible with an unknown page count.
		b.ProgressPercent = 100
	}

	if b.PageCount > 0 && page >= b.PageCount && b.Status != StatusRead {
		b.Finish(now)
		change.Finished = true
	}
	return change, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (b *Book) ToggleFavorite() bool {
	b.IsFavorite = !b.IsFavorite
	return b.IsFavorite
}

// TitleAuthorKey returns the folded title and author used for duplicate
// detection. Books without a real title have no key.
func (b *Book) TitleAuthorKey() string {
	title := normalize.FoldKey(b.Title)
	if title == "" || title == UntitledTitle {
		return ""
	}
	return title + "|" + normalize.FoldKey(b.Author)
}

// MergeCatalog fills empty catalog fields from other. Identity is left alone.
// A newly learned page count caps the current page, and a book already at or
// past its last page is finished.
func (b *Book) MergeCatalog(other *Book, now time.Time) {
	if b.CoverURL == "" {
		b.CoverURL = other.CoverURL
	}
	if b.Description == "" {
		b.Description = other.Description
	}
	if b.PublishYear == 0 {
		b.PublishYear = other.PublishYear
	}
	if b.PageCount == 0 && other.PageCount > 0 {
		b.PageCount = other.PageCount
		b.CurrentPage = min(b.CurrentPage, b.PageCount)
		switch {
		case b.Status == StatusRead:
			b.CurrentPage = b.PageCount
			b.ProgressPercent = 100
		case b.CurrentPage > 0 && b.CurrentPage >= b.PageCount:
			b.Finish(now)
		default:
			b.ProgressPercent = ProgressPercent(b.CurrentPage, b.PageCount)
		}
	}
	if b.Publisher == "" {
		b.Publisher = other.Publisher
	}
	if b.Language == "" {
		b.Language = other.Language
	}
	if len(b.Categories) == 0 {
		b.Categories = other.Categories
	}
	if len(b.Authors) == 0 {
		b.Authors = other.Authors
	}
	if b.Rating == 0 {
		b.Rating = other.Rating
	}
}

// JoinCategories flattens categories into one display string.
func JoinCategories(categories []string) string {
	return strings.Join(categories, ", ")
}

// SplitCategories reverses JoinCategories.
func SplitCategories(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
