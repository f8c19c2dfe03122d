// Package search provides full-text search over the user's library using
// Bleve. The index is a derived view of confirmed books and can be rebuilt
// from the remote store at any time.
package search

import (
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/normalize"
)

// BookDocument is the indexed form of a library book.
//
// Author names are kept both as the display author and the full list so a
// search for a co-author still finds the book.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Authors     []string `json:"authors,omitempty"`
	Description string   `json:"description,omitempty"` // Plain text
	Publisher   string   `json:"publisher,omitempty"`
	Categories  []string `json:"categories,omitempty"`
	Language    string   `json:"language,omitempty"`
	Status      string   `json:"status"`
	Favorite    bool     `json:"favorite"`
	PublishYear int      `json:"publish_year,omitempty"`
	PageCount   int      `json:"page_count,omitempty"`
	DateAdded   int64    `json:"date_added"` // Unix millis
}

// ToMap converts the document to a map with the field names used by the
// index mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"status":     d.Status,
		"favorite":   d.Favorite,
		"date_added": d.DateAdded,
	}

	if len(d.Authors) > 0 {
		m["authors"] = d.Authors
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}
	if d.Language != "" {
		m["language"] = d.Language
	}
	if d.PublishYear > 0 {
		m["publish_year"] = d.PublishYear
	}
	if d.PageCount > 0 {
		m["page_count"] = d.PageCount
	}

	return m
}

// BookToDocument converts a domain Book to a BookDocument. Markup in the
// description is stripped.
func BookToDocument(book *domain.Book) *BookDocument {
	return &BookDocument{
		ID:          book.ID,
		Title:       book.Title,
		Author:      book.Author,
		Authors:     book.Authors,
		Description: normalize.PlainText(book.Description),
		Publisher:   book.Publisher,
		Categories:  book.Categories,
		Language:    book.Language,
		Status:      book.Status.String(),
		Favorite:    book.IsFavorite,
		PublishYear: book.PublishYear,
		PageCount:   book.PageCount,
		DateAdded:   book.DateAdded.UnixMilli(),
	}
}
