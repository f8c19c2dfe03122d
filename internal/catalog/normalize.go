package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/id"
	"github.com/pagetrail/pagetrail-server/internal/normalize"
)

// maxSubjects caps Open Library subject lists, which often run to dozens of
// loosely related tags.
const maxSubjects = 5

// Open Library cover URLs built from ids always ask for the large size.
const (
	openLibraryCovers = "https://covers.openlibrary.org/b"
	coverLarge        = "L"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// Normalize converts any record into the canonical book shape. It never fails:
// missing fields fall back to documented defaults. The result has no id and
// default tracking fields unless the record is already Canonical.
func Normalize(r Record) domain.Book {
	return NormalizeAt(r, time.Now())
}

// NormalizeAt is Normalize with an explicit clock, used for temporary ISBNs.
func NormalizeAt(r Record, now time.Time) domain.Book {
	var b domain.Book
	var isbnCandidates []string
	var nativeKey string

	switch rec := r.(type) {
	case GoogleVolume:
		b, isbnCandidates = fromGoogle(rec)
		nativeKey = rec.ID
	case *GoogleVolume:
		return NormalizeAt(*rec, now)
	case OpenLibraryDoc:
		b, isbnCandidates = fromOpenLibraryDoc(rec)
		nativeKey = keyFragment(rec.Key)
	case *OpenLibraryDoc:
		return NormalizeAt(*rec, now)
	case OpenLibraryEdition:
		b, isbnCandidates = fromOpenLibraryEdition(rec)
		nativeKey = keyFragment(rec.Key)
	case *OpenLibraryEdition:
		return NormalizeAt(*rec, now)
	case OpenLibraryWork:
		b = fromOpenLibraryWork(rec)
		nativeKey = keyFragment(rec.Key)
	case *OpenLibraryWork:
		return NormalizeAt(*rec, now)
	case Canonical:
		b = rec.Book
		b.Authors = append([]string(nil), rec.Book.Authors...)
		b.Categories = append([]string(nil), rec.Book.Categories...)
		isbnCandidates = []string{rec.Book.ISBN}
		nativeKey = rec.Book.ISBN
	case *Canonical:
		return NormalizeAt(*rec, now)
	default:
		// nil record: every field takes its fallback.
	}

	canonicalize(&b)
	b.ISBN = pickISBN(isbnCandidates, nativeKey, now)
	return b
}

// canonicalize applies the provider-independent rules. Every rule is
// idempotent so normalizing a canonical book changes nothing.
func canonicalize(b *domain.Book) {
	b.Title = normalize.CollapseWhitespace(b.Title)
	if b.Title == "" {
		b.Title = domain.UntitledTitle
	}

	b.Authors = cleanList(b.Authors)
	if b.Author = strings.TrimSpace(b.Author); b.Author == "" {
		if len(b.Authors) > 0 {
			b.Author = b.Authors[0]
		} else {
			b.Author = domain.UnknownAuthor
		}
	}

	b.CoverURL = normalize.UpgradeHTTPS(b.CoverURL)
	b.Description = normalize.HTMLToMarkdown(b.Description)
	b.Publisher = strings.TrimSpace(b.Publisher)
	b.Language = normalize.LanguageCode(b.Language)
	b.Categories = cleanList(b.Categories)
	if b.PageCount < 0 {
		b.PageCount = 0
	}
	if b.Rating < 0 {
		b.Rating = 0
	}

	if b.Status == "" {
		b.Status = domain.StatusWishlist
	}
	b.ProgressPercent = domain.ProgressPercent(b.CurrentPage, b.PageCount)
	if b.Status == domain.StatusRead {
		b.ProgressPercent = 100
	}
}

func fromGoogle(v GoogleVolume) (domain.Book, []string) {
	info := v.VolumeInfo
	b := domain.Book{
		Title:       info.Title,
		Authors:     info.Authors,
		CoverURL:    firstNonEmpty(info.ImageLinks.ExtraLarge, info.ImageLinks.Large, info.ImageLinks.Medium, info.ImageLinks.Small, info.ImageLinks.Thumbnail, info.ImageLinks.SmallThumbnail),
		Description: info.Description,
		PublishYear: parseYear(info.PublishedDate),
		PageCount:   info.PageCount,
		Publisher:   info.Publisher,
		Language:    info.Language,
		Categories:  info.Categories,
		Rating:      info.AverageRating,
	}

	var isbn13, isbn10 []string
	for _, ident := range info.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_13":
			isbn13 = append(isbn13, ident.Identifier)
		case "ISBN_10":
			isbn10 = append(isbn10, ident.Identifier)
		}
	}
	return b, append(isbn13, isbn10...)
}

func fromOpenLibraryDoc(d OpenLibraryDoc) (domain.Book, []string) {
	b := domain.Book{
		Title:       d.Title,
		Authors:     d.AuthorName,
		PublishYear: d.FirstPublishYear,
		PageCount:   d.NumberOfPagesMedian,
		Categories:  capList(d.Subject, maxSubjects),
		Rating:      d.RatingsAverage,
	}
	switch {
	case d.CoverID > 0:
		b.CoverURL = coverByID(d.CoverID)
	case d.CoverEditionKey != "":
		b.CoverURL = fmt.Sprintf("%s/olid/%s-%s.jpg", openLibraryCovers, d.CoverEditionKey, coverLarge)
	}
	if len(d.Publisher) > 0 {
		b.Publisher = d.Publisher[0]
	}
	if len(d.Language) > 0 {
		b.Language = d.Language[0]
	}
	return b, sortISBNs(d.ISBN)
}

func fromOpenLibraryEdition(e OpenLibraryEdition) (domain.Book, []string) {
	b := domain.Book{
		Title:       e.Title,
		Authors:     names(e.Authors),
		CoverURL:    firstNonEmpty(e.Cover.Large, e.Cover.Medium, e.Cover.Small),
		Description: string(e.Notes),
		PublishYear: parseYear(e.PublishDate),
		PageCount:   e.NumberOfPages,
		Categories:  capList(names(e.Subjects), maxSubjects),
	}
	if pubs := names(e.Publishers); len(pubs) > 0 {
		b.Publisher = pubs[0]
	}
	return b, append(append([]string(nil), e.Identifiers.ISBN13...), e.Identifiers.ISBN10...)
}

func fromOpenLibraryWork(w OpenLibraryWork) domain.Book {
	b := domain.Book{
		Title:       w.Title,
		Authors:     w.AuthorNames,
		Description: string(w.Description),
		PublishYear: parseYear(w.FirstPublishDate),
		Categories:  capList(w.Subjects, maxSubjects),
	}
	for _, c := range w.Covers {
		if c > 0 {
			b.CoverURL = coverByID(c)
			break
		}
	}
	return b
}

// pickISBN applies ISBN-13 > ISBN-10 > provider key > temporary id.
func pickISBN(candidates []string, nativeKey string, now time.Time) string {
	var isbn10 string
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if domain.IsTemporaryISBN(c) {
			return c
		}
		cleaned := domain.CleanISBN(c)
		if !domain.ValidISBN(cleaned) {
			continue
		}
		if len(cleaned) == 13 {
			return cleaned
		}
		if isbn10 == "" {
			isbn10 = cleaned
		}
	}
	if isbn10 != "" {
		return isbn10
	}
	if nativeKey = strings.TrimSpace(nativeKey); nativeKey != "" {
		return nativeKey
	}
	return id.Temporary(domain.TemporaryISBNPrefix, now)
}

// sortISBNs puts ISBN-13s ahead of ISBN-10s, keeping the provider's order otherwise.
func sortISBNs(isbns []string) []string {
	out := make([]string, 0, len(isbns))
	for _, s := range isbns {
		if len(domain.CleanISBN(s)) == 13 {
			out = append(out, s)
		}
	}
	for _, s := range isbns {
		if len(domain.CleanISBN(s)) != 13 {
			out = append(out, s)
		}
	}
	return out
}

func coverByID(coverID int) string {
	return fmt.Sprintf("%s/id/%d-%s.jpg", openLibraryCovers, coverID, coverLarge)
}

// parseYear returns the first four-digit run: "2004-05-01" -> 2004,
// "May 5, 2005" -> 2005.
func parseYear(date string) int {
	m := yearPattern.FindString(date)
	if m == "" {
		return 0
	}
	year, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return year
}

func names(named []OpenLibraryNamed) []string {
	out := make([]string, 0, len(named))
	for _, n := range named {
		out = append(out, n.Name)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// cleanList trims entries and drops empties and case-insensitive duplicates.
func cleanList(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = normalize.CollapseWhitespace(s)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func capList(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
