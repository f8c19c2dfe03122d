// Package catalog holds the raw record shapes returned by the book search
// providers and the normalizer that turns them into domain.Book.
//
// Records are a closed set: only the types in this package implement Record,
// and Normalize is the only place that looks at provider-specific fields.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/pagetrail/pagetrail-server/internal/domain"
)

// ProviderName identifies a search provider.
type ProviderName string

// Known providers.
const (
	GoogleBooks ProviderName = "googlebooks"
	OpenLibrary ProviderName = "openlibrary"
)

// Valid reports whether p names a known provider.
func (p ProviderName) Valid() bool {
	return p == GoogleBooks || p == OpenLibrary
}

// Record is a raw provider record or an already-canonical book.
type Record interface {
	record()
}

// GoogleVolume is a Google Books volume resource.
type GoogleVolume struct {
	ID         string           `json:"id"`
	VolumeInfo GoogleVolumeInfo `json:"volumeInfo"`
}

// GoogleVolumeInfo is the nested metadata of a volume.
type GoogleVolumeInfo struct {
	Title               string             `json:"title"`
	Subtitle            string             `json:"subtitle,omitempty"`
	Authors             []string           `json:"authors,omitempty"`
	Publisher           string             `json:"publisher,omitempty"`
	PublishedDate       string             `json:"publishedDate,omitempty"`
	Description         string             `json:"description,omitempty"`
	IndustryIdentifiers []GoogleIdentifier `json:"industryIdentifiers,omitempty"`
	PageCount           int                `json:"pageCount,omitempty"`
	Categories          []string           `json:"categories,omitempty"`
	AverageRating       float64            `json:"averageRating,omitempty"`
	Language            string             `json:"language,omitempty"`
	ImageLinks          GoogleImageLinks   `json:"imageLinks"`
}

// GoogleIdentifier is one entry of industryIdentifiers, e.g. {"type": "ISBN_13"}.
type GoogleIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// GoogleImageLinks lists cover URLs from smallest to largest.
type GoogleImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail,omitempty"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Small          string `json:"small,omitempty"`
	Medium         string `json:"medium,omitempty"`
	Large          string `json:"large,omitempty"`
	ExtraLarge     string `json:"extraLarge,omitempty"`
}

// OpenLibraryDoc is one document of an Open Library search.json response.
type OpenLibraryDoc struct {
	Key                 string   `json:"key"` // "/works/OL27448W"
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name,omitempty"`
	CoverID             int      `json:"cover_i,omitempty"`
	CoverEditionKey     string   `json:"cover_edition_key,omitempty"`
	ISBN                []string `json:"isbn,omitempty"`
	FirstPublishYear    int      `json:"first_publish_year,omitempty"`
	NumberOfPagesMedian int      `json:"number_of_pages_median,omitempty"`
	Publisher           []string `json:"publisher,omitempty"`
	Language            []string `json:"language,omitempty"`
	Subject             []string `json:"subject,omitempty"`
	RatingsAverage      float64  `json:"ratings_average,omitempty"`
}

// OpenLibraryEdition is an edition from the Open Library books API
// (jscmd=data), used for ISBN and edition lookups.
type OpenLibraryEdition struct {
	Key           string                `json:"key"` // "/books/OL7353617M"
	Title         string                `json:"title"`
	Subtitle      string                `json:"subtitle,omitempty"`
	Authors       []OpenLibraryNamed    `json:"authors,omitempty"`
	Publishers    []OpenLibraryNamed    `json:"publishers,omitempty"`
	Subjects      []OpenLibraryNamed    `json:"subjects,omitempty"`
	PublishDate   string                `json:"publish_date,omitempty"`
	NumberOfPages int                   `json:"number_of_pages,omitempty"`
	Identifiers   OpenLibraryIdentifiers `json:"identifiers"`
	Cover         OpenLibraryCover      `json:"cover"`
	Notes         OpenLibraryText       `json:"notes,omitempty"`
}

// OpenLibraryWork is a work record from /works/{id}.json. Author names are
// resolved by the client since the work only carries author keys.
type OpenLibraryWork struct {
	Key              string           `json:"key"` // "/works/OL27448W"
	Title            string           `json:"title"`
	Description      OpenLibraryText  `json:"description,omitempty"`
	Covers           []int            `json:"covers,omitempty"`
	Subjects         []string         `json:"subjects,omitempty"`
	FirstPublishDate string           `json:"first_publish_date,omitempty"`
	Authors          []OpenLibraryRef `json:"authors,omitempty"`
	AuthorNames      []string         `json:"-"`
}

// OpenLibraryNamed is a {"name": ...} entry.
type OpenLibraryNamed struct {
	Name string `json:"name"`
}

// OpenLibraryRef is a work's author reference: {"author": {"key": "/authors/OL23919A"}}.
type OpenLibraryRef struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// OpenLibraryIdentifiers holds the identifier lists of an edition.
type OpenLibraryIdentifiers struct {
	ISBN10      []string `json:"isbn_10,omitempty"`
	ISBN13      []string `json:"isbn_13,omitempty"`
	OpenLibrary []string `json:"openlibrary,omitempty"`
}

// OpenLibraryCover holds the pre-sized cover URLs of an edition.
type OpenLibraryCover struct {
	Small  string `json:"small,omitempty"`
	Medium string `json:"medium,omitempty"`
	Large  string `json:"large,omitempty"`
}

// OpenLibraryText is a text field that Open Library returns either as a plain
// string or as {"type": "/type/text", "value": "..."}.
type OpenLibraryText string

// UnmarshalJSON accepts both shapes.
func (t *OpenLibraryText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = OpenLibraryText(s)
		return nil
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = OpenLibraryText(obj.Value)
	return nil
}

// Canonical wraps a book that is already in canonical form.
type Canonical struct {
	Book domain.Book
}

func (GoogleVolume) record()       {}
func (OpenLibraryDoc) record()     {}
func (OpenLibraryEdition) record() {}
func (OpenLibraryWork) record()    {}
func (Canonical) record()          {}

// keyFragment returns the last path element of an Open Library key:
// "/works/OL27448W" -> "OL27448W".
func keyFragment(key string) string {
	key = strings.TrimRight(key, "/")
	if i := strings.LastIndex(key, "/"); i >= 0 {
		return key[i+1:]
	}
	return key
}
