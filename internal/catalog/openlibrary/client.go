// Package openlibrary is a rate-limited client for the Open Library search,
// books and works APIs.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pagetrail/pagetrail-server/internal/catalog"
	"github.com/pagetrail/pagetrail-server/internal/domain"
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public Open Library host.
	DefaultBaseURL = "https://openlibrary.org"

	defaultTimeout = 15 * time.Second
	defaultLimit   = 20
	maxLimit       = 100

	searchFields = "key,title,author_name,cover_i,cover_edition_key,isbn,first_publish_year," +
		"number_of_pages_median,publisher,language,subject,ratings_average"
)

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is a rate-limited Open Library client.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a client sharing the given provider-keyed limiter.
func New(cfg Config, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: limiter,
		logger:  logger,
	}
}

// Name implements catalog.Provider.
func (c *Client) Name() catalog.ProviderName {
	return catalog.OpenLibrary
}

// SearchByTitle queries search.json by title.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]catalog.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, catalog.WrapError(catalog.OpenLibrary, "searchByTitle", title, catalog.ErrBadRequest)
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	query := url.Values{}
	query.Set("title", title)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("fields", searchFields)

	body, err := c.doRequest(ctx, "/search.json", query)
	if err != nil {
		return nil, catalog.WrapError(catalog.OpenLibrary, "searchByTitle", title, err)
	}

	var resp struct {
		NumFound int                      `json:"numFound"`
		Docs     []catalog.OpenLibraryDoc `json:"docs"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, catalog.WrapError(catalog.OpenLibrary, "searchByTitle", title, fmt.Errorf("parse response: %w", err))
	}

	records := make([]catalog.Record, 0, len(resp.Docs))
	for _, doc := range resp.Docs {
		records = append(records, doc)
	}
	return records, nil
}

// SearchByISBN looks an edition up through the books API.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (catalog.Record, error) {
	edition, err := c.edition(ctx, "ISBN:"+domain.CleanISBN(isbn))
	if err != nil {
		return nil, catalog.WrapError(catalog.OpenLibrary, "searchByISBN", isbn, err)
	}
	return edition, nil
}

// GetDetails accepts an edition id (OL...M), a work id (OL...W) or an ISBN.
func (c *Client) GetDetails(ctx context.Context, olid string) (catalog.Record, error) {
	olid = strings.TrimSpace(olid)

	var (
		record catalog.Record
		err    error
	)
	switch {
	case isOLID(olid, 'M'):
		record, err = c.edition(ctx, "OLID:"+olid)
	case isOLID(olid, 'W'):
		record, err = c.work(ctx, olid)
	case domain.ValidISBN(olid):
		record, err = c.edition(ctx, "ISBN:"+domain.CleanISBN(olid))
	default:
		err = catalog.ErrBadRequest
	}
	if err != nil {
		return nil, catalog.WrapError(catalog.OpenLibrary, "getDetails", olid, err)
	}
	return record, nil
}

func (c *Client) edition(ctx context.Context, bibkey string) (catalog.OpenLibraryEdition, error) {
	query := url.Values{}
	query.Set("bibkeys", bibkey)
	query.Set("jscmd", "data")
	query.Set("format", "json")

	body, err := c.doRequest(ctx, "/api/books", query)
	if err != nil {
		return catalog.OpenLibraryEdition{}, err
	}

	var resp map[string]catalog.OpenLibraryEdition
	if err := json.Unmarshal(body, &resp); err != nil {
		return catalog.OpenLibraryEdition{}, fmt.Errorf("parse response: %w", err)
	}
	edition, ok := resp[bibkey]
	if !ok {
		return catalog.OpenLibraryEdition{}, catalog.ErrNotFound
	}
	return edition, nil
}

func (c *Client) work(ctx context.Context, olid string) (catalog.OpenLibraryWork, error) {
	body, err := c.doRequest(ctx, "/works/"+olid+".json", nil)
	if err != nil {
		return catalog.OpenLibraryWork{}, err
	}

	var work catalog.OpenLibraryWork
	if err := json.Unmarshal(body, &work); err != nil {
		return catalog.OpenLibraryWork{}, fmt.Errorf("parse response: %w", err)
	}

	// Works only reference authors; resolve names best-effort.
	for _, ref := range work.Authors {
		name, err := c.authorName(ctx, ref.Author.Key)
		if err != nil {
			c.logger.Warn("open library author lookup failed", "author_key", ref.Author.Key, "error", err)
			continue
		}
		work.AuthorNames = append(work.AuthorNames, name)
	}
	return work, nil
}

func (c *Client) authorName(ctx context.Context, key string) (string, error) {
	if !strings.HasPrefix(key, "/authors/") {
		return "", catalog.ErrBadRequest
	}
	body, err := c.doRequest(ctx, key+".json", nil)
	if err != nil {
		return "", err
	}
	var author struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &author); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	return author.Name, nil
}

// isOLID reports whether s looks like an Open Library id of the given kind,
// e.g. "OL7353617M" for editions.
func isOLID(s string, kind byte) bool {
	if len(s) < 4 || !strings.HasPrefix(s, "OL") || s[len(s)-1] != kind {
		return false
	}
	_, err := strconv.ParseUint(s[2:len(s)-1], 10, 64)
	return err == nil
}

// doRequest executes a GET with rate limiting and maps status codes to
// catalog sentinels.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, string(catalog.OpenLibrary)); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "PageTrail/1.0")

	c.logger.Debug("open library request", "path", path)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, catalog.ErrNotFound
	case http.StatusTooManyRequests:
		return nil, catalog.ErrRateLimited
	case http.StatusBadRequest:
		return nil, catalog.ErrBadRequest
	default:
		if resp.StatusCode >= 500 {
			return nil, catalog.ErrServer
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
