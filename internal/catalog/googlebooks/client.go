// Package googlebooks is a rate-limited client for the Google Books volumes API.
package googlebooks

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
	"github.com/pagetrail/pagetrail-server/internal/ratelimit"
)

const (
	// DefaultBaseURL is the public volumes API.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	defaultTimeout    = 15 * time.Second
	defaultMaxResults = 20
	maxMaxResults     = 40
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string // Optional; raises the anonymous quota
	Timeout time.Duration
}

// Client is a rate-limited Google Books client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a client. The limiter is keyed by provider name so one limiter
// can serve every catalog client.
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
		apiKey:  cfg.APIKey,
		limiter: limiter,
		logger:  logger,
	}
}

// Name implements catalog.Provider.
func (c *Client) Name() catalog.ProviderName {
	return catalog.GoogleBooks
}

type volumesResponse struct {
	TotalItems int                    `json:"totalItems"`
	Items      []catalog.GoogleVolume `json:"items"`
}

// SearchByTitle searches volumes whose title matches.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]catalog.Record, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, catalog.WrapError(catalog.GoogleBooks, "searchByTitle", title, catalog.ErrBadRequest)
	}

	if limit <= 0 {
		limit = defaultMaxResults
	}
	limit = min(limit, maxMaxResults)

	query := url.Values{}
	query.Set("q", "intitle:"+title)
	query.Set("maxResults", strconv.Itoa(limit))
	query.Set("printType", "books")

	resp, err := c.volumes(ctx, query)
	if err != nil {
		return nil, catalog.WrapError(catalog.GoogleBooks, "searchByTitle", title, err)
	}

	records := make([]catalog.Record, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, item)
	}
	return records, nil
}

// SearchByISBN returns the first volume carrying the ISBN.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (catalog.Record, error) {
	query := url.Values{}
	query.Set("q", "isbn:"+isbn)
	query.Set("maxResults", "1")

	resp, err := c.volumes(ctx, query)
	if err != nil {
		return nil, catalog.WrapError(catalog.GoogleBooks, "searchByISBN", isbn, err)
	}
	if resp.TotalItems == 0 || len(resp.Items) == 0 {
		return nil, catalog.WrapError(catalog.GoogleBooks, "searchByISBN", isbn, catalog.ErrNotFound)
	}
	return resp.Items[0], nil
}

// GetDetails fetches a single volume by id.
func (c *Client) GetDetails(ctx context.Context, volumeID string) (catalog.Record, error) {
	if volumeID == "" || strings.ContainsAny(volumeID, "/?#") {
		return nil, catalog.WrapError(catalog.GoogleBooks, "getDetails", volumeID, catalog.ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "/volumes/"+url.PathEscape(volumeID), url.Values{})
	if err != nil {
		return nil, catalog.WrapError(catalog.GoogleBooks, "getDetails", volumeID, err)
	}

	var volume catalog.GoogleVolume
	if err := json.Unmarshal(body, &volume); err != nil {
		return nil, catalog.WrapError(catalog.GoogleBooks, "getDetails", volumeID, fmt.Errorf("parse response: %w", err))
	}
	return volume, nil
}

func (c *Client) volumes(ctx context.Context, query url.Values) (*volumesResponse, error) {
	body, err := c.doRequest(ctx, "/volumes", query)
	if err != nil {
		return nil, err
	}

	var resp volumesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

// doRequest executes a GET with rate limiting and maps status codes to
// catalog sentinels.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx, string(catalog.GoogleBooks)); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if c.apiKey != "" {
		query.Set("key", c.apiKey)
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

	c.logger.Debug("google books request", "path", path)

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
