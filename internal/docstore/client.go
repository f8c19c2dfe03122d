// Package docstore is the client of the remote document store: a json-server
// style REST backend holding the books, lists and sessions collections.
//
// Every call is a single request. Nothing is retried; failures are returned
// to the caller.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// Collection names.
const (
	Books    = "books"
	Lists    = "lists"
	Sessions = "sessions"
)

// Config configures the client.
type Config struct {
	BaseURL string
	APIKey  string // Optional bearer token
	Timeout time.Duration
}

// Client performs CRUD requests against the document store.
type Client struct {
	rc     *resty.Client
	logger *slog.Logger
}

// New creates a client for the store at cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "PageTrail/1.0").
		SetLogger(restyLogger{logger: logger})

	if cfg.APIKey != "" {
		rc.SetAuthToken(cfg.APIKey)
	}

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get("X-Request-ID") == "" {
			r.SetHeader("X-Request-ID", uuid.NewString())
		}
		return nil
	})
	rc.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("docstore response",
			"method", resp.Request.Method,
			"url", resp.Request.URL,
			"status", resp.StatusCode(),
			"elapsed", resp.Time(),
			"request_id", resp.Request.Header.Get("X-Request-ID"),
		)
		return nil
	})

	return &Client{rc: rc, logger: logger}
}

// Ping checks that the store answers for the books collection.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "ping", Books, "", map[string]string{"_limit": "1"}, nil, nil)
}

// do executes one request. body is encoded as JSON when non-nil; out receives
// the decoded response when non-nil.
func (c *Client) do(ctx context.Context, method, op, collection, id string, query map[string]string, body, out any) error {
	path := "/" + collection
	if id != "" {
		path += "/" + url.PathEscape(id)
	}

	req := c.rc.R().SetContext(ctx)
	if query != nil {
		req.SetQueryParams(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Warn("docstore request failed", "op", op, "collection", collection, "id", id, "error", err)
		return &Error{Op: op, Collection: collection, ID: id, Err: err}
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return &Error{Op: op, Collection: collection, ID: id, Status: resp.StatusCode(), Err: ErrNotFound}
	case !resp.IsSuccess():
		c.logger.Warn("docstore request rejected", "op", op, "collection", collection, "id", id, "status", resp.StatusCode())
		return &Error{
			Op: op, Collection: collection, ID: id, Status: resp.StatusCode(),
			Err: fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(resp.Body()))),
		}
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Op: op, Collection: collection, ID: id, Status: resp.StatusCode(), Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

// restyLogger routes resty's internal messages into slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), "component", "resty")
}
