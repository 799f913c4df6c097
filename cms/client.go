// Package cms is a small client for the headless CMS REST API that holds
// the publication's posts, categories, media and newsletter subscribers.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/labstack/gommon/log"

	"github.com/eringen/bedrock/content"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20 // 10MB
	// MinQueryLength is the shortest search query forwarded to the CMS.
	MinQueryLength = 2
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("cms: not found")

// StatusError is a non-2xx response from the CMS.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("cms: %s: %s", e.Status, e.Message)
	}
	return "cms: " + e.Status
}

// Logger is the subset of the Echo/gommon logger the client writes to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Client talks to a single CMS origin.
type Client struct {
	origin   string
	http     *http.Client
	cache    ResponseCache
	cacheTTL time.Duration
	logger   Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout. The configured HTTP client is
// copied so a shared client is left untouched.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithCache stores successful GET responses in rc for ttl.
func WithCache(rc ResponseCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = rc
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for upstream warnings.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New returns a Client for the CMS at origin (e.g. "https://cms.example").
func New(origin string, opts ...Option) *Client {
	c := &Client{
		origin: strings.TrimRight(origin, "/"),
		http:   &http.Client{Timeout: defaultTimeout},
		logger: log.New("cms"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Origin returns the CMS origin that /api paths are resolved against.
func (c *Client) Origin() string {
	return c.origin
}

// PostList is a page of posts.
type PostList struct {
	Docs        []content.Post `json:"docs"`
	TotalDocs   int            `json:"totalDocs"`
	Limit       int            `json:"limit"`
	Page        int            `json:"page"`
	TotalPages  int            `json:"totalPages"`
	HasNextPage bool           `json:"hasNextPage"`
}

// ListOptions narrows a post listing.
type ListOptions struct {
	Limit    int
	Page     int
	Category string // category slug; empty means all
}

// ListPosts returns published posts, newest first.
func (c *Client) ListPosts(ctx context.Context, opts ListOptions) (PostList, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	q.Set("sort", "-publishedAt")
	q.Set("depth", "1")
	if opts.Category != "" {
		q.Set("where[categories.slug][equals]", opts.Category)
	}
	var list PostList
	if err := c.getJSON(ctx, "/api/posts", q, &list); err != nil {
		return PostList{}, fmt.Errorf("cms: list posts: %w", err)
	}
	return list, nil
}

// PostBySlug returns the post with the given slug, or ErrNotFound.
func (c *Client) PostBySlug(ctx context.Context, slug string) (content.Post, error) {
	q := url.Values{}
	q.Set("where[slug][equals]", slug)
	q.Set("limit", "1")
	q.Set("depth", "2")
	var list PostList
	if err := c.getJSON(ctx, "/api/posts", q, &list); err != nil {
		return content.Post{}, fmt.Errorf("cms: get post %q: %w", slug, err)
	}
	if len(list.Docs) == 0 {
		return content.Post{}, ErrNotFound
	}
	return list.Docs[0], nil
}

// SearchPosts returns posts whose title contains query. Queries shorter
// than MinQueryLength return an empty list without contacting the CMS.
func (c *Client) SearchPosts(ctx context.Context, query string, limit int) (PostList, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return PostList{Docs: []content.Post{}}, nil
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("where[title][contains]", query)
	var list PostList
	if err := c.getJSON(ctx, "/api/posts", q, &list); err != nil {
		return PostList{}, fmt.Errorf("cms: search posts: %w", err)
	}
	if list.Docs == nil {
		list.Docs = []content.Post{}
	}
	return list, nil
}

// ListCategories returns all categories ordered by title.
func (c *Client) ListCategories(ctx context.Context) ([]content.CategoryRef, error) {
	q := url.Values{}
	q.Set("limit", "100")
	q.Set("sort", "title")
	var list struct {
		Docs []content.CategoryRef `json:"docs"`
	}
	if err := c.getJSON(ctx, "/api/categories", q, &list); err != nil {
		return nil, fmt.Errorf("cms: list categories: %w", err)
	}
	return list.Docs, nil
}

// Subscribe registers a newsletter subscriber and returns the CMS response
// body unchanged.
func (c *Client) Subscribe(ctx context.Context, req SubscribeRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+"/api/subscribers/subscribe", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warnf("subscribe: %v", err)
		return nil, fmt.Errorf("cms: subscribe: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cms: subscribe: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp, data)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("cms: subscribe: invalid JSON response")
	}
	return data, nil
}

// FetchMedia opens the media file at rawURL, resolving /api paths against
// the CMS origin. The caller closes the returned body.
func (c *Client) FetchMedia(ctx context.Context, rawURL string) (io.ReadCloser, string, error) {
	full := content.ResolveFullURL(rawURL, c.origin)
	u, err := url.Parse(full)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, "", fmt.Errorf("cms: fetch media %q: not an absolute URL", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("cms: fetch media: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, "", ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v interface{}) error {
	full := c.origin + path
	if len(q) > 0 {
		full += "?" + q.Encode()
	}

	if c.cache != nil {
		data, ok, err := c.cache.Get(ctx, full)
		if err != nil {
			c.logger.Warnf("cache get %s: %v", full, err)
		}
		if ok {
			return json.Unmarshal(data, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	c.logger.Debugf("GET %s", full)
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warnf("GET %s: %v", full, err)
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnf("GET %s: %s", full, resp.Status)
		return statusError(resp, data)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, full, data, c.cacheTTL); err != nil {
			c.logger.Warnf("cache set %s: %v", full, err)
		}
	}
	return nil
}

// statusError builds a StatusError, taking the message from the CMS error
// body ({"message": ...} or {"errors": [{"message": ...}]}) when present.
func statusError(resp *http.Response, body []byte) error {
	se := &StatusError{Code: resp.StatusCode, Status: resp.Status}
	var payload struct {
		Message string `json:"message"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &payload) == nil {
		se.Message = payload.Message
		if se.Message == "" && len(payload.Errors) > 0 {
			se.Message = payload.Errors[0].Message
		}
	}
	return se
}
