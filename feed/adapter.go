package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/IamLizu/news-aggregator/core"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
)

const (
	// DefaultTimeout bounds a whole fetch, including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every feed request.
	DefaultUserAgent = "news-aggregator/1.0 (+https://github.com/IamLizu/news-aggregator)"
)

// Adapter retrieves and parses feeds.
type Adapter struct {
	client    *http.Client
	userAgent string
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout sets the HTTP client timeout.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		if timeout > 0 {
			a.client.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the HTTP client. Its timeout is used as is.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Adapter) {
		if client != nil {
			a.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(a *Adapter) {
		a.userAgent = userAgent
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAdapter creates a feed adapter.
func NewAdapter(opts ...Option) *Adapter {
	a := &Adapter{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "feed-adapter")
	return a
}

// Parse fetches feedURL and returns its items.
func (a *Adapter) Parse(ctx context.Context, feedURL string) (*core.FeedDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrFetchFailed, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	parsed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %w", ErrFetchFailed, err)
	}

	doc := &core.FeedDocument{
		Title: strings.TrimSpace(parsed.Title),
		Items: make([]core.FeedItem, 0, len(parsed.Items)),
	}
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		doc.Items = append(doc.Items, a.convertItem(item))
	}

	a.logger.Debug("parsed feed", "url", feedURL, "title", doc.Title, "items", len(doc.Items))
	return doc, nil
}

// convertItem maps a gofeed item onto core.FeedItem.
func (a *Adapter) convertItem(item *gofeed.Item) core.FeedItem {
	snippetSource := item.Content
	if strings.TrimSpace(snippetSource) == "" {
		snippetSource = item.Description
	}

	return core.FeedItem{
		Title:          item.Title,
		Link:           item.Link,
		PubDate:        item.PublishedParsed,
		ISODate:        item.UpdatedParsed,
		ContentSnippet: a.stripMarkup(snippetSource),
		Description:    item.Description,
		Content:        item.Content,
	}
}

// stripMarkup removes all HTML and collapses whitespace.
func (a *Adapter) stripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(a.sanitizer.Sanitize(s))), " ")
}
