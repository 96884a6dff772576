package rss

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deusflow/newsletter/internal/news"
	"github.com/mmcdole/gofeed"
)

// DefaultLimit is the number of stubs taken from a feed when no limit is given.
const DefaultLimit = 5

// NoTitle replaces missing entry titles.
const NoTitle = "No title"

// FeedError wraps a failure to fetch or parse one feed.
type FeedError struct {
	URL string
	Err error
}

func (e *FeedError) Error() string {
	return fmt.Sprintf("feed %s: %v", e.URL, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

// Reader downloads syndication feeds (RSS items or Atom entries).
type Reader struct {
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewReader creates a Reader whose fetches are bounded by timeout.
func NewReader(timeout time.Duration, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch returns up to limit stubs in feed order. On failure it returns an
// empty slice together with a *FeedError.
func (r *Reader) Fetch(ctx context.Context, feedURL string, limit int) ([]news.Stub, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// gofeed.Parser sets its translators lazily, so it is not shared between fetches.
	parser := gofeed.NewParser()
	parser.Client = r.client

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return []news.Stub{}, &FeedError{URL: feedURL, Err: err}
	}

	host := hostOf(feedURL)
	seen := make(map[string]struct{}, limit)
	stubs := make([]news.Stub, 0, limit)

	for _, item := range feed.Items {
		if len(stubs) >= limit {
			break
		}
		link := itemLink(item)
		if link == "" {
			r.logger.Debug("skipping feed entry without link", "feed", feedURL, "title", item.Title)
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}

		title := strings.Join(strings.Fields(item.Title), " ")
		if title == "" {
			title = NoTitle
		}
		published := strings.TrimSpace(item.Published)
		if published == "" {
			published = strings.TrimSpace(item.Updated)
		}

		stubs = append(stubs, news.Stub{
			Title:       title,
			URL:         link,
			SourceHost:  host,
			PublishedAt: published,
			FeedURL:     feedURL,
		})
	}

	r.logger.Info("loaded feed", "feed", feedURL, "entries", len(feed.Items), "stubs", len(stubs))
	return stubs, nil
}

// itemLink picks the first usable link: the text link, then any attribute link.
func itemLink(item *gofeed.Item) string {
	if link := strings.TrimSpace(item.Link); link != "" {
		return link
	}
	for _, l := range item.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return ""
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}
