package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultUserAgent is sent with page requests; some origins reject clients
// without a browser-like identification.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const maxPageBytes = 5 << 20

// noiseSelector lists subtrees that never hold article text.
const noiseSelector = "script, style, noscript, nav, footer, iframe, aside"

// ExtractionError wraps any failure to obtain text from a page.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor fetches article pages and returns their readable text.
type Extractor struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

// NewExtractor creates an Extractor. An empty userAgent selects DefaultUserAgent.
func NewExtractor(timeout time.Duration, userAgent string) *Extractor {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Extract returns the whitespace-normalized visible text of the page's main
// content. On any failure the text is empty and an *ExtractionError is returned.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &ExtractionError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", &ExtractionError{URL: url, Err: fmt.Errorf("error loading page: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &ExtractionError{URL: url, Err: fmt.Errorf("HTTP error: %d", resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", &ExtractionError{URL: url, Err: fmt.Errorf("error parsing HTML: %w", err)}
	}

	text := ExtractText(doc)
	if text == "" {
		return "", &ExtractionError{URL: url, Err: fmt.Errorf("no content found")}
	}
	return text, nil
}

// ExtractText strips noise subtrees from doc and joins the text nodes of the
// content root: the first article, else the first main, else body.
func ExtractText(doc *goquery.Document) string {
	doc.Find(noiseSelector).Remove()

	root := contentRoot(doc)
	if root == nil {
		return ""
	}

	var parts []string
	collectText(root, &parts)
	return strings.Join(parts, " ")
}

func contentRoot(doc *goquery.Document) *html.Node {
	for _, sel := range []string{"article", "main", "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s.Nodes[0]
		}
	}
	return nil
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
