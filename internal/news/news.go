// Package news defines the article records that flow through the digest pipeline.
package news

// Stub is an article reference read from a feed, before its page is fetched.
type Stub struct {
	Title       string
	URL         string
	SourceHost  string
	PublishedAt string // raw feed value, may be empty
	FeedURL     string
}

// Article is a Stub enriched with extracted text and a summary.
// An empty Body means extraction failed.
type Article struct {
	Stub
	Body    string
	Summary string
}

// Published returns the raw publish date or "N/A".
func (s Stub) Published() string {
	if s.PublishedAt == "" {
		return "N/A"
	}
	return s.PublishedAt
}
