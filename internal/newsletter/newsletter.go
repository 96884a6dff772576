// Package newsletter assembles and renders the personalized digest document.
package newsletter

import (
	"time"

	"github.com/deusflow/newsletter/internal/news"
	"github.com/deusflow/newsletter/internal/profile"
)

const (
	// HighlightsFromProfession and HighlightsFromCountry compose the highlights.
	HighlightsFromProfession = 2
	HighlightsFromCountry    = 1
)

// Document is one rendered-ready newsletter. It is never shared between runs.
type Document struct {
	Greeting    string
	Profile     profile.Profile
	Topic       string
	Highlights  []news.Article
	Profession  []news.Article
	Country     []news.Article
	GeneratedAt time.Time
}

// Assemble builds a Document. Highlights are the first two profession articles
// followed by the first country article, fewer when a collection is shorter.
func Assemble(p profile.Profile, profession, country []news.Article) *Document {
	prof := clone(profession)
	ctry := clone(country)

	highlights := make([]news.Article, 0, HighlightsFromProfession+HighlightsFromCountry)
	highlights = append(highlights, prof[:min(HighlightsFromProfession, len(prof))]...)
	highlights = append(highlights, ctry[:min(HighlightsFromCountry, len(ctry))]...)

	return &Document{
		Greeting:   "Hi " + p.Name,
		Profile:    p,
		Highlights: highlights,
		Profession: prof,
		Country:    ctry,
	}
}

// Empty reports whether neither section holds an article.
func (d *Document) Empty() bool {
	return len(d.Profession) == 0 && len(d.Country) == 0
}

func clone(in []news.Article) []news.Article {
	out := make([]news.Article, len(in))
	copy(out, in)
	return out
}
