// Package app runs the personalization pipeline: profile, feeds, articles,
// summaries, newsletter.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deusflow/newsletter/internal/metrics"
	"github.com/deusflow/newsletter/internal/news"
	"github.com/deusflow/newsletter/internal/newsletter"
	"github.com/deusflow/newsletter/internal/profile"
	"github.com/deusflow/newsletter/internal/summarize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyResult is matched by errors.Is when a run produced no articles at all.
var ErrEmptyResult = errors.New("no articles could be fetched")

// EmptyResultError reports a run whose both collections ended up empty.
type EmptyResultError struct {
	ProfessionFeed string
	CountryFeed    string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%v (feeds %s, %s)", ErrEmptyResult, e.ProfessionFeed, e.CountryFeed)
}

func (e *EmptyResultError) Unwrap() error { return ErrEmptyResult }

// FeedCatalog resolves keys to feed URLs.
type FeedCatalog interface {
	TopicFeed(key string) string
	CountryFeed(key string) string
	ValidTopicKeys() []string
}

// CategoryResolver maps a free-text interest to a topic key.
type CategoryResolver interface {
	Resolve(ctx context.Context, freeText string, validKeys []string) string
}

// FeedReader lists the newest stubs of a feed.
type FeedReader interface {
	Fetch(ctx context.Context, feedURL string, limit int) ([]news.Stub, error)
}

// Extractor returns the readable text of an article page.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Summarizer condenses article text; it reports failures as placeholders.
type Summarizer interface {
	Summarize(ctx context.Context, body string) string
}

// Deps are the collaborators of a Pipeline.
type Deps struct {
	Catalog    FeedCatalog
	Resolver   CategoryResolver
	Feeds      FeedReader
	Extractor  Extractor
	Summarizer Summarizer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

// Options bound the work of one run.
type Options struct {
	ArticlesPerFeed int
	Workers         int
	RunTimeout      time.Duration
}

// Pipeline turns a raw profile line into a newsletter Document.
type Pipeline struct {
	Deps
	opts Options
	now  func() time.Time
}

// New creates a Pipeline. Zero options take the package defaults.
func New(deps Deps, opts Options) *Pipeline {
	if opts.ArticlesPerFeed <= 0 {
		opts.ArticlesPerFeed = 5
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 3 * time.Minute
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Global
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Pipeline{Deps: deps, opts: opts, now: time.Now}
}

// Run builds the newsletter for raw. A malformed profile returns a
// *profile.FormatError; a run without any article returns *EmptyResultError.
// Every other failure degrades to placeholders inside the document.
func (p *Pipeline) Run(ctx context.Context, raw string) (*newsletter.Document, error) {
	start := time.Now()
	log := p.Logger.With("run_id", uuid.NewString())

	prof, err := profile.Parse(raw)
	if err != nil {
		p.Metrics.IncrementRunsRejected()
		return nil, err
	}
	log.Info("profile loaded", "name", prof.Name, "interest", prof.Interest, "age", prof.Age, "country", prof.Country)

	ctx, cancel := context.WithTimeout(ctx, p.opts.RunTimeout)
	defer cancel()

	topic := p.Resolver.Resolve(ctx, prof.Interest, p.Catalog.ValidTopicKeys())
	professionFeed := p.Catalog.TopicFeed(topic)
	countryFeed := p.Catalog.CountryFeed(prof.Country)
	log.Info("selected feeds", "topic", topic, "profession_feed", professionFeed, "country_feed", countryFeed)

	professionStubs, countryStubs := p.fetchFeeds(ctx, log, professionFeed, countryFeed)
	profession, country := p.processArticles(ctx, log, professionStubs, countryStubs)

	p.Metrics.RecordProcessingTime(time.Since(start))

	doc := newsletter.Assemble(prof, profession, country)
	if doc.Empty() {
		err := &EmptyResultError{ProfessionFeed: professionFeed, CountryFeed: countryFeed}
		p.Metrics.RecordStarvedRun(err.Error())
		log.Error("no articles were processed successfully", "error", err)
		return nil, err
	}
	doc.Topic = topic
	doc.GeneratedAt = p.now()

	p.Metrics.IncrementRunsCompleted()
	p.Metrics.SetLastRun()
	log.Info("newsletter assembled",
		"profession_articles", len(profession),
		"country_articles", len(country),
		"duration", time.Since(start).Round(time.Millisecond))
	return doc, nil
}

// fetchFeeds reads both feeds concurrently. A failed feed yields no stubs.
func (p *Pipeline) fetchFeeds(ctx context.Context, log *slog.Logger, professionFeed, countryFeed string) ([]news.Stub, []news.Stub) {
	var professionStubs, countryStubs []news.Stub
	var g errgroup.Group

	fetch := func(feedURL string, dst *[]news.Stub) {
		g.Go(func() error {
			stubs, err := p.Feeds.Fetch(ctx, feedURL, p.opts.ArticlesPerFeed)
			if err != nil {
				p.Metrics.IncrementFeedFailures()
				log.Warn("error processing RSS feed", "feed", feedURL, "error", err)
				return nil
			}
			p.Metrics.IncrementFeedsFetched()
			*dst = stubs
			return nil
		})
	}
	fetch(professionFeed, &professionStubs)
	fetch(countryFeed, &countryStubs)
	_ = g.Wait()

	return professionStubs, countryStubs
}

// processArticles extracts and summarizes every stub on a bounded pool.
// Each worker owns one slot, so output order follows feed order. Slots whose
// work was cut by the run deadline stay empty and are omitted.
func (p *Pipeline) processArticles(ctx context.Context, log *slog.Logger, professionStubs, countryStubs []news.Stub) ([]news.Article, []news.Article) {
	stubs := make([]news.Stub, 0, len(professionStubs)+len(countryStubs))
	stubs = append(stubs, professionStubs...)
	stubs = append(stubs, countryStubs...)
	if len(stubs) == 0 {
		return nil, nil
	}

	slots := make([]*news.Article, len(stubs))
	var g errgroup.Group
	g.SetLimit(min(len(stubs), p.opts.Workers))

	for i, stub := range stubs {
		g.Go(func() error {
			if a, ok := p.processArticle(ctx, log, stub); ok {
				slots[i] = &a
			}
			return nil
		})
	}
	_ = g.Wait()

	profession := collect(slots[:len(professionStubs)])
	country := collect(slots[len(professionStubs):])

	if dropped := len(stubs) - len(profession) - len(country); dropped > 0 {
		p.Metrics.AddArticlesDropped(dropped)
		log.Warn("run deadline reached, omitting unfinished articles", "dropped", dropped)
	}
	return profession, country
}

func (p *Pipeline) processArticle(ctx context.Context, log *slog.Logger, stub news.Stub) (news.Article, bool) {
	if ctx.Err() != nil {
		return news.Article{}, false
	}
	log.Debug("processing article", "title", stub.Title, "url", stub.URL)

	body, err := p.Extractor.Extract(ctx, stub.URL)
	if err != nil {
		body = ""
		if ctx.Err() == nil {
			p.Metrics.IncrementExtractionFailures()
			log.Warn("error extracting article", "url", stub.URL, "error", err)
		}
	}

	summary := p.Summarizer.Summarize(ctx, body)
	if ctx.Err() != nil {
		return news.Article{}, false
	}
	if summary == summarize.Failed {
		p.Metrics.IncrementSummaryFailures()
	}
	p.Metrics.IncrementArticlesProcessed()

	return news.Article{Stub: stub, Body: body, Summary: summary}, true
}

func collect(slots []*news.Article) []news.Article {
	out := make([]news.Article, 0, len(slots))
	for _, a := range slots {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out
}
