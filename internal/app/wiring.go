package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/newsletter/internal/catalog"
	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/config"
	"github.com/deusflow/newsletter/internal/gemini"
	"github.com/deusflow/newsletter/internal/huggingface"
	"github.com/deusflow/newsletter/internal/metrics"
	"github.com/deusflow/newsletter/internal/ratelimit"
	"github.com/deusflow/newsletter/internal/rss"
	"github.com/deusflow/newsletter/internal/scraper"
	"github.com/deusflow/newsletter/internal/summarize"
)

// Build wires a Pipeline from cfg. Every LLM call is charged to quota when it
// is not nil. The returned close function releases the LLM client.
func Build(ctx context.Context, cfg *config.Config, quota *ratelimit.DailyQuota, logger *slog.Logger) (*Pipeline, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	cat := catalog.Default()
	if cfg.FeedsConfigPath != "" {
		var err error
		if cat, err = catalog.Load(cfg.FeedsConfigPath); err != nil {
			return nil, nil, err
		}
	}

	llm, closeFn, err := newBackend(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if quota != nil {
		llm = ratelimit.Limit(llm, quota)
	}

	p := New(Deps{
		Catalog:    cat,
		Resolver:   classify.NewResolver(llm, cfg.DefaultTopic, cfg.ClassifyTimeout, logger),
		Feeds:      rss.NewReader(cfg.FeedTimeout, logger),
		Extractor:  scraper.NewExtractor(cfg.PageTimeout, cfg.UserAgent),
		Summarizer: summarize.New(llm, cfg.SummarizeTimeout, logger),
		Metrics:    metrics.Global,
		Logger:     logger,
	}, Options{
		ArticlesPerFeed: cfg.ArticlesPerFeed,
		Workers:         cfg.Workers,
		RunTimeout:      cfg.RunTimeout,
	})
	return p, closeFn, nil
}

func newBackend(ctx context.Context, cfg *config.Config) (ratelimit.Backend, func(), error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	case config.ProviderHuggingFace:
		c, err := huggingface.NewClient(huggingface.Config{
			Token:         cfg.HFToken,
			Endpoint:      cfg.HFEndpoint,
			ClassifyModel: cfg.HFClassifyModel,
			SummaryModel:  cfg.HFSummaryModel,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
