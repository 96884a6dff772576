package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/deusflow/newsletter/internal/app"
	"github.com/deusflow/newsletter/internal/config"
	"github.com/deusflow/newsletter/internal/logger"
	"github.com/deusflow/newsletter/internal/newsletter"
	"github.com/deusflow/newsletter/internal/profile"
	"github.com/deusflow/newsletter/internal/ratelimit"
	"github.com/spf13/cobra"
)

const (
	exitFormat = 2
	exitEmpty  = 3

	formatMarkdown = "md"
	formatHTML     = "html"

	emptyMessage = "Could not fetch any articles. Please try again later."
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "newsletter",
		Short: "Build a personalized news digest from a one-line reader profile",
		Long: `newsletter turns a profile line such as

  ` + profile.Example + `

into a digest with highlights, news for the reader's interest and news for
their country. Articles are fetched from RSS feeds and summarized by an LLM
(Gemini or the Hugging Face Inference API, see LLM_PROVIDER).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newServeCmd())
	return root
}

type runtime struct {
	cfg      *config.Config
	pipeline *app.Pipeline
	quota    *ratelimit.DailyQuota
	close    func()
}

// setup loads the configuration and wires a pipeline.
func setup(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	// stdout may carry the newsletter itself.
	logger.InitWriter(os.Stderr, cfg.Debug)

	quota := ratelimit.NewDailyQuota(cfg.LLMDailyLimit)
	p, closeFn, err := app.Build(ctx, cfg, quota, logger.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pipeline: %w", err)
	}
	return &runtime{cfg: cfg, pipeline: p, quota: quota, close: closeFn}, nil
}

// render encodes doc in format and returns the bytes with the file extension
// and content type to publish them under.
func render(doc *newsletter.Document, format string) ([]byte, string, string, error) {
	switch format {
	case formatMarkdown, "":
		return []byte(newsletter.RenderMarkdown(doc)), formatMarkdown, "text/markdown; charset=utf-8", nil
	case formatHTML:
		return newsletter.RenderHTML(doc), formatHTML, "text/html; charset=utf-8", nil
	default:
		return nil, "", "", fmt.Errorf("unknown format %q (want %s or %s)", format, formatMarkdown, formatHTML)
	}
}

// exitFor maps a pipeline error to the exit code of the shell.
func exitFor(err error) error {
	var fe *profile.FormatError
	switch {
	case errors.As(err, &fe):
		return &exitError{code: exitFormat, err: err}
	case errors.Is(err, app.ErrEmptyResult):
		return &exitError{code: exitEmpty, err: errors.New(emptyMessage)}
	default:
		return err
	}
}
