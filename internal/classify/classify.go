// Package classify maps a free-text interest onto one of a fixed set of topic
// keys using a text-generation service.
package classify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
)

// DefaultKey is used when no default is configured.
const DefaultKey = "technology"

// MaxTokens caps the classifier completion; a key is a single word.
const MaxTokens = 10

const promptTemplate = `From these categories: %s,
select the SINGLE most relevant one for: "%s".
Return ONLY the category name, nothing else.`

// CompletionRequest is one text-generation call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int32
	Temperature float32
}

// Completer is a remote text-generation service.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Resolver picks a topic key for an interest. It never fails: any problem
// with the service or its answer yields the default key.
type Resolver struct {
	completer  Completer
	defaultKey string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewResolver creates a Resolver. An empty defaultKey selects DefaultKey.
func NewResolver(c Completer, defaultKey string, timeout time.Duration, logger *slog.Logger) *Resolver {
	if defaultKey == "" {
		defaultKey = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		completer:  c,
		defaultKey: strings.ToLower(defaultKey),
		timeout:    timeout,
		logger:     logger,
	}
}

// Resolve returns the member of validKeys that best matches freeText.
func (r *Resolver) Resolve(ctx context.Context, freeText string, validKeys []string) string {
	keys := make([]string, len(validKeys))
	copy(keys, validKeys)
	sort.Strings(keys)

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	raw, err := r.completer.Complete(ctx, CompletionRequest{
		Prompt:      BuildPrompt(freeText, keys),
		MaxTokens:   MaxTokens,
		Temperature: 0,
	})
	if err != nil {
		r.logger.Warn("LLM category selection error, using default", "interest", freeText, "error", err)
		return r.fallback(keys)
	}

	key := Clean(raw)
	if contains(keys, key) {
		r.logger.Info("selected category", "category", key, "interest", freeText)
		return key
	}

	r.logger.Warn("classifier answered outside the key set, using default",
		"interest", freeText, "answer", raw)
	return r.fallback(keys)
}

func (r *Resolver) fallback(keys []string) string {
	if len(keys) == 0 || contains(keys, r.defaultKey) {
		return r.defaultKey
	}
	return keys[0]
}

// BuildPrompt renders the classification prompt.
func BuildPrompt(freeText string, keys []string) string {
	return fmt.Sprintf(promptTemplate, strings.Join(keys, ", "), freeText)
}

// Clean lowercases s and drops every rune outside a-z.
func Clean(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func contains(keys []string, k string) bool {
	i := sort.SearchStrings(keys, k)
	return i < len(keys) && keys[i] == k
}
