// Package ratelimit caps how many LLM calls a long-running process makes per day.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
)

// ErrQuotaExceeded is returned once the daily budget is spent.
var ErrQuotaExceeded = errors.New("daily LLM quota exceeded")

// DailyQuota counts calls against a limit that resets every 24 hours.
// A zero limit never refuses.
type DailyQuota struct {
	mu        sync.Mutex
	used      int
	refused   int
	max       int
	resetTime time.Time
	now       func() time.Time
}

// NewDailyQuota creates a quota of max calls per day.
func NewDailyQuota(max int) *DailyQuota {
	q := &DailyQuota{max: max, now: time.Now}
	q.resetTime = q.now().Add(24 * time.Hour)
	return q
}

// Take consumes one call or returns ErrQuotaExceeded.
func (q *DailyQuota) Take() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.checkReset()

	if q.max > 0 && q.used >= q.max {
		q.refused++
		return fmt.Errorf("%w (%d/%d)", ErrQuotaExceeded, q.used, q.max)
	}
	q.used++
	return nil
}

// GetStats returns current quota statistics.
func (q *DailyQuota) GetStats() map[string]interface{} {
	q.mu.Lock()
	defer q.mu.Unlock()

	return map[string]interface{}{
		"llm_used":       q.used,
		"llm_limit":      q.max,
		"llm_refused":    q.refused,
		"llm_reset_time": q.resetTime.Format(time.RFC3339),
	}
}

// checkReset resets counters if reset time has passed
func (q *DailyQuota) checkReset() {
	if now := q.now(); now.After(q.resetTime) {
		q.used = 0
		q.refused = 0
		q.resetTime = now.Add(24 * time.Hour)
	}
}

// Backend is an LLM service able to classify and summarize.
type Backend interface {
	classify.Completer
	summarize.Backend
}

// Limited charges every call of a Backend to a DailyQuota.
type Limited struct {
	backend Backend
	quota   *DailyQuota
}

// Limit wraps b so that calls beyond q fail without reaching the service.
func Limit(b Backend, q *DailyQuota) *Limited {
	return &Limited{backend: b, quota: q}
}

func (l *Limited) Complete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	if err := l.quota.Take(); err != nil {
		return "", err
	}
	return l.backend.Complete(ctx, req)
}

func (l *Limited) Summarize(ctx context.Context, req summarize.Request) (summarize.Response, error) {
	if err := l.quota.Take(); err != nil {
		return summarize.Response{}, err
	}
	return l.backend.Summarize(ctx, req)
}
