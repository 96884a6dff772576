package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
)

type countingBackend struct{ calls int }

func (c *countingBackend) Complete(context.Context, classify.CompletionRequest) (string, error) {
	c.calls++
	return "science", nil
}

func (c *countingBackend) Summarize(context.Context, summarize.Request) (summarize.Response, error) {
	c.calls++
	return summarize.Response{Plain: "ok"}, nil
}

func TestDailyQuota_Take(t *testing.T) {
	q := NewDailyQuota(2)

	for i := 0; i < 2; i++ {
		if err := q.Take(); err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
	}
	if err := q.Take(); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}

	stats := q.GetStats()
	if stats["llm_used"] != 2 || stats["llm_refused"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}

func TestDailyQuota_Reset(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	q := NewDailyQuota(1)
	q.now = func() time.Time { return now }
	q.resetTime = now.Add(24 * time.Hour)

	if err := q.Take(); err != nil {
		t.Fatal(err)
	}
	if err := q.Take(); err == nil {
		t.Fatal("expected quota error")
	}

	now = now.Add(25 * time.Hour)
	if err := q.Take(); err != nil {
		t.Errorf("after reset: %v", err)
	}
}

func TestDailyQuota_Unlimited(t *testing.T) {
	q := NewDailyQuota(0)
	for i := 0; i < 100; i++ {
		if err := q.Take(); err != nil {
			t.Fatalf("take %d: %v", i, err)
		}
	}
}

func TestLimited(t *testing.T) {
	b := &countingBackend{}
	l := Limit(b, NewDailyQuota(1))
	ctx := context.Background()

	if _, err := l.Complete(ctx, classify.CompletionRequest{}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Summarize(ctx, summarize.Request{}); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("err = %v, want ErrQuotaExceeded", err)
	}
	if b.calls != 1 {
		t.Errorf("backend calls = %d, want 1", b.calls)
	}
}

func TestLimited_DegradesSummarizer(t *testing.T) {
	s := summarize.New(Limit(&countingBackend{}, NewDailyQuota(1)), time.Second, nil)
	ctx := context.Background()

	if got := s.Summarize(ctx, "some article text"); got != "ok" {
		t.Errorf("first summary = %q", got)
	}
	if got := s.Summarize(ctx, "some article text"); got != summarize.Failed {
		t.Errorf("over-quota summary = %q, want %q", got, summarize.Failed)
	}
}
