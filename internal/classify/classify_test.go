package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeCompleter struct {
	answer string
	err    error
	delay  time.Duration
	got    CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.got = req
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.answer, f.err
}

var topicKeys = []string{"technology", "ai", "science", "business", "health",
	"sports", "entertainment", "politics", "education", "environment"}

func TestResolve_ValidAnswer(t *testing.T) {
	cases := map[string]string{
		"science":       "science",
		"  Science.\n":  "science",
		"AI":            "ai",
		"**Sports**":    "sports",
		"environment 1": "environment",
	}
	for answer, want := range cases {
		fc := &fakeCompleter{answer: answer}
		r := NewResolver(fc, "technology", time.Second, nil)
		if got := r.Resolve(context.Background(), "Ornithology", topicKeys); got != want {
			t.Errorf("answer %q resolved to %q, want %q", answer, got, want)
		}
	}
}

func TestResolve_FallsBackToDefault(t *testing.T) {
	cases := map[string]*fakeCompleter{
		"empty":        {answer: ""},
		"out of vocab": {answer: "ornithology"},
		"sentence":     {answer: "The answer is science"},
		"digits only":  {answer: "42"},
		"error":        {err: errors.New("connection refused")},
		"timeout":      {answer: "science", delay: time.Second},
	}
	for name, fc := range cases {
		r := NewResolver(fc, "technology", 50*time.Millisecond, nil)
		if got := r.Resolve(context.Background(), "Ornithology", topicKeys); got != "technology" {
			t.Errorf("%s: resolved to %q, want technology", name, got)
		}
	}
}

func TestResolve_AlwaysMemberOfKeySet(t *testing.T) {
	keys := []string{"birds", "fish"}
	answers := []string{"", "technology", "BIRDS!", "fish", "???", "reptiles"}
	for _, a := range answers {
		r := NewResolver(&fakeCompleter{answer: a}, "technology", time.Second, nil)
		got := r.Resolve(context.Background(), "anything", keys)
		if got != "birds" && got != "fish" {
			t.Errorf("answer %q resolved to %q, not in key set", a, got)
		}
	}
}

func TestResolve_RequestShape(t *testing.T) {
	fc := &fakeCompleter{answer: "science"}
	NewResolver(fc, "", time.Second, nil).Resolve(context.Background(), "Ornithology", topicKeys)

	if fc.got.Temperature != 0 || fc.got.MaxTokens != MaxTokens {
		t.Errorf("request not deterministic/short: %+v", fc.got)
	}
	if !strings.Contains(fc.got.Prompt, `"Ornithology"`) {
		t.Errorf("prompt does not embed interest: %q", fc.got.Prompt)
	}
	for _, k := range topicKeys {
		if !strings.Contains(fc.got.Prompt, k) {
			t.Errorf("prompt does not list key %q", k)
		}
	}
}

func TestClean(t *testing.T) {
	if got := Clean(" Tech-nology 2.0! "); got != "technology" {
		t.Errorf("Clean() = %q", got)
	}
}
