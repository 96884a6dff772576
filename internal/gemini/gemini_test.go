package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
	"github.com/google/generative-ai-go/genai"
)

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
	}
}

type recorder struct {
	settings generation
	prompt   string
	resp     *genai.GenerateContentResponse
	err      error
}

func (r *recorder) generate(_ context.Context, s generation, prompt string) (*genai.GenerateContentResponse, error) {
	r.settings = s
	r.prompt = prompt
	return r.resp, r.err
}

func newTestClient(r *recorder) *Client {
	return &Client{model: DefaultModel, generate: r.generate}
}

func TestComplete(t *testing.T) {
	r := &recorder{resp: textResponse(" science ", "\n")}
	c := newTestClient(r)

	got, err := c.Complete(context.Background(), classify.CompletionRequest{
		Prompt: "pick one", MaxTokens: 10, Temperature: 0,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "science" {
		t.Errorf("Complete() = %q", got)
	}
	if r.settings.maxTokens != 10 || r.settings.temperature != 0 || r.settings.jsonOutput {
		t.Errorf("unexpected settings %+v", r.settings)
	}
}

func TestSummarize_DecodesBothShapes(t *testing.T) {
	for raw, want := range map[string]string{
		`{"summary_text": "Birds migrate early."}`: "Birds migrate early.",
		"Birds migrate early.":                     "Birds migrate early.",
	} {
		r := &recorder{resp: textResponse(raw)}
		resp, err := newTestClient(r).Summarize(context.Background(), summarize.Request{
			Text: "article body", MinLength: 30, MaxLength: 150, Deterministic: true,
		})
		if err != nil {
			t.Fatalf("Summarize failed: %v", err)
		}
		if got := resp.Text(); got != want {
			t.Errorf("Summarize(%q) = %q, want %q", raw, got, want)
		}
		if !r.settings.jsonOutput || r.settings.temperature != 0 {
			t.Errorf("unexpected settings %+v", r.settings)
		}
		if !strings.Contains(r.prompt, "article body") || !strings.Contains(r.prompt, "30 to 150") {
			t.Errorf("prompt missing body or bounds: %q", r.prompt)
		}
	}
}

func TestErrors(t *testing.T) {
	empty := &genai.GenerateContentResponse{}
	cases := []*recorder{
		{err: errors.New("quota exceeded")},
		{resp: empty},
		{resp: textResponse("   ")},
	}
	for i, r := range cases {
		c := newTestClient(r)
		if _, err := c.Complete(context.Background(), classify.CompletionRequest{Prompt: "x"}); err == nil {
			t.Errorf("case %d: Complete expected error", i)
		}
		if _, err := c.Summarize(context.Background(), summarize.Request{Text: "x"}); err == nil {
			t.Errorf("case %d: Summarize expected error", i)
		}
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}); err == nil {
		t.Error("expected error without API key")
	}
}
