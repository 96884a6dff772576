package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
)

type captured struct {
	path   string
	auth   string
	params map[string]any
	inputs string
}

func newServer(t *testing.T, status int, reply string, got *captured) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req inferenceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if got != nil {
			got.path = r.URL.Path
			got.auth = r.Header.Get("Authorization")
			got.params = req.Parameters
			got.inputs = req.Inputs
		}
		w.WriteHeader(status)
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"generated_text": " science"}]`, &got)
	c, err := NewClient(Config{Token: "hf_test", Endpoint: srv.URL + "/"})
	if err != nil {
		t.Fatal(err)
	}

	text, err := c.Complete(context.Background(), classify.CompletionRequest{Prompt: "pick", MaxTokens: 10})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != " science" {
		t.Errorf("Complete() = %q", text)
	}
	if got.path != "/models/"+DefaultClassifyModel {
		t.Errorf("path = %q", got.path)
	}
	if got.auth != "Bearer hf_test" {
		t.Errorf("auth = %q", got.auth)
	}
	if got.params["do_sample"] != false || got.params["max_new_tokens"] != float64(10) {
		t.Errorf("params = %v", got.params)
	}
}

func TestSummarize(t *testing.T) {
	var got captured
	srv := newServer(t, http.StatusOK, `[{"summary_text": "Short summary."}]`, &got)
	c, _ := NewClient(Config{Token: "hf_test", Endpoint: srv.URL})

	resp, err := c.Summarize(context.Background(), summarize.Request{
		Text: "long text", MinLength: 30, MaxLength: 150, Deterministic: true,
	})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if resp.Structured == nil || resp.Text() != "Short summary." {
		t.Errorf("Summarize() = %+v", resp)
	}
	if got.path != "/models/"+DefaultSummaryModel || got.inputs != "long text" {
		t.Errorf("unexpected request %+v", got)
	}
	if got.params["min_length"] != float64(30) || got.params["max_length"] != float64(150) || got.params["do_sample"] != false {
		t.Errorf("params = %v", got.params)
	}
}

func TestErrors(t *testing.T) {
	srv := newServer(t, http.StatusServiceUnavailable, `{"error": "Model is loading"}`, nil)
	c, _ := NewClient(Config{Token: "hf_test", Endpoint: srv.URL})

	if _, err := c.Complete(context.Background(), classify.CompletionRequest{Prompt: "x"}); err == nil {
		t.Error("Complete expected error")
	}
	if _, err := c.Summarize(context.Background(), summarize.Request{Text: "x"}); err == nil {
		t.Error("Summarize expected error")
	}

	odd := newServer(t, http.StatusOK, `{"unexpected": true}`, nil)
	c, _ = NewClient(Config{Token: "hf_test", Endpoint: odd.URL})
	if _, err := c.Complete(context.Background(), classify.CompletionRequest{Prompt: "x"}); err == nil {
		t.Error("Complete expected error for unknown shape")
	}
}

func TestNewClient_RequiresToken(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Error("expected error without token")
	}
}
