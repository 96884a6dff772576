// Package huggingface is a client for the Hugging Face Inference API, used as
// an alternative classifier and summarization backend.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
)

const (
	DefaultEndpoint       = "https://api-inference.huggingface.co"
	DefaultClassifyModel  = "HuggingFaceH4/zephyr-7b-beta"
	DefaultSummaryModel   = "facebook/bart-large-cnn"
	maxResponseBytes      = 1 << 20
	defaultRequestTimeout = 60 * time.Second
)

// Config holds credentials and model names. Zero fields take defaults.
type Config struct {
	Token         string
	Endpoint      string
	ClassifyModel string
	SummaryModel  string
	// HTTPClient overrides the transport; callers bound each call with a context.
	HTTPClient *http.Client
}

// Client calls text-generation and summarization models.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("hugging face token is required")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")
	if cfg.ClassifyModel == "" {
		cfg.ClassifyModel = DefaultClassifyModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = DefaultSummaryModel
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{cfg: cfg, http: hc}, nil
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Options    map[string]any `json:"options,omitempty"`
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

// Complete implements classify.Completer using a text-generation model.
func (c *Client) Complete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	params := map[string]any{
		"max_new_tokens":   req.MaxTokens,
		"return_full_text": false,
		"do_sample":        req.Temperature > 0,
	}
	if req.Temperature > 0 {
		params["temperature"] = req.Temperature
	}

	body, err := c.post(ctx, c.cfg.ClassifyModel, inferenceRequest{Inputs: req.Prompt, Parameters: params})
	if err != nil {
		return "", err
	}

	var list []generatedText
	if err := json.Unmarshal(body, &list); err == nil && len(list) > 0 {
		return list[0].GeneratedText, nil
	}
	var one generatedText
	if err := json.Unmarshal(body, &one); err == nil && one.GeneratedText != "" {
		return one.GeneratedText, nil
	}
	return "", fmt.Errorf("unexpected text-generation response: %.200s", body)
}

// Summarize implements summarize.Backend using a summarization model.
func (c *Client) Summarize(ctx context.Context, req summarize.Request) (summarize.Response, error) {
	body, err := c.post(ctx, c.cfg.SummaryModel, inferenceRequest{
		Inputs: req.Text,
		Parameters: map[string]any{
			"min_length": req.MinLength,
			"max_length": req.MaxLength,
			"do_sample":  !req.Deterministic,
		},
	})
	if err != nil {
		return summarize.Response{}, err
	}
	return summarize.DecodeResponse(body), nil
}

func (c *Client) post(ctx context.Context, model string, payload inferenceRequest) ([]byte, error) {
	payload.Options = map[string]any{"wait_for_model": true}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error make JSON: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.cfg.Endpoint, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request %s: %w", model, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read inference response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("inference %s: HTTP %d: %s", model, resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("inference %s: HTTP %d", model, resp.StatusCode)
	}
	return body, nil
}
