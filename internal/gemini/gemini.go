package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/deusflow/newsletter/internal/classify"
	"github.com/deusflow/newsletter/internal/summarize"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is configured.
const DefaultModel = "gemini-1.5-flash"

// jsonOverheadTokens leaves room for the {"summary_text": ...} wrapper.
const jsonOverheadTokens = 32

const summaryPrompt = `Summarize the news article below in %d to %d tokens.
Write plain prose, no preamble. Answer as JSON: {"summary_text": "<summary>"}

ARTICLE:
%s`

// Config holds the credentials and model for a Client.
type Config struct {
	APIKey string
	Model  string
}

// generateFunc sends one prompt with the given generation settings.
type generateFunc func(ctx context.Context, settings generation, prompt string) (*genai.GenerateContentResponse, error)

type generation struct {
	temperature float32
	maxTokens   int32
	jsonOutput  bool
}

// Client talks to Gemini. It serves both as the topic classifier and as the
// summarization backend.
type Client struct {
	client   *genai.Client
	model    string
	generate generateFunc
}

// NewClient creates a Gemini client from cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{client: client, model: cfg.Model}
	c.generate = c.generateContent
	return c, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Client) generateContent(ctx context.Context, s generation, prompt string) (*genai.GenerateContentResponse, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(s.temperature)
	model.SetMaxOutputTokens(s.maxTokens)
	if s.temperature == 0 {
		model.SetTopK(1)
	}
	if s.jsonOutput {
		model.ResponseMIMEType = "application/json"
	}
	return model.GenerateContent(ctx, genai.Text(prompt))
}

// Complete implements classify.Completer.
func (c *Client) Complete(ctx context.Context, req classify.CompletionRequest) (string, error) {
	resp, err := c.generate(ctx, generation{
		temperature: req.Temperature,
		maxTokens:   req.MaxTokens,
	}, req.Prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return responseText(resp)
}

// Summarize implements summarize.Backend.
func (c *Client) Summarize(ctx context.Context, req summarize.Request) (summarize.Response, error) {
	var temperature float32 = 0.3
	if req.Deterministic {
		temperature = 0
	}

	resp, err := c.generate(ctx, generation{
		temperature: temperature,
		maxTokens:   int32(req.MaxLength) + jsonOverheadTokens,
		jsonOutput:  true,
	}, fmt.Sprintf(summaryPrompt, req.MinLength, req.MaxLength, req.Text))
	if err != nil {
		return summarize.Response{}, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := responseText(resp)
	if err != nil {
		return summarize.Response{}, err
	}
	return summarize.DecodeResponse([]byte(text)), nil
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}
