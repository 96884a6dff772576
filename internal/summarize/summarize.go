// Package summarize condenses extracted article text through a remote
// summarization service. Failures never escape: they become fixed placeholders.
package summarize

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

const (
	// NoContent is the summary of an article whose text could not be extracted.
	NoContent = "Could not extract content"
	// Failed is the summary of an article the service could not summarize.
	Failed = "Could not generate AI summary"

	// MaxInputRunes bounds the text sent to the service.
	MaxInputRunes = 2000
	MinLength     = 30
	MaxLength     = 150
)

// Request is one summarization call.
type Request struct {
	Text      string
	MinLength int
	MaxLength int
	// Deterministic asks the service for greedy decoding (no sampling).
	Deterministic bool
}

// Structured is the mapping shape of a summarization response.
type Structured struct {
	SummaryText string `json:"summary_text"`
}

// Response is what a Backend returns: either a Structured payload or plain text.
type Response struct {
	Structured *Structured
	Plain      string
}

// Text normalizes both response shapes to the summary string.
func (r Response) Text() string {
	if r.Structured != nil {
		return strings.TrimSpace(r.Structured.SummaryText)
	}
	return strings.TrimSpace(r.Plain)
}

// DecodeResponse recognizes {"summary_text": ...}, a list of such objects,
// and a JSON string. Anything else is kept as plain text. A JSON object or
// list without a summary decodes to an empty Structured value.
func DecodeResponse(raw []byte) Response {
	body := strings.TrimSpace(string(raw))
	body = trimCodeFence(body)

	var one Structured
	if err := json.Unmarshal([]byte(body), &one); err == nil {
		return Response{Structured: &one}
	}
	var many []Structured
	if err := json.Unmarshal([]byte(body), &many); err == nil {
		if len(many) == 0 {
			return Response{Structured: &Structured{}}
		}
		return Response{Structured: &many[0]}
	}
	var plain string
	if err := json.Unmarshal([]byte(body), &plain); err == nil {
		return Response{Plain: plain}
	}
	return Response{Plain: body}
}

// trimCodeFence removes a ```json ... ``` wrapper some models add.
func trimCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Backend is a remote summarization service.
type Backend interface {
	Summarize(ctx context.Context, req Request) (Response, error)
}

// Summarizer wraps a Backend with truncation, timeouts and placeholders.
type Summarizer struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Summarizer. Each backend call is bounded by timeout.
func New(backend Backend, timeout time.Duration, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{backend: backend, timeout: timeout, logger: logger}
}

// Summarize returns a summary of body, NoContent when body is empty, or Failed
// when the service errors or answers with nothing.
func (s *Summarizer) Summarize(ctx context.Context, body string) string {
	if strings.TrimSpace(body) == "" {
		return NoContent
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.backend.Summarize(ctx, Request{
		Text:          Truncate(body, MaxInputRunes),
		MinLength:     MinLength,
		MaxLength:     MaxLength,
		Deterministic: true,
	})
	if err != nil {
		s.logger.Warn("AI summary error", "error", err)
		return Failed
	}

	text := resp.Text()
	if text == "" {
		s.logger.Warn("AI summary was empty")
		return Failed
	}
	return text
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

