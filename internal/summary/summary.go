// Package summary condenses extracted article text via Claude.
package summary

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	vferrs "github.com/jdholdren/vaultfeed/internal/errors"
)

//go:embed system_prompt.txt
var systemPrompt string

// MinTextLen rejects summarize requests for bodies too short to bother
// with; the same threshold the extraction side uses for "content present".
const MinTextLen = 80

type Summarizer struct {
	client anthropic.Client
}

func New(apiKey string) *Summarizer {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &Summarizer{client: anthropic.NewClient(opts...)}
}

// Summarize produces a short summary of the given article body. The text
// is validated locally before any request goes out.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if len(text) < MinTextLen {
		return "", vferrs.E("not enough article text to summarize", http.StatusUnprocessableEntity)
	}

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     "claude-haiku-4-5",
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{{
			Text: systemPrompt,
		}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	var claudeErr *anthropic.Error
	if errors.As(err, &claudeErr) && claudeErr.StatusCode == http.StatusTooManyRequests {
		return "", vferrs.E("summarizer is rate limited, try again shortly", http.StatusTooManyRequests)
	}
	if err != nil {
		return "", vferrs.E(fmt.Errorf("error summarizing: %w", err), http.StatusBadGateway)
	}

	var out strings.Builder
	for _, block := range resp.Content {
		out.WriteString(block.Text)
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", vferrs.E("summarizer returned nothing", http.StatusBadGateway)
	}

	return out.String(), nil
}
