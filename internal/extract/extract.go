// Package extract resolves an article URL to its full readable content.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/sethvargo/go-retry"
	"github.com/sym01/htmlsanitizer"
)

// Sites serve wildly different markup to obvious bots.
const browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// Content is considered present only when the extracted text clears this
// many characters after trimming.
const minContentLen = 80

const maxBodyBytes = 4 << 20

// ErrInsufficient means extraction ran but produced too little to be worth
// showing; callers fall back to the feed's own description.
var ErrInsufficient = errors.New("extracted content too short")

// Content is a successfully extracted article body.
type Content struct {
	Title    string
	Text     string
	HTML     string
	Authors  []string
	TopImage string
}

type Extractor struct {
	client *http.Client
}

func New() *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: 12 * time.Second},
	}
}

// Extract downloads the page and runs readability over it. Transient
// transport failures are retried a couple of times before giving up.
func (e *Extractor) Extract(ctx context.Context, link string) (Content, error) {
	u, err := url.Parse(link)
	if err != nil || link == "" {
		return Content{}, fmt.Errorf("bad article url %q", link)
	}

	var body []byte
	backoff := retry.WithMaxRetries(2, retry.NewExponential(300*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", browserUserAgent)

		resp, err := e.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return Content{}, fmt.Errorf("error fetching article: %w", err)
	}

	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), u)
	if err != nil {
		return Content{}, fmt.Errorf("error extracting article: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if len(text) <= minContentLen {
		return Content{}, ErrInsufficient
	}

	sanitized, err := htmlsanitizer.NewHTMLSanitizer().SanitizeString(article.Content)
	if err != nil {
		return Content{}, fmt.Errorf("error sanitizing article: %w", err)
	}
	if strings.TrimSpace(sanitized) == "" {
		sanitized = paragraphHTML(text)
	}

	var authors []string
	if byline := strings.TrimSpace(article.Byline); byline != "" {
		authors = []string{byline}
	}

	return Content{
		Title:    article.Title,
		Text:     text,
		HTML:     sanitized,
		Authors:  authors,
		TopImage: article.Image,
	}, nil
}

// paragraphHTML wraps plain text into minimal markup when readability
// produced text but no usable document.
func paragraphHTML(text string) string {
	var b strings.Builder
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}
