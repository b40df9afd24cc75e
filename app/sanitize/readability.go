package sanitize

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadabilityAdapter extracts the main text of pages from any site.
type ReadabilityAdapter struct{}

func NewReadabilityAdapter() *ReadabilityAdapter {
	return &ReadabilityAdapter{}
}

func (e *ReadabilityAdapter) Sanitize(pageURL string, html []byte) (string, error) {
	if len(html) == 0 {
		return "", fmt.Errorf("%w: HTML data is empty", ErrArticleNotFound)
	}

	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		parsedURL = nil
	}

	article, err := readability.FromReader(bytes.NewReader(html), parsedURL)
	if err != nil {
		return "", fmt.Errorf("%w: failed to extract content: %v", ErrArticleNotFound, err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("%w: no content extracted from %s", ErrArticleNotFound, pageURL)
	}

	slog.Debug("Content extracted successfully",
		"url", pageURL,
		"title", article.Title,
		"content_length", len(text))

	return text, nil
}
