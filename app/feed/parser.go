package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// Parser is safe for concurrent use. gofeed parsers keep per-parse state,
// so every call builds its own.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Links returns up to limit unique article links from an RSS, Atom or JSON
// feed, in feed order. Items without a link fall back to a GUID that looks
// like a URL.
func (p *Parser) Links(data []byte, limit int) (string, []string, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	seen := make(map[string]struct{}, len(feed.Items))
	links := make([]string, 0, min(limit, len(feed.Items)))

	for _, item := range feed.Items {
		if limit > 0 && len(links) >= limit {
			break
		}
		if item == nil {
			continue
		}

		link := strings.TrimSpace(cmp.Or(item.Link, p.guidLink(item.GUID)))
		if link == "" {
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}

	return feed.Title, links, nil
}

func (p *Parser) guidLink(guid string) string {
	if strings.HasPrefix(guid, "http://") || strings.HasPrefix(guid, "https://") {
		return guid
	}
	return ""
}
