package sanitize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var defaultRemove = []string{
	"script", "style", "noscript", "iframe", "button", "form", "aside", "figure", "img",
}

const textBlocks = "h1, h2, h3, h4, h5, h6, p, li, blockquote"

// SiteAdapter extracts article text from pages of one site using CSS
// selectors.
type SiteAdapter struct {
	Host    string   `yaml:"host"`
	Article string   `yaml:"article"`
	Remove  []string `yaml:"remove"`
}

// InosmiAdapter handles inosmi.ru article pages.
func InosmiAdapter() *SiteAdapter {
	return &SiteAdapter{
		Host:    "inosmi.ru",
		Article: "article.article, div.article__body",
		Remove:  []string{".article__info", ".article__tags", ".article__aside", ".banner", ".social"},
	}
}

func (a *SiteAdapter) Sanitize(pageURL string, html []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse HTML: %v", ErrArticleNotFound, err)
	}

	article := doc.Find(a.Article).First()
	if article.Length() == 0 {
		return "", fmt.Errorf("%w: no %q element on %s", ErrArticleNotFound, a.Article, pageURL)
	}

	for _, selector := range defaultRemove {
		article.Find(selector).Remove()
	}
	for _, selector := range a.Remove {
		article.Find(selector).Remove()
	}

	text := plainText(article)
	if text == "" {
		return "", fmt.Errorf("%w: empty article body on %s", ErrArticleNotFound, pageURL)
	}

	return text, nil
}

func plainText(root *goquery.Selection) string {
	var paragraphs []string
	root.Find(textBlocks).Each(func(_ int, block *goquery.Selection) {
		// Nested blocks are collected through their outermost ancestor.
		if block.ParentsFiltered(textBlocks).Length() > 0 {
			return
		}
		if text := collapseSpaces(block.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	if len(paragraphs) == 0 {
		return collapseSpaces(root.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
