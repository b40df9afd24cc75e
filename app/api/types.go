package api

import (
	"context"
	"time"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/article"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/feed"
)

type BatchAnalyzer interface {
	ProcessBatch(ctx context.Context, urls []string, opts article.Options) ([]article.Outcome, error)
	MaxURLs() int
}

var _ BatchAnalyzer = (*article.Analyzer)(nil)

type FeedParser interface {
	Links(data []byte, limit int) (string, []string, error)
}

var _ FeedParser = (*feed.Parser)(nil)

// ServiceInfo is reported by the health endpoint.
type ServiceInfo struct {
	Version      string
	ChargedWords int
	Sites        []string
}

type Handler struct {
	analyzer     BatchAnalyzer
	fetcher      article.PageFetcher
	feedParser   FeedParser
	fetchTimeout time.Duration
	info         ServiceInfo
}

// ScoreRequest is the JSON body of POST /api/articles. Timeouts use Go
// duration syntax, e.g. "500ms".
type ScoreRequest struct {
	URLs           []string `json:"urls"`
	FetchTimeout   string   `json:"fetch_timeout"`
	ProcessTimeout string   `json:"process_timeout"`
}

type FeedResponse struct {
	Feed    string            `json:"feed"`
	URL     string            `json:"url"`
	Results []article.Outcome `json:"results"`
}
