package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/article"
	"github.com/gin-gonic/gin"
)

func NewHandler(analyzer BatchAnalyzer, fetcher article.PageFetcher, feedParser FeedParser,
	fetchTimeout time.Duration, info ServiceInfo) *Handler {
	return &Handler{
		analyzer:     analyzer,
		fetcher:      fetcher,
		feedParser:   feedParser,
		fetchTimeout: fetchTimeout,
		info:         info,
	}
}

// GetArticles scores ?urls=a,b,c. Without the urls parameter it describes
// the service instead.
func (h *Handler) GetArticles(c *gin.Context) {
	rawURLs, ok := c.GetQueryArray("urls")
	if !ok {
		h.serviceInfo(c)
		return
	}

	opts, err := h.parseOptions(c.Query("fetch_timeout"), c.Query("process_timeout"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.processBatch(c, splitURLs(rawURLs), opts)
}

func (h *Handler) APIScoreArticles(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON body", "details": err.Error()})
		return
	}

	opts, err := h.parseOptions(req.FetchTimeout, req.ProcessTimeout)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.processBatch(c, splitURLs(req.URLs), opts)
}

// GetFeed scores the newest articles of the feed given by ?url=.
func (h *Handler) GetFeed(c *gin.Context) {
	feedURL := strings.TrimSpace(c.Query("url"))
	if feedURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed url parameter"})
		return
	}

	opts, err := h.parseOptions(c.Query("fetch_timeout"), c.Query("process_timeout"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := h.fetcher.Fetch(c.Request.Context(), feedURL, h.fetchTimeout)
	if err != nil {
		slog.Error("Feed fetch error", "url", feedURL, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch feed", "details": err.Error()})
		return
	}

	title, links, err := h.feedParser.Links(data, h.analyzer.MaxURLs())
	if err != nil {
		slog.Error("Feed parse error", "url", feedURL, "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to parse feed", "details": err.Error()})
		return
	}

	outcomes, err := h.analyzer.ProcessBatch(c.Request.Context(), links, opts)
	if err != nil {
		h.batchError(c, err)
		return
	}

	c.JSON(http.StatusOK, FeedResponse{
		Feed:    title,
		URL:     feedURL,
		Results: outcomes,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"version":       h.info.Version,
		"charged_words": h.info.ChargedWords,
		"max_urls":      h.analyzer.MaxURLs(),
		"sites":         h.info.Sites,
	})
}

func (h *Handler) serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Jaundice Rate",
		"version":     h.info.Version,
		"description": "Share of emotionally charged words in news articles",
		"endpoints": map[string]string{
			"articles": fmt.Sprintf("/?urls=<url1>,<url2> (up to %d urls)", h.analyzer.MaxURLs()),
			"feed":     "/feed?url=<feed-url>",
			"score":    "/api/articles (POST)",
			"health":   "/health",
		},
	})
}

func (h *Handler) processBatch(c *gin.Context, urls []string, opts article.Options) {
	outcomes, err := h.analyzer.ProcessBatch(c.Request.Context(), urls, opts)
	if err != nil {
		h.batchError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcomes)
}

func (h *Handler) batchError(c *gin.Context, err error) {
	if errors.Is(err, article.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	slog.Error("Batch processing error", "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Batch processing failed"})
}

func (h *Handler) parseOptions(fetchTimeout, processTimeout string) (article.Options, error) {
	var opts article.Options

	timeouts := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"fetch_timeout", fetchTimeout, &opts.FetchTimeout},
		{"process_timeout", processTimeout, &opts.ProcessTimeout},
	}

	for _, timeout := range timeouts {
		if timeout.value == "" {
			continue
		}
		d, err := time.ParseDuration(timeout.value)
		if err != nil || d <= 0 {
			return opts, fmt.Errorf("invalid %s: %q", timeout.name, timeout.value)
		}
		*timeout.dest = d
	}

	return opts, nil
}

// splitURLs accepts both repeated values and comma separated lists.
func splitURLs(values []string) []string {
	var urls []string
	for _, value := range values {
		for _, url := range strings.Split(value, ",") {
			if url = strings.TrimSpace(url); url != "" {
				urls = append(urls, url)
			}
		}
	}
	return urls
}
