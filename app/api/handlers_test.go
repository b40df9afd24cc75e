package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/article"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/feed"
	"github.com/gin-gonic/gin"
)

type fakeAnalyzer struct {
	maxURLs int
	urls    []string
	opts    article.Options
	err     error
}

func (a *fakeAnalyzer) ProcessBatch(ctx context.Context, urls []string, opts article.Options) ([]article.Outcome, error) {
	a.urls = urls
	a.opts = opts
	if a.err != nil {
		return nil, a.err
	}

	outcomes := make([]article.Outcome, len(urls))
	for i, url := range urls {
		outcomes[i] = article.Outcome{Status: article.StatusFetchError, URL: url}
	}
	return outcomes, nil
}

func (a *fakeAnalyzer) MaxURLs() int {
	return a.maxURLs
}

type fakeFetcher struct {
	data []byte
	err  error
}

func (f fakeFetcher) Fetch(ctx context.Context, url string, deadline time.Duration) ([]byte, error) {
	return f.data, f.err
}

const testFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Test Feed</title>
<item><link>https://inosmi.ru/a.html</link></item>
<item><link>https://inosmi.ru/b.html</link></item>
</channel></rss>`

func newTestServer(analyzer *fakeAnalyzer, fetcher fakeFetcher, apiKey string) *gin.Engine {
	handler := NewHandler(analyzer, fetcher, feed.NewParser(), time.Second, ServiceInfo{
		Version:      "test",
		ChargedWords: 2,
		Sites:        []string{"inosmi.ru"},
	})
	server := NewServer(handler, apiKey)
	gin.SetMode(gin.TestMode)
	return server
}

func serve(server http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestGetArticles(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	req := httptest.NewRequest(http.MethodGet, "/?urls=https://a.test/1,https://a.test/2&urls=https://a.test/3&fetch_timeout=500ms", nil)
	w := serve(server, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	expected := []string{"https://a.test/1", "https://a.test/2", "https://a.test/3"}
	if !reflect.DeepEqual(analyzer.urls, expected) {
		t.Errorf("Expected urls %v, got %v", expected, analyzer.urls)
	}
	if analyzer.opts.FetchTimeout != 500*time.Millisecond {
		t.Errorf("Expected fetch timeout 500ms, got %v", analyzer.opts.FetchTimeout)
	}

	var outcomes []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &outcomes); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("Expected 3 outcomes, got %d", len(outcomes))
	}
	first := outcomes[0]
	if first["status"] != "FETCH_ERROR" || first["url"] != "https://a.test/1" {
		t.Errorf("Unexpected first outcome: %v", first)
	}
	if v, ok := first["score"]; !ok || v != nil {
		t.Errorf("Expected score to be null, got %v", v)
	}
	if v, ok := first["words_count"]; !ok || v != nil {
		t.Errorf("Expected words_count to be null, got %v", v)
	}
}

func TestGetArticles_ValidationError(t *testing.T) {
	analyzer := &fakeAnalyzer{
		maxURLs: 10,
		err:     &article.ValidationError{Reason: "too many urls in request, should be 10 or less"},
	}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	w := serve(server, httptest.NewRequest(http.MethodGet, "/?urls=a,b", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "too many urls in request, should be 10 or less" {
		t.Errorf("Unexpected error message: %q", body["error"])
	}
}

func TestGetArticles_InternalError(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10, err: errors.New("broken")}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	w := serve(server, httptest.NewRequest(http.MethodGet, "/?urls=a", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestGetArticles_InvalidTimeout(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	for _, query := range []string{"fetch_timeout=soon", "process_timeout=-1s", "process_timeout=0s"} {
		w := serve(server, httptest.NewRequest(http.MethodGet, "/?urls=a&"+query, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", query, w.Code)
		}
	}
	if analyzer.urls != nil {
		t.Errorf("Expected no batch to run, got %v", analyzer.urls)
	}
}

func TestGetArticles_ServiceInfo(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	w := serve(server, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "up to 10 urls") {
		t.Errorf("Expected service info to mention the url limit, got %s", w.Body.String())
	}
	if analyzer.urls != nil {
		t.Errorf("Expected no batch to run")
	}
}

func TestAPIScoreArticles(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10}
	server := newTestServer(analyzer, fakeFetcher{}, "")

	body := `{"urls": ["https://a.test/1", "https://a.test/2"], "process_timeout": "2s"}`
	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := serve(server, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if len(analyzer.urls) != 2 {
		t.Errorf("Expected 2 urls, got %v", analyzer.urls)
	}
	if analyzer.opts.ProcessTimeout != 2*time.Second {
		t.Errorf("Expected process timeout 2s, got %v", analyzer.opts.ProcessTimeout)
	}
}

func TestAPIScoreArticles_InvalidJSON(t *testing.T) {
	server := newTestServer(&fakeAnalyzer{maxURLs: 10}, fakeFetcher{}, "")

	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	w := serve(server, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestAPIScoreArticles_Auth(t *testing.T) {
	server := newTestServer(&fakeAnalyzer{maxURLs: 10}, fakeFetcher{}, "secret")

	testCases := []struct {
		name     string
		header   string
		value    string
		expected int
	}{
		{"missing key", "", "", http.StatusUnauthorized},
		{"wrong key", "X-API-Key", "nope", http.StatusUnauthorized},
		{"api key header", "X-API-Key", "secret", http.StatusOK},
		{"bearer token", "Authorization", "Bearer secret", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewBufferString(`{"urls": ["a"]}`))
			req.Header.Set("Content-Type", "application/json")
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}

			w := serve(server, req)
			if w.Code != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestGetFeed(t *testing.T) {
	analyzer := &fakeAnalyzer{maxURLs: 10}
	server := newTestServer(analyzer, fakeFetcher{data: []byte(testFeed)}, "")

	w := serve(server, httptest.NewRequest(http.MethodGet, "/feed?url=https://inosmi.ru/rss", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response FeedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Feed != "Test Feed" {
		t.Errorf("Expected feed title 'Test Feed', got '%s'", response.Feed)
	}
	if len(response.Results) != 2 || response.Results[1].URL != "https://inosmi.ru/b.html" {
		t.Errorf("Unexpected results: %+v", response.Results)
	}
}

func TestGetFeed_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		path     string
		fetcher  fakeFetcher
		expected int
	}{
		{"missing url", "/feed", fakeFetcher{}, http.StatusBadRequest},
		{"fetch failure", "/feed?url=https://x.test/rss", fakeFetcher{err: article.ErrFetch}, http.StatusBadGateway},
		{"not a feed", "/feed?url=https://x.test/rss", fakeFetcher{data: []byte("<html></html>")}, http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newTestServer(&fakeAnalyzer{maxURLs: 10}, tc.fetcher, "")
			w := serve(server, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if w.Code != tc.expected {
				t.Errorf("Expected status %d, got %d", tc.expected, w.Code)
			}
		})
	}
}

func TestGetHealth(t *testing.T) {
	server := newTestServer(&fakeAnalyzer{maxURLs: 7}, fakeFetcher{}, "")

	w := serve(server, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["max_urls"] != float64(7) {
		t.Errorf("Expected max_urls 7, got %v", body["max_urls"])
	}
	if body["charged_words"] != float64(2) {
		t.Errorf("Expected charged_words 2, got %v", body["charged_words"])
	}
}

func TestAPIScoreArticles_AuthErrorBody(t *testing.T) {
	server := newTestServer(&fakeAnalyzer{maxURLs: 10}, fakeFetcher{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/api/articles", bytes.NewBufferString(`{"urls": ["a"]}`))
	req.Header.Set("Authorization", "Bearer wrong")
	w := serve(server, req)

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if body["error"] != "Invalid API key" {
		t.Errorf("Expected 'Invalid API key', got '%s'", body["error"])
	}
	if !strings.Contains(body["message"], "jaundice rate") {
		t.Errorf("Expected message to name the service, got '%s'", body["message"])
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(previous) })

	server := newTestServer(&fakeAnalyzer{maxURLs: 10}, fakeFetcher{}, "")
	serve(server, httptest.NewRequest(http.MethodGet, "/?urls=a,b,c", nil))

	logged := buf.String()
	for _, expected := range []string{`msg="Request served"`, "path=/", "status=200", "urls=3"} {
		if !strings.Contains(logged, expected) {
			t.Errorf("Expected access log to contain %s, got: %s", expected, logged)
		}
	}
}
