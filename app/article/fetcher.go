package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Fetcher downloads article pages with a shared HTTP client. It makes
// exactly one attempt per call.
type Fetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func NewFetcher(client *http.Client, userAgent string, maxBodyBytes int64) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{
		client:       client,
		userAgent:    userAgent,
		maxBodyBytes: maxBodyBytes,
	}
}

// Fetch returns the page body decoded to UTF-8. Failures wrap ErrFetch, an
// expired deadline wraps ErrTimeout. The request context is cancelled on
// return, which releases the connection of an abandoned request.
func (f *Fetcher) Fetch(ctx context.Context, url string, deadline time.Duration) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetch, err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.wrap(fetchCtx, err, "failed to fetch URL")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error: %s", ErrFetch, resp.Status)
	}

	body := io.Reader(resp.Body)
	if f.maxBodyBytes > 0 {
		body = io.LimitReader(resp.Body, f.maxBodyBytes+1)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, f.wrap(fetchCtx, err, "failed to read response body")
	}

	if f.maxBodyBytes > 0 && int64(len(raw)) > f.maxBodyBytes {
		return nil, fmt.Errorf("%w: response body exceeds %d bytes", ErrFetch, f.maxBodyBytes)
	}

	return decode(raw, resp.Header.Get("Content-Type")), nil
}

func (f *Fetcher) wrap(ctx context.Context, err error, msg string) error {
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %s: %v", ErrTimeout, msg, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrFetch, msg, err)
}

func decode(raw []byte, contentType string) []byte {
	reader, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		slog.Debug("Unknown page charset, using raw body", "content_type", contentType, "error", err)
		return raw
	}

	decoded, err := io.ReadAll(reader)
	if err != nil {
		slog.Debug("Failed to decode page charset, using raw body", "content_type", contentType, "error", err)
		return raw
	}
	return decoded
}
