package article

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxURLs = 10

// Processor scores one article.
type Processor interface {
	Process(ctx context.Context, req Request) Outcome
}

var _ Processor = (*Pipeline)(nil)

// Analyzer runs one pipeline per URL concurrently and collects the
// outcomes in input order.
type Analyzer struct {
	pipeline Processor
	maxURLs  int
}

func NewAnalyzer(pipeline Processor, maxURLs int) *Analyzer {
	return &Analyzer{
		pipeline: pipeline,
		maxURLs:  cmp.Or(maxURLs, DefaultMaxURLs),
	}
}

func (a *Analyzer) MaxURLs() int {
	return a.maxURLs
}

// ProcessBatch validates urls and returns exactly one outcome per URL,
// outcomes[i] belonging to urls[i]. It waits for every article; a failing
// article never affects the others. Validation failures return a
// *ValidationError before any request is made.
func (a *Analyzer) ProcessBatch(ctx context.Context, urls []string, opts Options) ([]Outcome, error) {
	maxURLs := cmp.Or(opts.MaxURLs, a.maxURLs)

	if len(urls) == 0 {
		return nil, &ValidationError{Reason: "no urls in request"}
	}
	if len(urls) > maxURLs {
		return nil, &ValidationError{Reason: fmt.Sprintf("too many urls in request, should be %d or less", maxURLs)}
	}

	batchID := uuid.NewString()
	start := time.Now()
	slog.Debug("Batch started", "batch_id", batchID, "urls", len(urls))

	results := make([]Outcome, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Article pipeline panicked", "batch_id", batchID, "url", url, "panic", r)
					results[i] = failedOutcome(url, StatusInternalError)
				}
			}()

			results[i] = a.pipeline.Process(ctx, Request{
				URL:            url,
				FetchTimeout:   opts.FetchTimeout,
				ProcessTimeout: opts.ProcessTimeout,
			})
		}()
	}
	wg.Wait()

	counts := make(map[Status]int)
	for _, outcome := range results {
		counts[outcome.Status]++
	}

	slog.Info("Batch completed",
		"batch_id", batchID,
		"duration", time.Since(start),
		"total", len(results),
		"ok", counts[StatusOK],
		"fetch_errors", counts[StatusFetchError],
		"parsing_errors", counts[StatusParsingError],
		"timeouts", counts[StatusTimeout],
		"internal_errors", counts[StatusInternalError])

	return results, nil
}
