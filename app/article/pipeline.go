package article

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Qwedfgr/jaundice-rate-dvmn/app/sanitize"
	"github.com/Qwedfgr/jaundice-rate-dvmn/app/tasks"
)

const (
	DefaultFetchTimeout   = 3 * time.Second
	DefaultProcessTimeout = 3 * time.Second
)

// Stage is a step of the article state machine.
type Stage string

const (
	StageFetching   Stage = "fetching"
	StageSanitizing Stage = "sanitizing"
	StageTokenizing Stage = "tokenizing"
	StageScoring    Stage = "scoring"
	// StageProcessing covers sanitizing, tokenizing and scoring, which
	// share the process deadline.
	StageProcessing Stage = "processing"
)

// StageError records the stage a failure happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PageFetcher downloads one page within a deadline.
type PageFetcher interface {
	Fetch(ctx context.Context, url string, deadline time.Duration) ([]byte, error)
}

// JobRunner runs CPU-bound work off the calling goroutine.
type JobRunner interface {
	Do(ctx context.Context, fn tasks.Job) error
}

var _ PageFetcher = (*Fetcher)(nil)
var _ JobRunner = (*tasks.Pool)(nil)

// PipelineDeps wires the shared, read-only collaborators of a Pipeline.
type PipelineDeps struct {
	Fetcher        PageFetcher
	Sanitizer      sanitize.Sanitizer
	Tokenizer      *Tokenizer
	Charged        WordSet
	Runner         JobRunner
	FetchTimeout   time.Duration
	ProcessTimeout time.Duration
}

// Pipeline scores a single article: fetch, sanitize, tokenize, score.
type Pipeline struct {
	fetcher        PageFetcher
	sanitizer      sanitize.Sanitizer
	tokenizer      *Tokenizer
	charged        WordSet
	runner         JobRunner
	fetchTimeout   time.Duration
	processTimeout time.Duration
}

func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		fetcher:        deps.Fetcher,
		sanitizer:      deps.Sanitizer,
		tokenizer:      deps.Tokenizer,
		charged:        deps.Charged,
		runner:         deps.Runner,
		fetchTimeout:   cmp.Or(deps.FetchTimeout, DefaultFetchTimeout),
		processTimeout: cmp.Or(deps.ProcessTimeout, DefaultProcessTimeout),
	}
}

// Process always returns a classified outcome; failures never escape as
// errors.
func (p *Pipeline) Process(ctx context.Context, req Request) Outcome {
	fetchTimeout := cmp.Or(req.FetchTimeout, p.fetchTimeout)
	processTimeout := cmp.Or(req.ProcessTimeout, p.processTimeout)

	html, err := p.fetcher.Fetch(ctx, req.URL, fetchTimeout)
	if err != nil {
		return p.fail(req.URL, &StageError{Stage: StageFetching, Err: err})
	}

	result, err := p.analyze(ctx, req.URL, html, processTimeout)
	if err != nil {
		return p.fail(req.URL, err)
	}

	slog.Debug("Article scored", "url", req.URL, "stage", StageScoring, "score", result.score, "words", result.wordsCount)

	return okOutcome(req.URL, result.score, result.defined, result.wordsCount)
}

type analysis struct {
	score      float64
	defined    bool
	wordsCount int
}

// analyze runs sanitizing, tokenizing and scoring on the worker pool under
// one process deadline.
func (p *Pipeline) analyze(ctx context.Context, url string, html []byte, timeout time.Duration) (analysis, error) {
	processCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		slog.Debug("Analysis finished", "url", url, "duration", time.Since(start))
	}()

	var result analysis
	err := p.runner.Do(processCtx, func(ctx context.Context) error {
		text, err := p.sanitizer.Sanitize(url, html)
		if err != nil {
			return &StageError{Stage: StageSanitizing, Err: fmt.Errorf("%w: %v", ErrParsing, err)}
		}

		// Sanitizing cannot be interrupted; drop its result if the deadline
		// passed meanwhile.
		if err := ctx.Err(); err != nil {
			return &StageError{Stage: StageSanitizing, Err: err}
		}

		words, err := p.tokenizer.Split(ctx, text)
		if err != nil {
			return &StageError{Stage: StageTokenizing, Err: err}
		}

		score, defined := Score(words, p.charged)
		result = analysis{score: score, defined: defined, wordsCount: len(words)}
		return nil
	})

	if err != nil {
		if processCtx.Err() != nil && !errors.Is(err, ErrParsing) {
			return analysis{}, &StageError{Stage: StageProcessing, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
		}
		return analysis{}, err
	}

	return result, nil
}

func (p *Pipeline) fail(url string, err error) Outcome {
	status := Classify(err)

	stage := Stage("")
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	if status == StatusInternalError {
		slog.Error("Unclassified article failure", "url", url, "stage", stage, "error", err)
	} else {
		slog.Info("Article failed", "url", url, "status", status, "stage", stage, "error", err)
	}

	return failedOutcome(url, status)
}
