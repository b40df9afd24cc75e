package article

import "time"

// Status is the terminal classification of one article.
type Status string

const (
	StatusOK           Status = "OK"
	StatusFetchError   Status = "FETCH_ERROR"
	StatusParsingError Status = "PARSING_ERROR"
	StatusTimeout      Status = "TIMEOUT"
	// StatusInternalError marks failures outside the known categories.
	StatusInternalError Status = "INTERNAL_ERROR"
)

// Request is one article to score. Zero timeouts fall back to the pipeline
// defaults.
type Request struct {
	URL            string
	FetchTimeout   time.Duration
	ProcessTimeout time.Duration
}

// Outcome is the result for one article. Score and WordsCount are set only
// when Status is OK, with one exception: an OK article without words has
// WordsCount 0 and a nil Score, so JSON consumers see "score": null next to
// "status": "OK" and must not read it as a failure.
type Outcome struct {
	Status     Status   `json:"status"`
	URL        string   `json:"url"`
	Score      *float64 `json:"score"`
	WordsCount *int     `json:"words_count"`
}

func failedOutcome(url string, status Status) Outcome {
	return Outcome{Status: status, URL: url}
}

func okOutcome(url string, score float64, defined bool, wordsCount int) Outcome {
	outcome := Outcome{
		Status:     StatusOK,
		URL:        url,
		WordsCount: &wordsCount,
	}
	if defined {
		outcome.Score = &score
	}
	return outcome
}

// Options are per-batch overrides for Analyzer.ProcessBatch.
type Options struct {
	MaxURLs        int
	FetchTimeout   time.Duration
	ProcessTimeout time.Duration
}
