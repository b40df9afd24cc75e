package article

import (
	"context"
	"errors"
)

// Sentinel errors for the failure categories of the pipeline stages.
var (
	ErrFetch      = errors.New("fetch error")
	ErrParsing    = errors.New("parsing error")
	ErrTimeout    = errors.New("deadline exceeded")
	ErrValidation = errors.New("invalid batch")
)

// ValidationError rejects a whole batch before any article is processed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Classify maps a stage error to the outcome status. A cancelled context
// counts as a timeout: the article was abandoned before it finished.
func Classify(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return StatusTimeout
	case errors.Is(err, ErrFetch):
		return StatusFetchError
	case errors.Is(err, ErrParsing):
		return StatusParsingError
	default:
		return StatusInternalError
	}
}
