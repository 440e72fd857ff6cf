package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/hashicorp/go-multierror"
)

// ErrUnknownProject is returned when a caller addresses a project name the
// registry has no store for.
var ErrUnknownProject = errors.New("store: unknown project")

// MaxRetries and RetryDelay implement spec §5's retry policy: "up to 2
// retries at 1-second intervals".
const (
	MaxRetries = 2
	RetryDelay = 1 * time.Second
)

// WithRetry runs op up to 1+MaxRetries times, waiting RetryDelay between
// attempts, and labels failures with projectName so the caller can tell
// which logical database an exhausted retry belongs to. If every attempt
// fails, the returned error is a *multierror.Error wrapping each attempt's
// failure in order.
func WithRetry(ctx context.Context, projectName string, op func(ctx context.Context) error) error {
	var merr *multierror.Error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		merr = multierror.Append(merr, labeledErr{project: projectName, attempt: attempt, err: err})

		if attempt == MaxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(RetryDelay):
		}
	}

	return merr.ErrorOrNil()
}

type labeledErr struct {
	project string
	attempt int
	err     error
}

func (l labeledErr) Error() string {
	return l.project + ": attempt " + strconv.Itoa(l.attempt+1) + ": " + l.err.Error()
}

func (l labeledErr) Unwrap() error { return l.err }
