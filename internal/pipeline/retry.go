package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/dgallion1/htmldown/internal/treestore"
)

// IsRetryable checks if a storage error is worth retrying. Missing records
// and canceled contexts never are.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, treestore.ErrNotFound) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
