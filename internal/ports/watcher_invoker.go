package ports

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrWatcherTimeout marks an invocation that exceeded its wall-clock budget.
// Treated identically to a non-zero exit by callers.
var ErrWatcherTimeout = errors.New("watcher invocation timed out")

// WatcherDescriptor is everything needed to run one external watcher command.
type WatcherDescriptor struct {
	Program string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// WatcherInvoker runs a watcher synchronously and returns its stdout parsed
// as exactly one JSON document. Non-zero exit, timeout, or malformed output
// is an error; stderr is never part of the payload.
type WatcherInvoker interface {
	Invoke(ctx context.Context, desc WatcherDescriptor) (json.RawMessage, error)
}
