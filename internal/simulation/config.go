package simulation

import (
	"log/slog"
	"time"

	"github.com/avi3tal/stepflow/internal/outcome"
	"github.com/avi3tal/stepflow/pkg/types"
)

// DefaultStepPause is the pause between two dequeued steps.
const DefaultStepPause = 500 * time.Millisecond

// Option configures a Scheduler
type Option func(*Scheduler)

// WithExecutor sets the step outcome generator
func WithExecutor(e outcome.Executor) Option {
	return func(s *Scheduler) {
		s.executor = e
	}
}

// WithStepPause sets the pause inserted after each completed step
func WithStepPause(d time.Duration) Option {
	return func(s *Scheduler) {
		s.pause = d
	}
}

// WithClock sets the time source used for log timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithLogListener streams every log entry to fn as it is appended
func WithLogListener(fn func(types.LogEntry)) Option {
	return func(s *Scheduler) {
		s.log.Subscribe(fn)
	}
}

// WithErrorHandler is called when a run ends because of a runtime error
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		s.onError = fn
	}
}

// WithCompletionHandler is called with the report of every finished run
func WithCompletionHandler(fn func(Report)) Option {
	return func(s *Scheduler) {
		s.onComplete = fn
	}
}
