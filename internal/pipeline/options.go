package pipeline

import "github.com/calebmb/pathfinder/internal/events"

// Option configures an Executor. Use With* functions to create Options.
type Option func(*executorOptions)

// executorOptions holds all optional configuration.
type executorOptions struct {
	sink        *events.Sink
	logger      *DebugLogger
	maxRetries  int
	concurrency int
}

func defaultOptions() *executorOptions {
	return &executorOptions{
		sink:        events.NewSink(),
		logger:      NopLogger(),
		maxRetries:  1,
		concurrency: 4,
	}
}

// WithSink sets the event sink stages and the executor emit into.
func WithSink(s *events.Sink) Option {
	return func(o *executorOptions) {
		if s != nil {
			o.sink = s
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) Option {
	return func(o *executorOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxRetries bounds the veto/retry loop. Zero disables retries.
func WithMaxRetries(n int) Option {
	return func(o *executorOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithConcurrency bounds how many scorer stages run simultaneously.
func WithConcurrency(n int) Option {
	return func(o *executorOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}
