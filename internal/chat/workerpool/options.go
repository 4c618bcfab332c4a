package workerpool

import (
	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/metrics"
)

// Option - configures Pool before workers start.
type Option func(p *Pool) error

func setup(p *Pool, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(p); err != nil {
			return err
		}
	}
	return nil
}

// WithLogger - attach logger, used to report recovered job panics.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) error {
		p.log = log.With().Str("component", "workerpool").Logger()
		return nil
	}
}

// WithMetrics - attach metrics registry to track queue depth, busy workers and panics.
func WithMetrics(m *metrics.Registry) Option {
	return func(p *Pool) error {
		p.metrics = m
		return nil
	}
}
