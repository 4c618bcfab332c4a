package chat

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/handler"
	"github.com/wtask/chatrelay/internal/chat/metrics"
)

// Option - configures Server before the listener is bound.
type Option func(s *Server) error

func setup(s *Server, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(s); err != nil {
			return err
		}
	}
	return nil
}

// WithWorkers - overwrites number of connection workers (DefaultWorkers).
// Server construction fails for non-positive values.
func WithWorkers(n int) Option {
	return func(s *Server) error {
		s.workers = n
		return nil
	}
}

// WithLogger - attach logger to server, its pool and connection handler.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) error {
		s.log = log
		return nil
	}
}

// WithMetrics - attach metrics registry.
func WithMetrics(m *metrics.Registry) Option {
	return func(s *Server) error {
		if m == nil {
			return errors.New("chat.WithMetrics: registry is nil")
		}
		s.metrics = m
		return nil
	}
}

// WithHandler - passes options to connection handler, e.g. handler.WithReadTimeout.
func WithHandler(options ...handler.Option) Option {
	return func(s *Server) error {
		s.handlerOptions = append(s.handlerOptions, options...)
		return nil
	}
}
