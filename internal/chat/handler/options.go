package handler

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/metrics"
)

// Option - configures Handler.
type Option func(h *Handler) error

func setup(h *Handler, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(h); err != nil {
			return err
		}
	}
	return nil
}

// WithReadTimeout - limits time of waiting for the next request line.
// Zero means no timeout: idle client keeps its worker until it disconnects.
func WithReadTimeout(timeout time.Duration) Option {
	return func(h *Handler) error {
		if timeout < 0 {
			return fmt.Errorf("handler.WithReadTimeout: invalid timeout (%v)", timeout)
		}
		h.readTimeout = timeout
		return nil
	}
}

// WithWriteTimeout - limits time of writing single response. Zero means no timeout.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(h *Handler) error {
		if timeout < 0 {
			return fmt.Errorf("handler.WithWriteTimeout: invalid timeout (%v)", timeout)
		}
		h.writeTimeout = timeout
		return nil
	}
}

// WithMaxLineSize - overwrites default limit for request line.
// Longer lines are skipped and answered with Invalid.
func WithMaxLineSize(size int) Option {
	return func(h *Handler) error {
		if size <= 0 {
			return fmt.Errorf("handler.WithMaxLineSize: invalid size (%d)", size)
		}
		h.maxLineSize = size
		return nil
	}
}

// WithLogger - attach logger used when connection context has no logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) error {
		h.log = log.With().Str("component", "handler").Logger()
		return nil
	}
}

// WithMetrics - attach metrics registry to count requests.
func WithMetrics(m *metrics.Registry) Option {
	return func(h *Handler) error {
		h.metrics = m
		return nil
	}
}
