package client

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxResponseSize - limit for single response line, history replies may be large.
const DefaultMaxResponseSize = 16 * 1024 * 1024

// Option - configures Client.
type Option func(c *Client) error

func setup(c *Client, options ...Option) error {
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(c); err != nil {
			return err
		}
	}
	return nil
}

// WithTimeout - limits every request/response round trip. Zero means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return fmt.Errorf("client.WithTimeout: invalid timeout (%v)", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

// WithMaxResponseSize - overwrites DefaultMaxResponseSize.
func WithMaxResponseSize(size int) Option {
	return func(c *Client) error {
		if size <= 0 {
			return fmt.Errorf("client.WithMaxResponseSize: invalid size (%d)", size)
		}
		c.maxResponseSize = size
		return nil
	}
}

// WithLogger - attach logger to trace requests.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = log.With().Str("component", "client").Logger()
		return nil
	}
}
