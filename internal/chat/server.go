package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/handler"
	"github.com/wtask/chatrelay/internal/chat/metrics"
	"github.com/wtask/chatrelay/internal/chat/workerpool"
	"github.com/wtask/chatrelay/pkg/background"
)

// DefaultWorkers - number of connection workers when WithWorkers is not used.
const DefaultWorkers = 4

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

// Server - chat server instance: owns listener, shared history, worker pool and live connections.
// Every accepted connection becomes a job which runs protocol session on a pool worker,
// so no more than Workers connections are served at the same time, the rest wait in queue.
type Server struct {
	listener net.Listener
	history  *History
	handler  *handler.Handler
	pool     *workerpool.Pool
	conns    *registry

	// acceptor - scope of Run, canceled by Shutdown
	acceptor *background.Scope
	stop     func()
	shutdown sync.Once

	workers        int
	handlerOptions []handler.Option
	log            zerolog.Logger
	metrics        *metrics.Registry
}

// NewServer - binds TCP listener on address and prepares server to Run.
// Returns error wrapping ErrBind if address is invalid or busy.
func NewServer(address string, options ...Option) (*Server, error) {
	s := &Server{
		workers: DefaultWorkers,
		log:     zerolog.Nop(),
	}
	if err := setup(s, options...); err != nil {
		return nil, fmt.Errorf("chat.NewServer: %w", err)
	}

	s.history = NewHistory(s.metrics)
	h, err := handler.New(
		s.history,
		append(
			[]handler.Option{handler.WithLogger(s.log), handler.WithMetrics(s.metrics)},
			s.handlerOptions...,
		)...,
	)
	if err != nil {
		return nil, fmt.Errorf("chat.NewServer: %w", err)
	}
	s.handler = h

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrBind, address, err)
	}

	pool, err := workerpool.New(s.workers, workerpool.WithLogger(s.log), workerpool.WithMetrics(s.metrics))
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("chat.NewServer: %w", err)
	}

	s.listener = listener
	s.pool = pool
	s.conns = newRegistry()
	s.acceptor, s.stop = background.NewScope()
	return s, nil
}

// Addr - returns listener network address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// History - returns shared chat history.
func (s *Server) History() *History {
	return s.history
}

// Connections - returns number of live connections, including ones waiting for a worker.
func (s *Server) Connections() int {
	return s.conns.len()
}

// Run - accepts connections and dispatches them to workers until Shutdown.
// Accept errors are logged and skipped. Always returns ErrServerClosed.
func (s *Server) Run() error {
	ctx := s.acceptor.Context()
	if ctx.Err() != nil {
		return ErrServerClosed
	}
	s.acceptor.Add(1)
	defer s.acceptor.Done()

	s.log.Info().
		Str("addr", formatAddress(s.listener.Addr())).
		Int("workers", s.pool.Workers()).
		Msg("chat server is accepting connections")

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}
			s.metrics.AcceptError()
			backoff = nextBackoff(backoff)
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ErrServerClosed
			}
			continue
		}
		backoff = 0
		s.dispatch(ctx, conn)
	}
}

// Shutdown - stops accepting, closes open connections and waits until every worker is done.
// Safe to call several times, only the first call does the job.
func (s *Server) Shutdown() error {
	var err error
	s.shutdown.Do(func() {
		s.log.Info().Msg("chat server is stopping")
		err = s.listener.Close()
		// cancels connection contexts and waits for Run to exit
		s.stop()
		if n := s.conns.closeAll(); n > 0 {
			s.log.Info().Int("connections", n).Msg("open connections closed")
		}
		s.pool.Close()
		s.log.Info().Int("messages", s.history.Len()).Msg("chat server stopped")
	})
	return err
}

// dispatch - wraps connection into job for the worker pool.
func (s *Server) dispatch(ctx context.Context, conn net.Conn) {
	log := connectionLogger(s.log, conn)
	s.metrics.ConnectionAccepted()
	log.Debug().Msg("connection accepted")

	if !s.conns.add(conn) {
		conn.Close()
		s.metrics.ConnectionClosed(handler.ClosedShutdown.String())
		log.Debug().Msg("connection rejected, server is stopping")
		return
	}
	ctx = log.WithContext(ctx)
	err := s.pool.Submit(func() {
		reason := handler.ClosedIOError
		defer func() {
			s.conns.delete(conn)
			s.metrics.ConnectionClosed(reason.String())
		}()
		reason = s.handler.Serve(ctx, conn)
	})
	if err != nil {
		s.conns.delete(conn)
		conn.Close()
		s.metrics.ConnectionClosed(handler.ClosedShutdown.String())
		log.Warn().Err(err).Msg("connection rejected")
	}
}

func nextBackoff(current time.Duration) time.Duration {
	if current == 0 {
		return minAcceptBackoff
	}
	if current *= 2; current > maxAcceptBackoff {
		return maxAcceptBackoff
	}
	return current
}
