// Package handler implements per-connection protocol loop of chat server.
package handler

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/message"
	"github.com/wtask/chatrelay/internal/chat/metrics"
	"github.com/wtask/chatrelay/internal/chat/protocol"
)

// Store - chat history as seen by handler.
// Implementations must serialize calls, because handlers of different connections run concurrently.
type Store interface {
	Append(author, content string) message.Message
	Since(id uint64) []message.Message
}

// Handler - serves chat protocol session over single connection:
// read request line, decode, execute against Store, write response, repeat.
// One Handler is shared by all connections.
type Handler struct {
	store        Store
	readTimeout  time.Duration
	writeTimeout time.Duration
	maxLineSize  int

	log     zerolog.Logger
	metrics *metrics.Registry
}

// New - builds Handler over the given store.
func New(store Store, options ...Option) (*Handler, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	h := &Handler{
		store:       store,
		maxLineSize: protocol.DefaultMaxLineSize,
		log:         zerolog.Nop(),
	}
	if err := setup(h, options...); err != nil {
		return nil, err
	}
	return h, nil
}

// Serve - runs protocol session until the peer closes connection, IO error occurs or ctx is done.
// Malformed requests are answered with Invalid and never end the session.
// Connection is always closed on return.
// If ctx carries zerolog logger (see zerolog.Logger.WithContext) it is used instead of the handler one.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) CloseReason {
	log := h.logger(ctx)
	stop := context.AfterFunc(ctx, func() {
		// unblocks pending read or write
		conn.Close()
	})
	defer func() {
		stop()
		conn.Close()
	}()

	reader := protocol.NewLineReader(conn, h.maxLineSize)
	writer := bufio.NewWriter(conn)
	for {
		if err := setDeadline(conn.SetReadDeadline, h.readTimeout); err != nil {
			return h.closeReason(ctx, log, err)
		}
		line, err := reader.ReadLine()
		var request protocol.Request
		switch {
		case err == nil:
			request = protocol.DecodeRequest(line)
		case errors.Is(err, protocol.ErrLineTooLong):
			request = protocol.InvalidRequest{Reason: protocol.ReasonLineTooLong}
		default:
			return h.closeReason(ctx, log, err)
		}

		response := h.execute(log, request)

		if err := h.write(conn, writer, response); err != nil {
			return h.closeReason(ctx, log, err)
		}
	}
}

// execute - applies request to the store. Store lock is held only inside Append/Since,
// never while reading or writing the connection.
func (h *Handler) execute(log *zerolog.Logger, request protocol.Request) protocol.Response {
	switch r := request.(type) {
	case protocol.Send:
		m := h.store.Append(r.Author, r.Content)
		h.metrics.Request(metrics.RequestSend)
		log.Debug().Uint64("id", m.ID).Str("author", m.Author).Msg("message added")
		return protocol.Acknowledged{}
	case protocol.FetchSince:
		list := h.store.Since(r.Since)
		h.metrics.Request(metrics.RequestFetchSince)
		log.Debug().Uint64("since", r.Since).Int("count", len(list)).Msg("messages fetched")
		return protocol.Messages(list)
	case protocol.InvalidRequest:
		h.metrics.Request(metrics.RequestInvalid)
		log.Debug().Str("reason", r.Reason).Msg("invalid request")
		return protocol.Invalid{}
	default:
		h.metrics.Request(metrics.RequestInvalid)
		log.Warn().Type("request", request).Msg("unsupported request type")
		return protocol.Invalid{}
	}
}

func (h *Handler) write(conn net.Conn, w *bufio.Writer, response protocol.Response) error {
	line, err := protocol.MarshalLine(response)
	if err != nil {
		return err
	}
	if err := setDeadline(conn.SetWriteDeadline, h.writeTimeout); err != nil {
		return err
	}
	if _, err := w.Write(line); err != nil {
		return err
	}
	return w.Flush()
}

func (h *Handler) closeReason(ctx context.Context, log *zerolog.Logger, err error) CloseReason {
	var (
		reason CloseReason
		netErr net.Error
	)
	switch {
	case ctx.Err() != nil:
		reason = ClosedShutdown
	case errors.Is(err, io.EOF):
		reason = ClosedByPeer
	case errors.As(err, &netErr) && netErr.Timeout():
		reason = ClosedTimeout
	default:
		reason = ClosedIOError
	}

	event := log.Debug()
	if reason == ClosedIOError {
		event = log.Warn().Err(err)
	}
	event.Stringer("reason", reason).Msg("session closed")
	return reason
}

func (h *Handler) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &h.log
}

func setDeadline(set func(time.Time) error, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	return set(time.Now().Add(timeout))
}
