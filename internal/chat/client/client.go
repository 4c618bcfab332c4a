// Package client implements chat protocol consumer.
package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wtask/chatrelay/internal/chat/message"
	"github.com/wtask/chatrelay/internal/chat/protocol"
)

// Client - single connection to chat server.
// Requests are strictly sequential: every request waits for its response.
// Client also keeps local copy of history received with Sync.
type Client struct {
	mu     sync.Mutex
	conn   net.Conn
	reader *protocol.LineReader
	closed bool

	syncMu sync.Mutex
	local  []message.Message

	timeout         time.Duration
	maxResponseSize int
	log             zerolog.Logger
}

// Dial - connects to chat server.
func Dial(ctx context.Context, address string, options ...Option) (*Client, error) {
	c := &Client{
		maxResponseSize: DefaultMaxResponseSize,
		log:             zerolog.Nop(),
	}
	if err := setup(c, options...); err != nil {
		return nil, fmt.Errorf("client.Dial: %w", err)
	}
	dialer := net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("client.Dial: %w", err)
	}
	c.conn = conn
	c.reader = protocol.NewLineReader(conn, c.maxResponseSize)
	c.log.Debug().Str("addr", address).Msg("connected")
	return c, nil
}

// Send - appends message to server history.
// Returns after server has acknowledged the message.
func (c *Client) Send(author, content string) error {
	response, err := c.roundTrip(protocol.Send{Author: author, Content: content})
	if err != nil {
		return err
	}
	if _, ok := response.(protocol.Acknowledged); !ok {
		return fmt.Errorf("%w: %T on Send", ErrUnexpectedResponse, response)
	}
	return nil
}

// FetchSince - returns server messages with ID greater or equal to id.
func (c *Client) FetchSince(id uint64) ([]message.Message, error) {
	response, err := c.roundTrip(protocol.FetchSince{Since: id})
	if err != nil {
		return nil, err
	}
	messages, ok := response.(protocol.Messages)
	if !ok {
		return nil, fmt.Errorf("%w: %T on FetchSince", ErrUnexpectedResponse, response)
	}
	return []message.Message(messages), nil
}

// Sync - fetches messages which are not in local copy yet and returns them.
func (c *Client) Sync() ([]message.Message, error) {
	c.syncMu.Lock()
	defer c.syncMu.Unlock()
	fresh, err := c.FetchSince(c.nextID())
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.local = append(c.local, fresh...)
	return fresh, nil
}

// Messages - returns copy of local history, starting from message with ID since.
func (c *Client) Messages(since uint64) []message.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := []message.Message{}
	for _, m := range c.local {
		if m.ID >= since {
			result = append(result, m)
		}
	}
	return result
}

// Close - closes connection. Next calls return ErrClosed.
// Client is also closed by itself when request or reply can not be transferred, e.g. on timeout.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}

func (c *Client) nextID() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.local) == 0 {
		return 0
	}
	return c.local[len(c.local)-1].ID + 1
}

func (c *Client) roundTrip(request protocol.Request) (protocol.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	line, err := protocol.MarshalLine(request)
	if err != nil {
		return nil, fmt.Errorf("client.Client: encode %T: %w", request, err)
	}
	if c.timeout > 0 {
		if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, c.broken(fmt.Errorf("client.Client: set deadline: %w", err))
		}
	}
	if _, err := c.conn.Write(line); err != nil {
		return nil, c.broken(fmt.Errorf("client.Client: write %T: %w", request, err))
	}
	reply, err := c.reader.ReadLine()
	if err != nil {
		if errors.Is(err, protocol.ErrLineTooLong) {
			// the rest of the line is skipped, next reply is in sync
			return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
		}
		return nil, c.broken(fmt.Errorf("client.Client: read reply to %T: %w", request, err))
	}
	response, err := protocol.DecodeResponse(reply)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
	}
	c.log.Debug().Str("request", fmt.Sprintf("%T", request)).Str("response", fmt.Sprintf("%T", response)).Msg("round trip")
	if _, ok := response.(protocol.Invalid); ok {
		return nil, ErrInvalidRequest
	}
	return response, nil
}

// broken - closes connection after failed exchange: a late reply would otherwise be
// taken as the answer to the next request. Next calls return ErrClosed. Lock must be held.
func (c *Client) broken(err error) error {
	c.closed = true
	c.conn.Close()
	c.log.Debug().Err(err).Msg("connection closed after failed round trip")
	return err
}
