package client

import "errors"

var (
	// ErrUnexpectedResponse - server replied with response of wrong kind or with unknown response.
	ErrUnexpectedResponse = errors.New("client.Client: unexpected response")

	// ErrInvalidRequest - server replied with Invalid.
	ErrInvalidRequest = errors.New("client.Client: server rejected request as invalid")

	// ErrClosed - client is already closed.
	ErrClosed = errors.New("client.Client: closed")
)
