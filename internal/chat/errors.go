package chat

import "errors"

var (
	// ErrBind - returns by NewServer when listener can not be bound to the given address.
	ErrBind = errors.New("chat.NewServer: unable to bind listener")

	// ErrServerClosed - returns by Run after Shutdown.
	ErrServerClosed = errors.New("chat.Server: closed")
)
