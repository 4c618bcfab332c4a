package protocol

import "errors"

var (
	// ErrLineTooLong - returns by LineReader when incoming line exceeds the limit.
	// The line is already skipped, so the stream is still usable.
	ErrLineTooLong = errors.New("protocol.LineReader: line is too long")

	// ErrUnknownResponse - returns by DecodeResponse if server reply does not match any known variant.
	ErrUnknownResponse = errors.New("protocol.DecodeResponse: unknown response")
)
