package handler

// CloseReason - describes why protocol session ended.
type CloseReason int

const (
	_ CloseReason = iota
	// ClosedByPeer - client closed connection.
	ClosedByPeer
	// ClosedTimeout - read or write deadline expired.
	ClosedTimeout
	// ClosedIOError - connection failed.
	ClosedIOError
	// ClosedShutdown - server is stopping.
	ClosedShutdown
)

func (r CloseReason) String() string {
	switch r {
	case ClosedByPeer:
		return "peer"
	case ClosedTimeout:
		return "timeout"
	case ClosedIOError:
		return "io_error"
	case ClosedShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
