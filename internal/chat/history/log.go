package history

import (
	"github.com/wtask/chatrelay/internal/chat/message"
)

// Log - append-only sequence of chat messages where message position equals message ID.
// Log is not safe for concurrent use, the owner must serialize all calls.
type Log struct {
	data []message.Message
}

// NewLog - builds empty history log.
func NewLog() *Log {
	return &Log{data: []message.Message{}}
}

// Len - returns number of stored messages.
func (l *Log) Len() int {
	return len(l.data)
}

// Append - stores new message under the next sequential ID and returns it.
func (l *Log) Append(author, content string) message.Message {
	m := message.Message{
		ID:      uint64(len(l.data)),
		Author:  author,
		Content: content,
	}
	l.data = append(l.data, m)
	return m
}

// Since - makes copy of all messages with ID greater or equal to id, in ascending ID order.
// Returns empty slice when id is beyond the last stored message.
func (l *Log) Since(id uint64) []message.Message {
	if id >= uint64(len(l.data)) {
		return []message.Message{}
	}
	tail := make([]message.Message, len(l.data)-int(id))
	copy(tail, l.data[id:])
	return tail
}
