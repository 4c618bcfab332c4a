package chat

import (
	"sync"

	"github.com/wtask/chatrelay/internal/chat/history"
	"github.com/wtask/chatrelay/internal/chat/message"
	"github.com/wtask/chatrelay/internal/chat/metrics"
)

// History - chat history shared by all connection handlers.
// Every access goes through the single mutex, appends are totally ordered,
// readers always observe a consistent prefix.
type History struct {
	mu      sync.RWMutex
	log     *history.Log
	metrics *metrics.Registry
}

// NewHistory - builds empty shared history.
func NewHistory(m *metrics.Registry) *History {
	return &History{log: history.NewLog(), metrics: m}
}

// Append - adds message and returns it with assigned ID.
// The message is visible to Since as soon as Append returns.
func (h *History) Append(author, content string) message.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	m := h.log.Append(author, content)
	h.metrics.HistorySize(h.log.Len())
	return m
}

// Since - returns copy of messages with ID greater or equal to id.
func (h *History) Since(id uint64) []message.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.log.Since(id)
}

// Len - returns number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.log.Len()
}
