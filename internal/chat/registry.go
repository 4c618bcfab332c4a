package chat

import (
	"net"
	"sync"

	"github.com/samber/lo"
)

// registry - live connections, both served and queued for a worker.
type registry struct {
	mu     sync.Mutex
	closed bool
	list   map[net.Conn]struct{}
}

func newRegistry() *registry {
	return &registry{
		list: make(map[net.Conn]struct{}),
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.list)
}

// add - registers connection, returns false after closeAll.
func (r *registry) add(conn net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.list[conn] = struct{}{}
	return true
}

func (r *registry) delete(conn net.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.list, conn)
}

// closeAll - closes every registered connection and rejects further registrations.
// Returns number of closed connections.
func (r *registry) closeAll() int {
	r.mu.Lock()
	r.closed = true
	conns := lo.Keys(r.list)
	r.mu.Unlock()

	lo.ForEach(conns, func(conn net.Conn, _ int) {
		conn.Close()
	})
	return len(conns)
}
