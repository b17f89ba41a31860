package daemon

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/thenoetrevino/tasks/internal/events"
)

// peer is one connected tasks process
type peer struct {
	conn net.Conn
	send chan events.Message

	mu         sync.Mutex
	collection string // "" until the peer subscribes, which matches everything
	lastPong   time.Time
	closed     bool
}

func newPeer(conn net.Conn, buffer int) *peer {
	return &peer{
		conn:     conn,
		send:     make(chan events.Message, buffer),
		lastPong: time.Now(),
	}
}

func (p *peer) subscribe(collection string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collection = collection
}

func (p *peer) wants(collection string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return events.Matches(p.collection, collection)
}

func (p *peer) touch(at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastPong = at
}

func (p *peer) lastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPong
}

// enqueue queues msg without blocking. It reports false when the queue is
// full or the peer is closed.
func (p *peer) enqueue(msg events.Message) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return false
	}
	select {
	case p.send <- msg:
		return true
	default:
		return false
	}
}

// writeLoop encodes queued messages onto the connection until close
func (p *peer) writeLoop() {
	enc := events.NewEncoder(p.conn)
	for msg := range p.send {
		if err := enc.Encode(msg); err != nil {
			return
		}
	}
}

func (p *peer) close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.send)
	}
	p.mu.Unlock()

	if err := p.conn.Close(); err != nil {
		slog.Debug("error closing client connection", "error", err)
	}
}
