package worker

import (
	"context"
	"sync"
	"time"
)

// envelope is a queued request together with its reply Future.
type envelope struct {
	ctx      context.Context
	req      Request
	future   *Future
	enqueued time.Time
}

// mailbox is an unbounded FIFO with a single consumer. push never blocks.
type mailbox struct {
	mu     sync.Mutex
	items  []envelope
	closed bool
	signal chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// push appends env. It reports false if the mailbox is closed.
func (m *mailbox) push(env envelope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, env)
	m.mu.Unlock()

	m.wake()
	return true
}

// pop blocks until an item is available. After close it keeps returning
// queued items and reports false once the mailbox is empty.
func (m *mailbox) pop() (envelope, bool) {
	for {
		m.mu.Lock()
		if len(m.items) > 0 {
			env := m.items[0]
			m.items[0] = envelope{}
			m.items = m.items[1:]
			m.mu.Unlock()
			return env, true
		}
		if m.closed {
			m.mu.Unlock()
			return envelope{}, false
		}
		m.mu.Unlock()

		<-m.signal
	}
}

// close stops further pushes. Items already queued are still delivered.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.wake()
}

func (m *mailbox) wake() {
	select {
	case m.signal <- struct{}{}:
	default:
	}
}
