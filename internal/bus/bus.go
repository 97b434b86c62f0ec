// Package bus implements the cross-thread event bus (spec.md §2 row H):
// non-blocking typed pub/sub delivery of the three message kinds a
// background reader ever posts to the UI thread. Grounded on
// haricheung-agentic-shell's internal/bus, generalized from a single
// agent-message type to gf's three kinds.
package bus

import (
	"log/slog"
	"sync"
)

// Kind distinguishes the three message kinds spec.md §3/§5 name.
type Kind string

const (
	// KindResponse carries a completed response unit delivered in async
	// mode (spec.md §4.2 "Running -> Idle").
	KindResponse Kind = "response"
	// KindControl carries a parsed control-pipe line (spec.md §4.7).
	KindControl Kind = "control"
	// KindLog carries a log-pipe line plus its target viewer (spec.md §4.7).
	KindLog Kind = "log"
)

const subscriberBufSize = 64

// Message is one bus envelope. Payload's concrete type depends on Kind:
// KindResponse -> channel.Unit, KindControl -> pipes.ControlMessage,
// KindLog -> pipes.LogLine.
type Message struct {
	Kind    Kind
	Payload any
}

// Bus is the observable event bus. cmd/gf's event loop is the only
// subscriber in practice; tests attach their own.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Kind][]chan Message
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[Kind][]chan Message)}
}

// Publish fans out msg to every subscriber of msg.Kind. Delivery is
// non-blocking: a full subscriber channel drops the message with a logged
// warning rather than stalling the reader goroutine that's publishing
// (spec.md §5 "The UI thread never blocks except inside [synchronous]
// calls" — background readers must never block on delivery either).
func (b *Bus) Publish(msg Message) {
	b.mu.RLock()
	subs := b.subscribers[msg.Kind]
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		default:
			slog.Warn("bus: subscriber channel full, message dropped", "kind", msg.Kind)
		}
	}
}

// Subscribe returns a receive-only channel delivering messages of kind k.
func (b *Bus) Subscribe(k Kind) <-chan Message {
	ch := make(chan Message, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[k] = append(b.subscribers[k], ch)
	b.mu.Unlock()
	return ch
}
