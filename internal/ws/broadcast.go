package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/netbuddy/netbuddy/internal/report"
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// close marks the client dead and closes its send channel. The closed
// flag is checked under the same mutex in trySend, so a broadcast that
// races a disconnect can never send on the closed channel.
func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// trySend queues msg without blocking. Returns false only when the
// client is alive but its buffer is full; a closed client swallows the
// message, it is already being removed.
func (c *client) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Broadcaster fans target-state updates out to WebSocket clients.
// Updates are batched under a throttle window; full snapshots go out
// on a fixed interval so late joiners and droppy clients converge.
type Broadcaster struct {
	mu             sync.RWMutex
	clients        map[*client]bool
	store          *report.Store
	throttle       time.Duration
	snapshotTicker *time.Ticker
	pendingUpdates []*report.TargetState
	flushTimer     *time.Timer
	flushMu        sync.Mutex
}

func NewBroadcaster(store *report.Store, throttle, snapshotInterval time.Duration) *Broadcaster {
	b := &Broadcaster{
		clients:  make(map[*client]bool),
		store:    store,
		throttle: throttle,
	}

	b.snapshotTicker = time.NewTicker(snapshotInterval)
	go b.snapshotLoop()

	return b
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	snapshot := Message{
		Type: MsgSnapshot,
		Payload: SnapshotPayload{
			Targets: b.store.GetAll(),
		},
	}
	data, _ := json.Marshal(snapshot)

	// Client too slow to take the join snapshot: drop it, the next
	// periodic snapshot will catch it up.
	c.trySend(data)

	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

func (b *Broadcaster) QueueUpdate(states []*report.TargetState) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.pendingUpdates = append(b.pendingUpdates, states...)

	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

// BroadcastSummary sends a poll summary to all clients immediately,
// bypassing the delta throttle.
func (b *Broadcaster) BroadcastSummary(passed, total, percent int) {
	b.broadcast(Message{
		Type: MsgSummary,
		Payload: SummaryPayload{
			Passed:    passed,
			Total:     total,
			Percent:   percent,
			Timestamp: time.Now(),
		},
	})
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	updates := b.pendingUpdates
	b.pendingUpdates = nil
	b.flushTimer = nil
	b.flushMu.Unlock()

	if len(updates) == 0 {
		return
	}

	msg := Message{
		Type: MsgDelta,
		Payload: DeltaPayload{
			Updates: updates,
		},
	}
	b.broadcast(msg)
}

func (b *Broadcaster) snapshotLoop() {
	for range b.snapshotTicker.C {
		msg := Message{
			Type: MsgSnapshot,
			Payload: SnapshotPayload{
				Targets: b.store.GetAll(),
			},
		}
		b.broadcast(msg)
	}
}

func (b *Broadcaster) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			// Client can't keep up, disconnect it
			log.Printf("ws client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
