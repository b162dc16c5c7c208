package relay

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/briwylde08/dead-mans-draw/log"
)

// MaxMessageRate is the per-connection publish cap: ≤10 messages/second.
const MaxMessageRate = 10

// MaxMessageBytes is the per-message size cap: ≤1KB.
const MaxMessageBytes = 1024

// MaxEventLog is the number of events retained per session; older events
// are dropped once this bound is exceeded.
const MaxEventLog = 100

var (
	// ErrRateLimited is returned by Publish when a client exceeds MaxMessageRate.
	ErrRateLimited = errors.New("relay: rate limit exceeded")
	// ErrMessageTooLarge is returned by Publish when payload exceeds MaxMessageBytes.
	ErrMessageTooLarge = errors.New("relay: message exceeds size limit")
	// ErrUnknownClient is returned by Publish/Leave for an id that never
	// joined, or already left, the given session.
	ErrUnknownClient = errors.New("relay: unknown client")
)

// Broker introduces clients within a session and relays events between
// them. A client never needs the broker to make progress: the relay only
// carries UI-synchrony events, never settlement data.
type Broker interface {
	// Join admits a new client to sessionID's room, returning its id and a
	// channel of events published by other clients in that room.
	Join(sessionID uint32) (uuid.UUID, <-chan Event)
	// Leave removes a client from sessionID's room and closes its channel.
	Leave(sessionID uint32, id uuid.UUID)
	// Publish rate-limits and broadcasts an event from client id to every
	// other client in sessionID's room, recording it in the bounded history.
	Publish(sessionID uint32, from uuid.UUID, evtType EventType, payload []byte) error
	// History returns the bounded event log for sessionID, oldest first.
	History(sessionID uint32) []Event
}

type subscriber struct {
	ch      chan Event
	limiter *rateLimiter
}

type room struct {
	subscribers map[uuid.UUID]*subscriber
	history     []Event
	nextSeq     uint64
}

// InMemoryBroker is the in-process Broker implementation: the reference
// relay this repository ships, good for tests and for a single-process
// deployment. It holds no connection to any external transport; Serve
// bridges it to gorilla/websocket for real client traffic.
type InMemoryBroker struct {
	mu    sync.Mutex
	rooms map[uint32]*room
}

// NewInMemoryBroker returns an empty broker with no rooms.
func NewInMemoryBroker() *InMemoryBroker {
	return &InMemoryBroker{rooms: make(map[uint32]*room)}
}

func (b *InMemoryBroker) roomFor(sessionID uint32) *room {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.rooms[sessionID]
	if !ok {
		r = &room{subscribers: make(map[uuid.UUID]*subscriber)}
		b.rooms[sessionID] = r
	}
	return r
}

// Join admits a new client, buffering up to MaxEventLog events so a
// momentarily slow reader doesn't block publishers.
func (b *InMemoryBroker) Join(sessionID uint32) (uuid.UUID, <-chan Event) {
	r := b.roomFor(sessionID)
	id := uuid.New()
	ch := make(chan Event, MaxEventLog)

	b.mu.Lock()
	r.subscribers[id] = &subscriber{ch: ch, limiter: newRateLimiter(MaxMessageRate)}
	b.mu.Unlock()

	log.Debugw("relay: client joined", "sessionId", sessionID, "client", id)
	return id, ch
}

// Leave removes a client from its session's room and closes its channel.
// It is a no-op if the client or session is already gone.
func (b *InMemoryBroker) Leave(sessionID uint32, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.rooms[sessionID]
	if !ok {
		return
	}
	if sub, ok := r.subscribers[id]; ok {
		close(sub.ch)
		delete(r.subscribers, id)
	}
}

// Publish enforces the size cap, then the sender's rate limit, then
// appends the event to the bounded history and fans it out to every other
// subscriber in the room. A subscriber whose channel is full (a stalled
// reader) has the event dropped for it rather than blocking the publisher.
func (b *InMemoryBroker) Publish(sessionID uint32, from uuid.UUID, evtType EventType, payload []byte) error {
	if len(payload) > MaxMessageBytes {
		return ErrMessageTooLarge
	}

	r := b.roomFor(sessionID)

	b.mu.Lock()
	defer b.mu.Unlock()

	sender, ok := r.subscribers[from]
	if !ok {
		return ErrUnknownClient
	}
	if !sender.limiter.Allow() {
		return ErrRateLimited
	}

	r.nextSeq++
	evt := Event{Type: evtType, SessionID: sessionID, Payload: payload, Seq: r.nextSeq}
	r.history = append(r.history, evt)
	if len(r.history) > MaxEventLog {
		r.history = r.history[len(r.history)-MaxEventLog:]
	}

	for id, sub := range r.subscribers {
		if id == from {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			log.Warnw("relay: dropping event for slow subscriber", "sessionId", sessionID, "client", id)
		}
	}
	return nil
}

// History returns a copy of the bounded event log for sessionID, oldest
// event first. It returns nil if the session has no room yet.
func (b *InMemoryBroker) History(sessionID uint32) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	r, ok := b.rooms[sessionID]
	if !ok {
		return nil
	}
	out := make([]Event, len(r.history))
	copy(out, r.history)
	return out
}
