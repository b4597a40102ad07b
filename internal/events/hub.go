package events

import (
	"sync"
	"time"
)

const (
	defaultBufferSize       = 50
	defaultSubscriberBuffer = 16
)

// Hub is an in-process broadcast stream with a bounded replay buffer.
// Slow subscribers are skipped, never waited on.
type Hub struct {
	mu     sync.Mutex
	buffer []Event
	subs   map[uint64]chan Event
	nextID uint64

	bufferSize       int
	subscriberBuffer int
}

// Subscription is one subscriber feed. Close it to release the channel.
type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan Event
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		subs:             make(map[uint64]chan Event),
		bufferSize:       defaultBufferSize,
		subscriberBuffer: defaultSubscriberBuffer,
	}
}

// Publish appends to the replay buffer and offers the event to every
// subscriber without blocking.
func (h *Hub) Publish(eventType string, payload map[string]any) {
	event := Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.buffer = append(h.buffer, event)
	if len(h.buffer) > h.bufferSize {
		h.buffer = h.buffer[len(h.buffer)-h.bufferSize:]
	}

	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a feed and replays the current buffer into it.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	ch := make(chan Event, h.subscriberBuffer+len(h.buffer))
	for _, event := range h.buffer {
		ch <- event
	}
	h.subs[h.nextID] = ch

	return &Subscription{hub: h, id: h.nextID, ch: ch}
}

func (s *Subscription) Events() <-chan Event {
	return s.ch
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}
