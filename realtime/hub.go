package realtime

import (
	"sync"

	"github.com/google/uuid"

	"civicfix-be/models"
)

// Operation is the kind of change carried by a ChangeEvent
type Operation string

const (
	OpInsert Operation = "insert"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
	// OpResync tells the subscriber its view may have gaps; it must perform
	// a full scoped re-fetch rather than wait for replayed events.
	OpResync Operation = "resync"
)

// ChangeEvent is one change on the issue store. Delete events carry only
// the issue id; resync events carry no issue at all.
type ChangeEvent struct {
	Operation Operation     `json:"operation"`
	Issue     *models.Issue `json:"issue,omitempty"`
}

const subscriberBuffer = 64

// Subscription is one viewer's handle on the change feed
type Subscription struct {
	id     string
	events chan ChangeEvent
	hub    *Hub
	once   sync.Once
}

// Events is the receive channel. It is closed on Unsubscribe.
func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Unsubscribe releases the subscriber slot. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.drop(s.id)
	})
}

// Hub fans change events out to subscribers. Delivery per subscriber is
// ordered; a subscriber that falls behind has its queue collapsed into a
// single resync marker instead of blocking the feed.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]*Subscription
	lagged map[string]bool
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[string]*Subscription),
		lagged: make(map[string]bool),
	}
}

// Subscribe registers a new viewer on the change feed
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		events: make(chan ChangeEvent, subscriberBuffer),
		hub:    h,
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()

	return sub
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub, ok := h.subs[id]; ok {
		delete(h.subs, id)
		delete(h.lagged, id)
		close(sub.events)
	}
}

// Publish delivers the event to every subscriber without blocking. A full
// subscriber queue marks that subscriber lagged; its next successful
// delivery is a resync marker.
func (h *Hub) Publish(event ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		if h.lagged[id] {
			select {
			case sub.events <- ChangeEvent{Operation: OpResync}:
				delete(h.lagged, id)
			default:
			}
			continue
		}
		select {
		case sub.events <- event:
		default:
			h.lagged[id] = true
		}
	}
}

// BroadcastResync sends a resync marker to every subscriber, used after the
// upstream change stream reconnects.
func (h *Hub) BroadcastResync() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subs {
		select {
		case sub.events <- ChangeEvent{Operation: OpResync}:
			delete(h.lagged, id)
		default:
			h.lagged[id] = true
		}
	}
}

// SubscriberCount returns the number of live subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
