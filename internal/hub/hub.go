// Package hub provides topic-keyed fan-out for real-time updates.
// Subscribers join topics (one per venue chat room, plus broader ones
// like the city map) and receive every payload published after they
// join. Delivery is best-effort: a failing subscriber is logged and
// skipped, never allowed to stall the rest of the room.
package hub

import (
	"fmt"
	"log/slog"
	"sync"
)

// Subscriber receives published payloads. Implementations must be safe
// for concurrent Send calls.
type Subscriber interface {
	Send(payload []byte) error
}

// TopicForVenue returns the chat topic for a venue.
func TopicForVenue(venueID string) string {
	return fmt.Sprintf("chat_%s", venueID)
}

// Hub manages topic subscriptions and broadcasts.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[Subscriber]bool
	logger *slog.Logger
}

// New creates an empty hub.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		topics: make(map[string]map[Subscriber]bool),
		logger: logger,
	}
}

// Join subscribes sub to a topic. Joining twice is a no-op.
func (h *Hub) Join(topic string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.topics[topic] == nil {
		h.topics[topic] = make(map[Subscriber]bool)
	}
	h.topics[topic][sub] = true
}

// Leave removes sub from a topic. Unknown pairs are a no-op.
func (h *Hub) Leave(topic string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[topic]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, topic)
	}
}

// LeaveAll removes sub from every topic it joined. Called when a
// connection closes.
func (h *Hub) LeaveAll(sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for topic, subs := range h.topics {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish sends payload to every current subscriber of a topic.
// The subscriber set is snapshotted first, so a subscriber joining or
// leaving mid-publish never mutates the set being walked.
func (h *Hub) Publish(topic string, payload []byte) {
	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.topics[topic]))
	for sub := range h.topics[topic] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.Send(payload); err != nil {
			h.logger.Warn("failed to deliver to subscriber",
				"error", err,
				"topic", topic,
			)
		}
	}
}

// MemberCount returns the number of subscribers on a topic.
func (h *Hub) MemberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
