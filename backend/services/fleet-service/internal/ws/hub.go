package ws

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/monitor"
)

// StatusEvent is pushed to dashboard subscribers whenever a station flips
// online/offline.
type StatusEvent struct {
	StationID string                   `json:"station_id"`
	Status    monitor.ConnectionStatus `json:"status"`
}

// Hub fans status events out to connected dashboard subscribers.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[*Subscriber]struct{}
	logger      *zap.Logger
}

// NewHub builds an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logger,
	}
}

// Broadcast serializes the event once and enqueues it on every subscriber.
// Slow subscribers drop messages rather than block the monitor.
func (h *Hub) Broadcast(event StatusEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Warn("failed to encode status event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		sub.Send(data)
	}
}

// SubscriberCount reports active dashboard connections.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) add(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[sub] = struct{}{}
}

func (h *Hub) remove(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub)
}
