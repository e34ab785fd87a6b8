package notifications

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventConnected       EventType = "connected"
	EventDebtUpdated     EventType = "debt_updated"
	EventPaymentRecorded EventType = "payment_recorded"
	EventBadgeAwarded    EventType = "badge_awarded"
)

const subscriberBuffer = 16

type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Notifier доставляет события пользователю.
type Notifier interface {
	Notify(userID uuid.UUID, eventType EventType, data any)
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[chan Event]struct{}
	now         func() time.Time
}

// NewHub создает хаб SSE-подписок по пользователям.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[chan Event]struct{}),
		now:         time.Now,
	}
}

// Subscribe подписывает пользователя на события; функцию отписки можно вызывать повторно.
func (h *Hub) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[userID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, userID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам пользователя, медленные подписчики пропускают его.
func (h *Hub) Publish(userID uuid.UUID, event Event) {
	event.Timestamp = h.now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Notify публикует событие заданного типа.
func (h *Hub) Notify(userID uuid.UUID, eventType EventType, data any) {
	h.Publish(userID, Event{Type: eventType, Data: data})
}

// Subscribers возвращает число активных подписок пользователя.
func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
