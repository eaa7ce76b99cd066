// Package events provides typed event emission for the persona.
// Events are logged and fanned out to in-process subscribers.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// EventType represents different event types
type EventType string

const (
	TradeExecuted      EventType = "TRADE_EXECUTED"
	TradeRejected      EventType = "TRADE_REJECTED"
	CycleCompleted     EventType = "CYCLE_COMPLETED"
	KnowledgeRefreshed EventType = "KNOWLEDGE_REFRESHED"
	PortfolioLoaded    EventType = "PORTFOLIO_LOADED"
)

// Event represents a system event
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      EventData `json:"data"`
	Module    string    `json:"module"`
}

// Handler receives emitted events. Handlers run synchronously on the
// emitting goroutine and must not block.
type Handler func(Event)

// Manager handles event emission and logging
type Manager struct {
	mu       sync.RWMutex
	handlers []subscription
	nextID   int
	log      zerolog.Logger
}

type subscription struct {
	id      int
	handler Handler
}

// NewManager creates a new event manager
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{
		log: log.With().Str("service", "events").Logger(),
	}
}

// Subscribe registers h for every subsequent event and returns a function
// that removes it
func (m *Manager) Subscribe(h Handler) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := m.nextID
	m.handlers = append(m.handlers, subscription{id: id, handler: h})

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, sub := range m.handlers {
			if sub.id == id {
				m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
				return
			}
		}
	}
}

// Emit emits an event. A nil Manager is a no-op so optional wiring stays simple.
func (m *Manager) Emit(module string, data EventData) {
	if m == nil || data == nil {
		return
	}

	event := Event{
		Type:      data.EventType(),
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		m.log.Warn().Err(err).Str("event_type", string(event.Type)).Msg("Failed to encode event")
		eventJSON = []byte("{}")
	}
	m.log.Info().
		Str("event_type", string(event.Type)).
		Str("module", module).
		RawJSON("event", eventJSON).
		Msg("Event emitted")

	m.mu.RLock()
	handlers := make([]Handler, len(m.handlers))
	for i, sub := range m.handlers {
		handlers[i] = sub.handler
	}
	m.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
