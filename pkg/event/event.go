// pkg/event/event.go
package event

import (
	"sync"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

// Type represents the type of event
type Type string

// Simulation event types
const (
	SimulationStarted Type = "simulation_started"
	SimulationStopped Type = "simulation_stopped"
	ShipCollision     Type = "ship_collision"
	ShipDestroyed     Type = "ship_destroyed"
	ShipRespawned     Type = "ship_respawned"
	ShipLifecycle     Type = "ship_lifecycle"
)

// Event is the base interface for all events
type Event interface {
	GetType() Type
	GetSource() interface{}
}

// BaseEvent provides common functionality for all events
type BaseEvent struct {
	EventType Type
	Source    interface{}
}

// GetType returns the event type
func (e *BaseEvent) GetType() Type {
	return e.EventType
}

// GetSource returns the event source
func (e *BaseEvent) GetSource() interface{} {
	return e.Source
}

// Handler is a function that handles events
type Handler func(Event)

// Subscription identifies a registered handler. Cancel removes it.
type Subscription struct {
	ID     uint64
	Type   Type
	Cancel func()
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously on the publishing goroutine.
type Bus struct {
	handlers map[Type][]subscriber
	nextID   uint64
	mu       sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *Bus {
	return &Bus{
		handlers: make(map[Type][]subscriber),
		nextID:   1,
	}
}

// Subscribe registers a handler for a specific event type
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.handlers[eventType] = append(b.handlers[eventType], subscriber{id: id, handler: handler})

	return &Subscription{
		ID:     id,
		Type:   eventType,
		Cancel: func() { b.unsubscribe(eventType, id) },
	}
}

func (b *Bus) unsubscribe(eventType Type, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.handlers[eventType]
	for i, s := range subs {
		if s.id == id {
			// copy so in-flight Publish snapshots stay intact
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.handlers, eventType)
			} else {
				b.handlers[eventType] = next
			}
			return
		}
	}
}

// Publish sends an event to all subscribed handlers
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	subs := b.handlers[event.GetType()]
	b.mu.RUnlock()

	for _, s := range subs {
		s.handler(event)
	}
}

// HandlerCount returns the number of handlers for an event type
func (b *Bus) HandlerCount(eventType Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[eventType])
}

// CollisionEvent reports a ship-asteroid hit and the response applied
type CollisionEvent struct {
	BaseEvent
	AsteroidID    uint64
	AsteroidIndex int
	Position      physics.Vector3
	Size          float64
	Damage        float64
	HealthAfter   float64
	GameTime      float64
}

// NewCollisionEvent creates a new collision event
func NewCollisionEvent(source interface{}, asteroidID uint64, index int, pos physics.Vector3, size, damage, healthAfter, gameTime float64) *CollisionEvent {
	return &CollisionEvent{
		BaseEvent: BaseEvent{
			EventType: ShipCollision,
			Source:    source,
		},
		AsteroidID:    asteroidID,
		AsteroidIndex: index,
		Position:      pos,
		Size:          size,
		Damage:        damage,
		HealthAfter:   healthAfter,
		GameTime:      gameTime,
	}
}

// LifecycleEvent reports a ship lifecycle transition
type LifecycleEvent struct {
	BaseEvent
	From     physics.LifeState
	To       physics.LifeState
	GameTime float64
}

// NewLifecycleEvent creates a lifecycle event. Entering Destroyed and
// returning to Alive from Respawning are also published under their
// dedicated types by the director.
func NewLifecycleEvent(eventType Type, source interface{}, from, to physics.LifeState, gameTime float64) *LifecycleEvent {
	return &LifecycleEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		From:     from,
		To:       to,
		GameTime: gameTime,
	}
}

// SimulationEvent reports the director starting or stopping
type SimulationEvent struct {
	BaseEvent
	FlightID string
	Seed     uint64
	GameTime float64
}

// NewSimulationEvent creates a start or stop event
func NewSimulationEvent(eventType Type, source interface{}, flightID string, seed uint64, gameTime float64) *SimulationEvent {
	return &SimulationEvent{
		BaseEvent: BaseEvent{
			EventType: eventType,
			Source:    source,
		},
		FlightID: flightID,
		Seed:     seed,
		GameTime: gameTime,
	}
}
