// pkg/event/event_test.go
package event

import (
	"sync"
	"testing"

	"github.com/opd-ai/go-spaceflight/pkg/physics"
)

func TestNewEventBus_Creation_ReturnsEmptyBus(t *testing.T) {
	bus := NewEventBus()

	if bus == nil || bus.handlers == nil {
		t.Fatal("NewEventBus() returned an uninitialized bus")
	}
	for _, typ := range []Type{SimulationStarted, ShipCollision, ShipLifecycle} {
		if n := bus.HandlerCount(typ); n != 0 {
			t.Errorf("HandlerCount(%s) = %d, want 0", typ, n)
		}
	}
}

// TestBusPublish_Dispatch checks that each event reaches exactly the
// handlers of its type, in subscription order, before Publish returns
func TestBusPublish_Dispatch(t *testing.T) {
	bus := NewEventBus()

	var calls []string
	record := func(name string) Handler {
		return func(e Event) { calls = append(calls, name+":"+string(e.GetType())) }
	}
	bus.Subscribe(ShipCollision, record("hud"))
	bus.Subscribe(ShipCollision, record("recorder"))
	bus.Subscribe(ShipDestroyed, record("director"))

	bus.Publish(NewCollisionEvent(nil, 1, 0, physics.Vector3{}, 1, 10, 90, 0))
	bus.Publish(NewSimulationEvent(SimulationStarted, nil, "f", 1, 0))

	want := []string{"hud:ship_collision", "recorder:ship_collision"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestBusPublish_PayloadReachesHandler(t *testing.T) {
	bus := NewEventBus()

	var got *LifecycleEvent
	bus.Subscribe(ShipRespawned, func(e Event) {
		got, _ = e.(*LifecycleEvent)
	})
	bus.Publish(NewLifecycleEvent(ShipRespawned, "director", physics.Respawning, physics.Alive, 7.5))

	if got == nil {
		t.Fatal("handler did not receive a *LifecycleEvent")
	}
	if got.To != physics.Alive || got.GameTime != 7.5 || got.GetSource() != "director" {
		t.Errorf("unexpected payload %+v", got)
	}
}

func TestSubscriptionCancel(t *testing.T) {
	tests := []struct {
		name     string
		cancel   []int
		wantHits []int
	}{
		{name: "none", cancel: nil, wantHits: []int{1, 1, 1}},
		{name: "first", cancel: []int{0}, wantHits: []int{0, 1, 1}},
		{name: "twice is harmless", cancel: []int{1, 1}, wantHits: []int{1, 0, 1}},
		{name: "all", cancel: []int{0, 1, 2}, wantHits: []int{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewEventBus()
			hits := make([]int, 3)
			subs := make([]*Subscription, 3)
			for i := range subs {
				subs[i] = bus.Subscribe(ShipCollision, func(Event) { hits[i]++ })
			}
			for _, i := range tt.cancel {
				subs[i].Cancel()
			}

			bus.Publish(&BaseEvent{EventType: ShipCollision})

			for i, want := range tt.wantHits {
				if hits[i] != want {
					t.Errorf("handler %d hit %d times, want %d", i, hits[i], want)
				}
			}
			if n := bus.HandlerCount(ShipCollision); n != len(subs)-countUnique(tt.cancel) {
				t.Errorf("HandlerCount = %d after cancelling %v", n, tt.cancel)
			}
		})
	}
}

func countUnique(ids []int) int {
	seen := make(map[int]bool)
	for _, id := range ids {
		seen[id] = true
	}
	return len(seen)
}

func TestSubscriptionCancel_OtherTypesUntouched(t *testing.T) {
	bus := NewEventBus()
	sub := bus.Subscribe(SimulationStarted, func(Event) {})
	stopped := 0
	bus.Subscribe(SimulationStopped, func(Event) { stopped++ })

	sub.Cancel()
	bus.Publish(NewSimulationEvent(SimulationStopped, nil, "f", 1, 2))

	if bus.HandlerCount(SimulationStarted) != 0 {
		t.Error("cancelled type still has handlers")
	}
	if stopped != 1 {
		t.Errorf("stop handler hit %d times, want 1", stopped)
	}
}

// TestBusPublish_CancelDuringPublish unsubscribes from inside a handler;
// the in-flight dispatch still completes
func TestBusPublish_CancelDuringPublish(t *testing.T) {
	bus := NewEventBus()

	var first *Subscription
	second := 0
	first = bus.Subscribe(ShipDestroyed, func(Event) { first.Cancel() })
	bus.Subscribe(ShipDestroyed, func(Event) { second++ })

	bus.Publish(&BaseEvent{EventType: ShipDestroyed})
	bus.Publish(&BaseEvent{EventType: ShipDestroyed})

	if second != 2 {
		t.Errorf("second handler hit %d times, want 2", second)
	}
	if bus.HandlerCount(ShipDestroyed) != 1 {
		t.Errorf("HandlerCount = %d, want 1", bus.HandlerCount(ShipDestroyed))
	}
}

// TestBus_ConcurrentUse subscribes and publishes from many goroutines.
// Run with -race.
func TestBus_ConcurrentUse(t *testing.T) {
	const workers = 8
	bus := NewEventBus()

	var mu sync.Mutex
	hits := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Subscribe(ShipCollision, func(Event) {
				mu.Lock()
				hits++
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Publish(&BaseEvent{EventType: ShipCollision})
		}()
	}
	wg.Wait()

	if hits != workers*workers {
		t.Errorf("hits = %d, want %d", hits, workers*workers)
	}
}

// TestNewCollisionEvent tests collision event creation
func TestNewCollisionEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	source := "collision_system"
	pos := physics.Vec3(1, 2, 3)

	event := NewCollisionEvent(source, 77, 4, pos, 0.5, 5, 95, 12.5)

	if event == nil {
		t.Fatal("NewCollisionEvent() returned nil")
	}

	if event.GetType() != ShipCollision {
		t.Errorf("GetType() = %v, want %v", event.GetType(), ShipCollision)
	}

	if event.GetSource() != source {
		t.Errorf("GetSource() = %v, want %v", event.GetSource(), source)
	}

	if event.AsteroidID != 77 || event.AsteroidIndex != 4 {
		t.Errorf("asteroid = %d/%d, want 77/4", event.AsteroidID, event.AsteroidIndex)
	}

	if event.Position != pos || event.Size != 0.5 || event.Damage != 5 || event.HealthAfter != 95 {
		t.Errorf("unexpected payload %+v", event)
	}

	if event.GameTime != 12.5 {
		t.Errorf("GameTime = %v, want 12.5", event.GameTime)
	}
}

// TestNewLifecycleEvent tests lifecycle event creation
func TestNewLifecycleEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		from      physics.LifeState
		to        physics.LifeState
	}{
		{
			name:      "Destroyed",
			eventType: ShipDestroyed,
			from:      physics.Alive,
			to:        physics.Destroyed,
		},
		{
			name:      "Respawned",
			eventType: ShipRespawned,
			from:      physics.Respawning,
			to:        physics.Alive,
		},
		{
			name:      "Generic transition",
			eventType: ShipLifecycle,
			from:      physics.Destroyed,
			to:        physics.Respawning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := NewLifecycleEvent(tt.eventType, nil, tt.from, tt.to, 3)

			if event.GetType() != tt.eventType {
				t.Errorf("GetType() = %v, want %v", event.GetType(), tt.eventType)
			}

			if event.From != tt.from || event.To != tt.to {
				t.Errorf("transition = %v->%v, want %v->%v", event.From, event.To, tt.from, tt.to)
			}
		})
	}
}

// TestNewSimulationEvent tests start/stop event creation
func TestNewSimulationEvent_ValidParameters_ReturnsCorrectEvent(t *testing.T) {
	event := NewSimulationEvent(SimulationStarted, "director", "abc123", 42, 0)

	if event.GetType() != SimulationStarted {
		t.Errorf("GetType() = %v, want %v", event.GetType(), SimulationStarted)
	}

	if event.FlightID != "abc123" || event.Seed != 42 {
		t.Errorf("unexpected payload %+v", event)
	}
}

// TestEventTypes tests that all event type constants are properly defined
func TestEventTypes_Constants_AllDefined(t *testing.T) {
	expectedTypes := []Type{
		SimulationStarted,
		SimulationStopped,
		ShipCollision,
		ShipDestroyed,
		ShipRespawned,
		ShipLifecycle,
	}

	seen := make(map[Type]bool)
	for _, eventType := range expectedTypes {
		if string(eventType) == "" {
			t.Errorf("event type %v is empty", eventType)
		}
		if seen[eventType] {
			t.Errorf("event type %v is duplicated", eventType)
		}
		seen[eventType] = true
	}
}
