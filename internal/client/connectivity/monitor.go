// Package connectivity tracks whether the device currently has network
// access and notifies subscribers about transitions. The monitor itself is
// platform-agnostic; a Watcher feeds it from a periodic reachability probe,
// and tests can drive it directly via Set.
package connectivity

import "sync"

// Event is emitted on a state transition. EventOnline is emitted exactly
// once per offline-to-online transition and is the sole trigger for a drain.
type Event int

const (
	EventOnline Event = iota
	EventOffline
)

func (e Event) String() string {
	if e == EventOnline {
		return "became-online"
	}
	return "became-offline"
}

// Monitor is a two-state machine (online/offline). Repeated signals for the
// current state are deduplicated: subscribers only see transitions.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]chan Event
	nextID int
}

// NewMonitor creates a monitor with the given initial state, normally read
// from the platform's connectivity signal at startup.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online, subs: make(map[int]chan Event)}
}

// IsOnline reports the current state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set updates the state. A no-op when the state does not change; on a
// transition every subscriber is notified.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	ev := EventOffline
	if online {
		ev = EventOnline
	}
	for _, ch := range m.subs {
		// Never block the signal source on a slow subscriber. A full
		// buffer already holds an undelivered transition, which is
		// enough to wake the consumer.
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a listener and returns its event channel together with
// an unsubscribe function. The channel is closed on unsubscribe.
func (m *Monitor) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++

	ch := make(chan Event, 4)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}

	return ch, cancel
}
