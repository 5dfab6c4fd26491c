package cart

import "sync"

// Machine owns the canonical cart state for one session and runs every
// transition through the pure reducer. Observers registered via Subscribe are
// notified with a snapshot after each dispatch; the initial Load does not
// notify, so persistence only starts once the session is seeded.
type Machine struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

func NewMachine() *Machine {
	return &Machine{}
}

// Load seeds the machine with reconciled lines. Observers are not notified:
// the seed came from the store, there is nothing new to persist.
func (m *Machine) Load(lines []Line) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = State{Lines: lines}
}

// Dispatch applies an action and returns the resulting snapshot.
func (m *Machine) Dispatch(action Action) State {
	m.mu.Lock()
	m.state = Reduce(m.state, action)
	snapshot := m.state.clone()
	subs := m.subs
	m.mu.Unlock()

	for _, notify := range subs {
		notify(snapshot)
	}
	return snapshot
}

// Snapshot returns a copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone()
}

// Subscribe registers an observer called after every dispatch. Observers must
// not block; slow work belongs in the observer's own goroutine.
func (m *Machine) Subscribe(notify func(State)) {
	if notify == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, notify)
}
