package report

import (
	"sync"
)

// Store holds the latest state per target. Reads return copies so
// callers can't mutate shared state; GetAll preserves first-seen
// target order, which is the suite's reporting order.
type Store struct {
	mu     sync.RWMutex
	states map[string]*TargetState
	order  []string
}

func NewStore() *Store {
	return &Store{
		states: make(map[string]*TargetState),
	}
}

func (s *Store) Get(target string) (*TargetState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[target]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

func (s *Store) GetAll() []*TargetState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*TargetState, 0, len(s.order))
	for _, target := range s.order {
		result = append(result, s.states[target].Clone())
	}
	return result
}

func (s *Store) Update(state *TargetState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateLocked(state)
}

// BatchUpdateAndNotify commits states and runs notify while still
// holding the lock, so readers cannot observe the new states before
// broadcast clients are queued to hear about them.
func (s *Store) BatchUpdateAndNotify(states []*TargetState, notify func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range states {
		s.updateLocked(st)
	}
	if notify != nil {
		notify()
	}
}

func (s *Store) updateLocked(state *TargetState) {
	if _, ok := s.states[state.Target]; !ok {
		s.order = append(s.order, state.Target)
	}
	s.states[state.Target] = state.Clone()
}

// OnlineCount returns how many targets are currently online.
func (s *Store) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, st := range s.states {
		if st.Online {
			count++
		}
	}
	return count
}
