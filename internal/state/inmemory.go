package state

import (
	"context"
	"sync"
)

// InMemoryStore is a simple in-process state store for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]UserState
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]UserState)}
}

func (s *InMemoryStore) Get(_ context.Context, userID string) (UserState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.records[userID]
	if !ok {
		return UserState{}, false, nil
	}
	return cloneState(st), true, nil
}

func (s *InMemoryStore) Put(_ context.Context, st UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[st.UserID] = cloneState(st)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

// cloneState keeps callers from mutating stored maps/slices through
// retained references.
func cloneState(st UserState) UserState {
	out := st
	if st.ProfileSnapshot != nil {
		out.ProfileSnapshot = make(map[string]string, len(st.ProfileSnapshot))
		for k, v := range st.ProfileSnapshot {
			out.ProfileSnapshot[k] = v
		}
	}
	if st.ActiveThreads != nil {
		out.ActiveThreads = append([]string(nil), st.ActiveThreads...)
	}
	if st.OpenLoops != nil {
		out.OpenLoops = append([]string(nil), st.OpenLoops...)
	}
	return out
}
