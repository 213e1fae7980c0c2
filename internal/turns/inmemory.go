package turns

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemoryStore is a simple in-process turn log for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Turn)}
}

func (s *InMemoryStore) Append(_ context.Context, t Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.records[t.UserID] {
		if existing.SortKey == t.SortKey {
			return fmt.Errorf("append turn: duplicate sort key %q", t.SortKey)
		}
	}
	s.records[t.UserID] = append(s.records[t.UserID], t)
	return nil
}

func (s *InMemoryStore) QueryRecent(_ context.Context, userID string, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 12
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[userID]
	out := make([]Turn, len(arr))
	copy(out, arr)
	sort.Slice(out, func(i, j int) bool { return out[i].SortKey > out[j].SortKey })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Count reports the number of turns stored for a user. Test helper.
func (s *InMemoryStore) Count(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[userID])
}

func (s *InMemoryStore) Close() error { return nil }
