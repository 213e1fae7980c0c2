package archive

import (
	"context"
	"sync"
	"time"
)

// InMemoryWriter collects archive records in memory for local/dev use.
type InMemoryWriter struct {
	mu      sync.RWMutex
	objects map[string]Record
	now     func() time.Time
}

func NewInMemoryWriter() *InMemoryWriter {
	return &InMemoryWriter{objects: make(map[string]Record), now: time.Now}
}

func (w *InMemoryWriter) Put(_ context.Context, rec Record) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	key := objectKey(rec.UserID, rec.SessionID, w.now())
	w.objects[key] = rec
	return key, nil
}

// Get returns a stored record by key. Test helper.
func (w *InMemoryWriter) Get(key string) (Record, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	rec, ok := w.objects[key]
	return rec, ok
}

// Len reports the number of stored objects. Test helper.
func (w *InMemoryWriter) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.objects)
}

func (w *InMemoryWriter) Close() error { return nil }
