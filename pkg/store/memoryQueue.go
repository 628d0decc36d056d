package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/zoff-tech/go-mobile-sdk/pkg/event"
)

// MemoryQueue is a process-local DurableQueue. It loses its content on exit
// and is meant for tests and local runs.
type MemoryQueue struct {
	mu     sync.Mutex
	events map[string]memoryEntry
	seq    uint64
	ttl    time.Duration
	now    func() time.Time
}

type memoryEntry struct {
	event event.Event
	seq   uint64
}

func NewMemoryQueue(ttl time.Duration) *MemoryQueue {
	return &MemoryQueue{
		events: make(map[string]memoryEntry),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *MemoryQueue) Enqueue(_ context.Context, ev event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.events[ev.TransactionID]; ok {
		return nil
	}
	m.seq++
	m.events[ev.TransactionID] = memoryEntry{event: ev, seq: m.seq}
	return nil
}

func (m *MemoryQueue) ListPending(_ context.Context, limit int) ([]event.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := expiryCutoff(m.ttl, m.now())
	entries := make([]memoryEntry, 0, len(m.events))
	for id, entry := range m.events {
		if !cutoff.IsZero() && entry.event.EnqueueTimestamp.Before(cutoff) {
			delete(m.events, id)
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.event.EnqueueTimestamp.Equal(b.event.EnqueueTimestamp) {
			return a.event.EnqueueTimestamp.Before(b.event.EnqueueTimestamp)
		}
		return a.seq < b.seq
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	events := make([]event.Event, len(entries))
	for i, entry := range entries {
		events[i] = entry.event
	}
	return events, nil
}

func (m *MemoryQueue) Remove(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.events, transactionID)
	return nil
}

// Len returns the number of queued events.
func (m *MemoryQueue) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

func (m *MemoryQueue) Close() error {
	return nil
}
