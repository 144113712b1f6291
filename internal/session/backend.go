// Package session implements the gateway's session core: a durable store for
// the (credential, profile) pair with cross-replica change propagation, and a
// manager exposing login/logout/register on top of it.
//
// The storage medium is abstracted behind Backend so the Redis-backed
// production setup can be swapped for the in-memory implementation in tests
// or when Redis is unreachable.
package session

import (
	"context"
	"sync"
	"time"
)

// Backend is the minimal key-value contract the session store needs:
// read, write, remove, and a subscription that fires when a key is mutated —
// including mutations made by other gateway replicas sharing the backend.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	// Subscribe registers fn to be called with each mutated key. The
	// returned function cancels the subscription. Delivery is asynchronous
	// with respect to the triggering write on distributed backends.
	Subscribe(fn func(key string)) (cancel func())
	Close() error
}

// MemoryBackend is a process-local Backend. It serves tests and the degraded
// mode entered when Redis is unavailable: sessions keep working for this
// process, there is just no other replica to converge with.
//
// Notifications are delivered asynchronously, in mutation order, from a
// single delivery goroutine. A listener may therefore safely call back into
// the backend or the store.
type MemoryBackend struct {
	mu        sync.Mutex
	values    map[string]memoryEntry
	listeners map[int]func(key string)
	nextID    int

	events chan string
	done   chan struct{}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func NewMemoryBackend() *MemoryBackend {
	m := &MemoryBackend{
		values:    make(map[string]memoryEntry),
		listeners: make(map[int]func(key string)),
		events:    make(chan string, notifyBuffer),
		done:      make(chan struct{}),
	}
	go m.deliver()
	return m
}

func (m *MemoryBackend) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.values[key]
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		delete(m.values, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *MemoryBackend) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.values[key] = e
	m.mu.Unlock()

	m.notify(key)
	return nil
}

func (m *MemoryBackend) Del(_ context.Context, keys ...string) error {
	removed := make([]string, 0, len(keys))
	m.mu.Lock()
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			removed = append(removed, k)
		}
	}
	m.mu.Unlock()

	// Deleting a key that was never set is not a mutation; staying quiet
	// here keeps the store's one-event-per-mutation contract when Clear
	// sweeps the fallback after the primary backend already succeeded.
	for _, k := range removed {
		m.notify(k)
	}
	return nil
}

func (m *MemoryBackend) Subscribe(fn func(key string)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *MemoryBackend) Close() error {
	close(m.done)
	return nil
}

// notify queues the event for the delivery goroutine. Drops on overflow:
// subscribers re-hydrate from storage, so a missed event only delays
// convergence.
func (m *MemoryBackend) notify(key string) {
	select {
	case m.events <- key:
	case <-m.done:
	default:
	}
}

func (m *MemoryBackend) deliver() {
	for {
		select {
		case <-m.done:
			return
		case key := <-m.events:
			m.mu.Lock()
			fns := make([]func(string), 0, len(m.listeners))
			for _, fn := range m.listeners {
				fns = append(fns, fn)
			}
			m.mu.Unlock()

			for _, fn := range fns {
				fn(key)
			}
		}
	}
}
