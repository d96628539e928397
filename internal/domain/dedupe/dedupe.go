// Package dedupe suppresses repeated series snapshots so unchanged feed
// polls do not reach the store.
package dedupe

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
)

// Deduper remembers the last fingerprint seen for each key.
type Deduper interface {
	// SeenAndRecord reports whether fingerprint is already the latest one
	// recorded for key. When it is not, it becomes the latest.
	SeenAndRecord(ctx context.Context, key, fingerprint string) bool

	// Unrecord forgets key so its next snapshot is processed again. Used when
	// a recorded snapshot failed to persist.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

type entry struct {
	key         string
	fingerprint string
}

// inMemoryDeduper keeps key -> fingerprint in a map with FIFO eviction by
// first insertion.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a new in-memory deduper.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 4096,
		seen:    make(map[string]*list.Element),
		order:   list.New(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, key, fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		e := el.Value.(*entry)
		if e.fingerprint == fingerprint {
			return true
		}
		e.fingerprint = fingerprint
		return false
	}

	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		d.evictOldest()
	}
	d.seen[key] = d.order.PushBack(&entry{key: key, fingerprint: fingerprint})
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
		d.size.Add(-1)
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	front := d.order.Front()
	if front == nil {
		return
	}
	d.order.Remove(front)
	delete(d.seen, front.Value.(*entry).key)
	d.size.Add(-1)
}

// Size returns the number of tracked keys.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
