package worker

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// slugLocks serializes work on one slug across every worker sharing it.
// Distinct slugs may share a stripe.
type slugLocks struct {
	stripes [lockStripes]sync.Mutex
}

func newSlugLocks() *slugLocks {
	return &slugLocks{}
}

// lock acquires the stripe for slug and returns its release func.
func (l *slugLocks) lock(slug string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(slug))
	mu := &l.stripes[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}
