package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/puckpicks/internal/domain/model"
)

func snapshot(slug string, high, low int) model.Series {
	return model.Series{
		Slug:     slug,
		Round:    1,
		HighSeed: model.SeedSide{Name: "High", Wins: high},
		LowSeed:  model.SeedSide{Name: "Low", Wins: low},
	}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, snapshot("series-a", 1, 0)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Slug != "series-a" || got.Score() != "1-0" {
		t.Errorf("expected series-a 1-0, got %s %s", got.Slug, got.Score())
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, snapshot("a", 0, 0)) || !q.Enqueue(ctx, snapshot("b", 0, 0)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, snapshot("c", 0, 0)) {
		t.Error("expected enqueue to fail when full")
	}
	if l := q.Len(ctx); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, snapshot("a", 0, 0)) {
		t.Error("expected enqueue to fail with a cancelled context")
	}

	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected no snapshot from a cancelled dequeue")
		}
	case <-time.After(time.Second):
		t.Error("expected dequeue channel to close")
	}
}

func TestInMemoryQueue_ConcurrentAccess(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1000))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const producers, perProducer = 10, 50

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				if !q.Enqueue(ctx, snapshot(fmt.Sprintf("series-%d-%d", id, j), 0, 0)) {
					t.Errorf("enqueue %d-%d failed", id, j)
				}
			}
		}(i)
	}
	wg.Wait()
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		cwg  sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		cwg.Add(1)
		go func() {
			defer cwg.Done()
			for s := range q.Dequeue(ctx) {
				mu.Lock()
				seen[s.Slug] = true
				mu.Unlock()
			}
		}()
	}
	cwg.Wait()

	if len(seen) != producers*perProducer {
		t.Errorf("expected %d distinct snapshots, got %d", producers*perProducer, len(seen))
	}
}

func TestInMemoryQueue_GracefulShutdown(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if !q.Enqueue(ctx, snapshot("a", 0, 0)) || !q.Enqueue(ctx, snapshot("b", 0, 0)) {
		t.Fatal("expected enqueue to succeed")
	}
	if q.IsClosed() {
		t.Error("expected queue to be open initially")
	}
	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed after Close()")
	}
	if q.Enqueue(ctx, snapshot("c", 0, 0)) {
		t.Error("expected enqueue to fail after closing")
	}

	drained := 0
	timeout := time.After(time.Second)
	ch := q.Dequeue(ctx)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				if drained != 2 {
					t.Errorf("expected 2 buffered snapshots, got %d", drained)
				}
				if err := q.Close(); err != nil {
					t.Errorf("expected second close to succeed, got error: %v", err)
				}
				return
			}
			drained++
		case <-timeout:
			t.Fatal("expected dequeue channel to be closed within timeout")
		}
	}
}
