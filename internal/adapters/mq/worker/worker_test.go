package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/puckpicks/internal/adapters/mq/queue"
	worker "github.com/okian/puckpicks/internal/adapters/mq/worker"
	"github.com/okian/puckpicks/internal/adapters/repository"
	"github.com/okian/puckpicks/internal/domain/dedupe"
	model "github.com/okian/puckpicks/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch   chan queue.Snapshot
	once sync.Once
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Snapshot, 16)}
}

func (mq *mockQueue) Dequeue(context.Context) <-chan queue.Snapshot { return mq.ch }

func (mq *mockQueue) Close() error {
	mq.once.Do(func() { close(mq.ch) })
	return nil
}

// flakyStore fails writes for slugs in failing.
type flakyStore struct {
	*repository.MemoryStore
	mu      sync.Mutex
	failing map[string]bool
	writes  int
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: repository.NewMemoryStore(), failing: make(map[string]bool)}
}

func (f *flakyStore) UpsertSeries(ctx context.Context, s model.Series) error {
	f.mu.Lock()
	f.writes++
	fail := f.failing[s.Slug]
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.UpsertSeries(ctx, s)
}

func (f *flakyStore) setFailing(slug string, v bool) {
	f.mu.Lock()
	f.failing[slug] = v
	f.mu.Unlock()
}

func (f *flakyStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func snap(slug string, high, low int) model.Series {
	return model.Series{
		Slug:     slug,
		Round:    1,
		HighSeed: model.SeedSide{Name: "Boston Bruins", Wins: high},
		LowSeed:  model.SeedSide{Name: "Florida Panthers", Wins: low},
	}
}

func snapAt(slug string, high, low int, at time.Time) model.Series {
	s := snap(slug, high, low)
	s.UpdatedAt = at
	return s
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		store := newFlakyStore()
		w := worker.NewInMemoryWorker(q, store, dedupe.NewInMemoryDeduper(),
			worker.WithName("worker-test"),
			worker.WithClock(func() time.Time { return time.Date(2023, time.April, 20, 0, 0, 0, 0, time.UTC) }),
		)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a new snapshot arrives", func() {
			q.ch <- snap("series-a", 1, 0)

			convey.Convey("Then it is stored", func() {
				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
				got, err := store.Series(ctx, "series-a")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Score(), convey.ShouldEqual, "1-0")
			})
		})

		convey.Convey("When the same snapshot arrives twice", func() {
			q.ch <- snap("series-a", 2, 0)
			q.ch <- snap("series-a", 2, 0)
			q.ch <- snap("series-a", 3, 0)

			convey.Convey("Then only changes are written", func() {
				convey.So(waitFor(func() bool { return w.Processed() == 2 }), convey.ShouldBeTrue)
				time.Sleep(20 * time.Millisecond)
				convey.So(store.writeCount(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When an older snapshot arrives after a newer one", func() {
			fetched := time.Date(2023, time.April, 19, 12, 0, 0, 0, time.UTC)
			q.ch <- snapAt("series-c", 3, 0, fetched)
			q.ch <- snapAt("series-c", 2, 0, fetched.Add(-time.Minute))
			q.ch <- snapAt("series-c", 3, 0, fetched.Add(time.Minute))
			q.ch <- snap("series-d", 1, 0)

			convey.Convey("Then the stored series keeps the newer score", func() {
				convey.So(waitFor(func() bool { return w.Processed() == 2 }), convey.ShouldBeTrue)
				time.Sleep(20 * time.Millisecond)

				got, err := store.Series(ctx, "series-c")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Score(), convey.ShouldEqual, "3-0")
				convey.So(got.UpdatedAt.Equal(fetched), convey.ShouldBeTrue)
				convey.So(store.writeCount(), convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When a write fails", func() {
			store.setFailing("series-b", true)
			q.ch <- snap("series-b", 0, 1)
			convey.So(waitFor(func() bool { return store.writeCount() == 1 }), convey.ShouldBeTrue)

			convey.Convey("Then the same snapshot is retried on its next delivery", func() {
				store.setFailing("series-b", false)
				q.ch <- snap("series-b", 0, 1)

				convey.So(waitFor(func() bool { return w.Processed() == 1 }), convey.ShouldBeTrue)
				got, err := store.Series(ctx, "series-b")
				convey.So(err, convey.ShouldBeNil)
				convey.So(got.Score(), convey.ShouldEqual, "0-1")
			})
		})

		convey.Convey("When shutting down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()

			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a worker whose context is cancelled", t, func() {
		q := newMockQueue()
		w := worker.NewInMemoryWorker(q, repository.NewMemoryStore(), dedupe.NewInMemoryDeduper())
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()
		cancel()

		convey.Convey("Then Run returns", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("worker did not stop")
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(128))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(4, q, store, dedupe.NewInMemoryDeduper())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		convey.So(pool.Size(), convey.ShouldEqual, 4)
		pool.Start(ctx)

		convey.Convey("When many series are enqueued and the pool shuts down", func() {
			for i := 0; i < 40; i++ {
				convey.So(q.Enqueue(ctx, snap(fmt.Sprintf("series-%02d", i), i%4, 0)), convey.ShouldBeTrue)
			}
			convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then the queue is drained into the store", func() {
				n, err := store.Count(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(n, convey.ShouldEqual, 40)
				convey.So(pool.Processed(), convey.ShouldEqual, 40)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool receiving out-of-order snapshots of one series", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(128))
		store := repository.NewMemoryStore()
		pool := worker.NewPool(4, q, store, dedupe.NewInMemoryDeduper())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		base := time.Date(2023, time.April, 19, 12, 0, 0, 0, time.UTC)
		for round := 0; round < 10; round++ {
			for wins := 3; wins >= 0; wins-- {
				at := base.Add(time.Duration(round*4+wins) * time.Second)
				convey.So(q.Enqueue(ctx, snapAt("series-x", wins, 0, at)), convey.ShouldBeTrue)
			}
		}
		convey.So(pool.Shutdown(context.Background()), convey.ShouldBeNil)

		convey.Convey("Then the newest snapshot is the one stored", func() {
			got, err := store.Series(ctx, "series-x")
			convey.So(err, convey.ShouldBeNil)
			convey.So(got.Score(), convey.ShouldEqual, "3-0")
			convey.So(got.UpdatedAt.Equal(base.Add(39*time.Second)), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a pool with a non-positive count", t, func() {
		pool := worker.NewPool(0, newMockQueue(), repository.NewMemoryStore(), dedupe.NewInMemoryDeduper())

		convey.So(pool.Size(), convey.ShouldBeGreaterThan, 0)
	})
}
