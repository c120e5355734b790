package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/courtside/internal/adapters/mq/queue"
	worker "github.com/okian/courtside/internal/adapters/mq/worker"
	model "github.com/okian/courtside/internal/domain/model"
	logging "github.com/okian/courtside/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockArchiver struct {
	mu      sync.Mutex
	points  []int
	failOn  map[int]error
	session string
}

func newMockArchiver() *mockArchiver {
	return &mockArchiver{failOn: map[int]error{}}
}

func (m *mockArchiver) Archive(_ context.Context, sessionID string, rec model.TimelineRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOn[rec.TimelinePoint]; ok {
		return err
	}
	m.session = sessionID
	m.points = append(m.points, rec.TimelinePoint)
	return nil
}

func (m *mockArchiver) archived() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.points...)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func job(point int) queue.Job {
	return queue.Job{SessionID: "session-1", Record: model.TimelineRecord{TimelinePoint: point}}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a worker on a queue", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		archiver := newMockArchiver()
		w := worker.NewInMemoryWorker(q, archiver, worker.WithName("test-worker"))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When jobs are enqueued", func() {
			convey.So(q.Enqueue(ctx, job(1)), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, job(2)), convey.ShouldBeNil)

			convey.Convey("Then they are archived in order", func() {
				convey.So(eventually(func() bool { return len(archiver.archived()) == 2 }), convey.ShouldBeTrue)
				convey.So(archiver.archived(), convey.ShouldResemble, []int{1, 2})
				convey.So(archiver.session, convey.ShouldEqual, "session-1")
			})
		})

		convey.Convey("When archiving fails", func() {
			archiver.failOn[1] = errors.New("disk full")
			convey.So(q.Enqueue(ctx, job(1)), convey.ShouldBeNil)
			convey.So(q.Enqueue(ctx, job(2)), convey.ShouldBeNil)

			convey.Convey("Then the worker keeps going", func() {
				convey.So(eventually(func() bool { return len(archiver.archived()) == 1 }), convey.ShouldBeTrue)
				convey.So(archiver.archived(), convey.ShouldResemble, []int{2})
			})
		})

		convey.Convey("When shut down", func() {
			convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then the worker has exited and a second shutdown is safe", func() {
				convey.So(eventually(func() bool {
					select {
					case <-w.Done():
						return true
					default:
						return false
					}
				}), convey.ShouldBeTrue)
				convey.So(w.Shutdown(context.Background()), convey.ShouldBeNil)
			})
		})
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a started pool", t, func() {
		_ = logging.Init()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		archiver := newMockArchiver()
		p := worker.NewPool(3, q, archiver)
		convey.So(p.Size(), convey.ShouldEqual, 3)
		p.Start(context.Background())

		convey.Convey("When seven jobs are queued and the pool shuts down", func() {
			for i := 1; i <= model.MaxTimelinePoints; i++ {
				convey.So(q.Enqueue(context.Background(), job(i)), convey.ShouldBeNil)
			}
			convey.So(p.Shutdown(context.Background()), convey.ShouldBeNil)

			convey.Convey("Then every pending job was drained", func() {
				convey.So(archiver.archived(), convey.ShouldHaveLength, model.MaxTimelinePoints)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a pool with a non-positive size", t, func() {
		_ = logging.Init()
		p := worker.NewPool(0, queue.NewInMemoryQueue(), newMockArchiver())
		convey.So(p.Size(), convey.ShouldEqual, 1)
	})
}
