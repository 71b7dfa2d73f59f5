package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/robocloud/internal/domain/model"
)

func msg(id string) model.JointState {
	return model.JointState{ID: id, Names: []string{"pan"}, Positions: []float64{0.1}}
}

func receive(ch <-chan model.JointState) (model.JointState, bool) {
	select {
	case js, ok := <-ch:
		return js, ok
	case <-time.After(time.Second):
		return model.JointState{}, false
	}
}

func TestInMemoryQueue(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		q := NewInMemoryQueue(WithCapacity(2))
		ctx := context.Background()

		Convey("Then it should start empty and open", func() {
			So(q.Len(), ShouldEqual, 0)
			So(q.IsClosed(), ShouldBeFalse)
		})

		Convey("When messages are enqueued and dequeued", func() {
			So(q.Enqueue(ctx, msg("a")), ShouldBeNil)
			So(q.Enqueue(ctx, msg("b")), ShouldBeNil)
			So(q.Len(), ShouldEqual, 2)

			ch := q.Dequeue(ctx)
			first, ok1 := receive(ch)
			second, ok2 := receive(ch)

			Convey("Then they should arrive in order", func() {
				So(ok1, ShouldBeTrue)
				So(ok2, ShouldBeTrue)
				So(first.ID, ShouldEqual, "a")
				So(second.ID, ShouldEqual, "b")
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, msg("a")), ShouldBeNil)
			So(q.Enqueue(ctx, msg("b")), ShouldBeNil)
			err := q.Enqueue(ctx, msg("c"))

			Convey("Then enqueue should fail fast with ErrQueueFull", func() {
				So(errors.Is(err, ErrQueueFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Enqueue(ctx, msg("a")), ShouldBeNil)
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then enqueue should fail with ErrQueueClosed", func() {
				So(errors.Is(q.Enqueue(ctx, msg("b")), ErrQueueClosed), ShouldBeTrue)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("Then queued messages should still drain before the channel closes", func() {
				ch := q.Dequeue(ctx)
				js, ok := receive(ch)
				So(ok, ShouldBeTrue)
				So(js.ID, ShouldEqual, "a")
				_, ok = receive(ch)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue should return the context error", func() {
				So(errors.Is(q.Enqueue(cctx, msg("a")), context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func BenchmarkInMemoryQueue(b *testing.B) {
	q := NewInMemoryQueue(WithCapacity(b.N + 1))
	ctx := context.Background()
	for i := 0; i < b.N; i++ {
		_ = q.Enqueue(ctx, msg(fmt.Sprint(i)))
	}
}
