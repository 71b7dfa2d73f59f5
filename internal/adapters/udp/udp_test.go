package udp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/panjf2000/gnet"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/robocloud/internal/domain/model"
	"github.com/okian/robocloud/pkg/logger"
)

type recorder struct {
	got []model.JointState
	err error
}

func (r *recorder) Submit(_ context.Context, js model.JointState) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, js)
	return nil
}

func TestListenerHandle(t *testing.T) {
	Convey("Given a listener on joint_states", t, func() {
		So(logger.Init(), ShouldBeNil)
		rec := &recorder{}
		l := NewListener("joint_states", rec)

		Convey("When a datagram without topic arrives", func() {
			err := l.Handle([]byte(`{"id":"a","name":["pan"],"position":[0.5]}`))

			Convey("Then it should be submitted with the udp source", func() {
				So(err, ShouldBeNil)
				So(len(rec.got), ShouldEqual, 1)
				So(rec.got[0].Source, ShouldEqual, Source)
				So(rec.got[0].ID, ShouldEqual, "a")
				So(rec.got[0].Positions, ShouldResemble, []float64{0.5})
			})
		})

		Convey("When the datagram names the configured topic", func() {
			err := l.Handle([]byte(`{"topic":"joint_states","name":["pan"],"position":[1]}`))

			Convey("Then it should be accepted", func() {
				So(err, ShouldBeNil)
				So(len(rec.got), ShouldEqual, 1)
			})
		})

		Convey("When the datagram names another topic", func() {
			err := l.Handle([]byte(`{"topic":"other","name":["pan"],"position":[1]}`))

			Convey("Then it should be dropped", func() {
				So(errors.Is(err, ErrWrongTopic), ShouldBeTrue)
				So(rec.got, ShouldBeEmpty)
			})
		})

		Convey("When the datagram is not JSON", func() {
			err := l.Handle([]byte("\x00\x01"))

			Convey("Then it should report ErrDecode", func() {
				So(errors.Is(err, ErrDecode), ShouldBeTrue)
			})
		})

		Convey("When the sink rejects the message", func() {
			rec.err = errors.New("full")
			err := l.Handle([]byte(`{"name":["pan"],"position":[1]}`))

			Convey("Then the error should be returned", func() {
				So(err, ShouldEqual, rec.err)
			})
		})

		Convey("When React is called", func() {
			out, action := l.React([]byte("garbage"), nil)

			Convey("Then nothing should be written back", func() {
				So(out, ShouldBeNil)
				So(action, ShouldEqual, gnet.None)
			})
		})
	})
}

func TestListenerTick(t *testing.T) {
	Convey("Given a listener with a cancellable context", t, func() {
		So(logger.Init(), ShouldBeNil)
		l := NewListener("joint_states", &recorder{})
		ctx, cancel := context.WithCancel(context.Background())
		l.ctx = ctx

		Convey("Then Tick should keep running while the context is live", func() {
			d, action := l.Tick()
			So(d, ShouldEqual, tickInterval)
			So(action, ShouldEqual, gnet.None)
			cancel()
		})

		Convey("Then Tick should shut down once cancelled", func() {
			cancel()
			d, action := l.Tick()
			So(d, ShouldEqual, time.Duration(0))
			So(action, ShouldEqual, gnet.Shutdown)
		})
	})
}
