package model_test

import (
	"errors"
	"math"
	"testing"
	"time"

	model "github.com/okian/robocloud/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestJointState(t *testing.T) {
	convey.Convey("Given a JointState", t, func() {
		convey.Convey("When names and positions pair up", func() {
			js := model.JointState{
				ID:        "m-1",
				Stamp:     time.Unix(5, 0),
				Names:     []string{"pan", "tilt", "pan"},
				Positions: []float64{0.1, -0.2, 0.3},
			}

			convey.Convey("Then it should validate and map by name", func() {
				convey.So(js.Validate(), convey.ShouldBeNil)
				convey.So(js.Map(), convey.ShouldResemble, map[string]float64{"pan": 0.3, "tilt": -0.2})
			})
		})

		convey.Convey("When lengths differ", func() {
			js := model.JointState{Names: []string{"pan"}, Positions: []float64{}}

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(js.Validate(), model.ErrInvalidJointState), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a position is not finite", func() {
			nan := model.JointState{Names: []string{"pan"}, Positions: []float64{math.NaN()}}
			inf := model.JointState{Names: []string{"pan"}, Positions: []float64{math.Inf(-1)}}

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(nan.Validate(), model.ErrInvalidJointState), convey.ShouldBeTrue)
				convey.So(errors.Is(inf.Validate(), model.ErrInvalidJointState), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a name is empty", func() {
			js := model.JointState{Names: []string{""}, Positions: []float64{1}}

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(js.Validate(), model.ErrInvalidJointState), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When it is empty", func() {
			js := model.JointState{}

			convey.Convey("Then it should validate with an empty map", func() {
				convey.So(js.Validate(), convey.ShouldBeNil)
				convey.So(js.Map(), convey.ShouldBeEmpty)
			})
		})
	})
}
