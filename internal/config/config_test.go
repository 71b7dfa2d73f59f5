package config_test

import (
	"testing"
	"time"

	"github.com/okian/robocloud/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.JointStatesTopic, convey.ShouldEqual, "joint_states")
			convey.So(cfg.PublishFrequency, convey.ShouldEqual, 50)
			convey.So(cfg.UseVisualMesh, convey.ShouldBeFalse)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 4096)
			convey.So(cfg.RobotDescription, convey.ShouldBeEmpty)
		})

		convey.Convey("Then derived durations should follow the defaults", func() {
			convey.So(cfg.Period(), convey.ShouldEqual, 20*time.Millisecond)
			convey.So(cfg.StateWaitTimeout(), convey.ShouldEqual, time.Second)
			convey.So(cfg.OverrunLogInterval(), convey.ShouldEqual, time.Second)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefreshInterval(), convey.ShouldEqual, 5*time.Second)
		})

		convey.Convey("Then no key is reported missing before loading", func() {
			convey.So(cfg.Missing(config.KeyPublishFrequency), convey.ShouldBeFalse)
			convey.So(cfg.Source(), convey.ShouldBeEmpty)
		})
	})
}

func TestConfig_PackagePathList(t *testing.T) {
	convey.Convey("Given package paths separated like ROS_PACKAGE_PATH", t, func() {
		cfg := config.New()
		cfg.PackagePaths = "/opt/ros/share:/home/robot/ws/src"

		convey.Convey("Then they should split into a list", func() {
			convey.So(cfg.PackagePathList(), convey.ShouldResemble, []string{"/opt/ros/share", "/home/robot/ws/src"})
		})

		convey.Convey("Then an empty value should give no paths", func() {
			cfg.PackagePaths = ""
			convey.So(cfg.PackagePathList(), convey.ShouldBeEmpty)
		})
	})
}
