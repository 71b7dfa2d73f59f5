package config_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okian/robocloud/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestWatch(t *testing.T) {
	convey.Convey("Given a config loaded from a file", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		path := writeTempFile(t, "watch.yaml", "robot_description: '<robot/>'\nlog_level: info\n")
		cfg, err := config.LoadFile(context.Background(), path)
		convey.So(err, convey.ShouldBeNil)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes := make(chan *config.Config, 4)
		err = config.Watch(ctx, cfg, func(c *config.Config) { changes <- c }, func(error) {})
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When the file is rewritten", func() {
			convey.So(os.WriteFile(path, []byte("robot_description: '<robot/>'\nlog_level: debug\n"), 0o600), convey.ShouldBeNil)

			convey.Convey("Then the new config should be delivered", func() {
				var got *config.Config
				select {
				case got = <-changes:
				case <-time.After(3 * time.Second):
				}
				convey.So(got, convey.ShouldNotBeNil)
				convey.So(got.LogLevel, convey.ShouldEqual, "debug")
			})
		})
	})

	convey.Convey("Given a config without a file source", t, func() {
		cfg := config.New()

		convey.Convey("Then Watch should be a no-op", func() {
			err := config.Watch(context.Background(), cfg, func(*config.Config) {}, func(error) {})
			convey.So(err, convey.ShouldBeNil)
		})
	})
}
