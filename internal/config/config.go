// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional file and ROBOCLOUD_* env vars.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"path/filepath"
	"time"
)

// Keys whose absence is reported at startup so defaults are visible in logs.
const (
	KeyRobotDescription = "robot_description"
	KeyJointStatesTopic = "joint_states_topic"
	KeyPublishFrequency = "publish_frequency"
	KeyUseVisualMesh    = "use_visual_mesh"
)

// Config contains process configuration.
type Config struct {
	// RobotDescription is the serialized skeletal model (URDF XML). Required.
	RobotDescription string `koanf:"robot_description"`

	// RobotDescriptionFile is read into RobotDescription when the latter is empty.
	RobotDescriptionFile string `koanf:"robot_description_file"`

	// JointStatesTopic names the inbound joint-state channel.
	JointStatesTopic string `koanf:"joint_states_topic"`

	// PublishFrequency is the target frame rate in Hz.
	PublishFrequency float64 `koanf:"publish_frequency"`

	// UseVisualMesh samples visual meshes instead of collision geometry.
	UseVisualMesh bool `koanf:"use_visual_mesh"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text, json, pretty.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// UDPAddr enables the UDP joint-state listener when non-empty, e.g. ":9081".
	UDPAddr string `koanf:"udp_addr"`

	// StateWaitTimeoutMS bounds one wait for a fresh skeletal state.
	StateWaitTimeoutMS int `koanf:"state_wait_timeout_ms"`

	// OverrunLogIntervalMS rate-limits the slow-loop log line.
	OverrunLogIntervalMS int `koanf:"overrun_log_interval_ms"`

	// QueueSize bounds the in-memory joint-state queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets the size of the message id deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// PackagePaths lists roots searched for package:// mesh resources,
	// separated like ROS_PACKAGE_PATH.
	PackagePaths string `koanf:"package_paths"`

	// MeshRoot resolves plain relative mesh paths.
	MeshRoot string `koanf:"mesh_root"`

	// PCDOutput, when set, receives every frame as a binary PCD file.
	PCDOutput string `koanf:"pcd_output"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshIntervalMS sets how often polled gauges are refreshed.
	MetricsRefreshIntervalMS int `koanf:"metrics_refresh_interval_ms"`

	// source is the config file path, empty when none was given.
	source string
	// absent holds optional keys no source provided.
	absent map[string]bool
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		JointStatesTopic:     "joint_states",
		PublishFrequency:     50,
		UseVisualMesh:        false,
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		StateWaitTimeoutMS:   1000,
		OverrunLogIntervalMS: 1000,
		QueueSize:            1024,
		DedupeSize:           4096,

		MetricsEnabled:           true,
		MetricsRefreshIntervalMS: 5000,
	}
}

// Missing reports whether an optional key was absent from every source.
func (c *Config) Missing(key string) bool {
	return c.absent[key]
}

// Source returns the config file path, or "" when only env vars were used.
func (c *Config) Source() string {
	return c.source
}

// Period is the target frame period, 1/PublishFrequency.
func (c *Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.PublishFrequency)
}

// StateWaitTimeout returns StateWaitTimeoutMS as a duration.
func (c *Config) StateWaitTimeout() time.Duration {
	return time.Duration(c.StateWaitTimeoutMS) * time.Millisecond
}

// OverrunLogInterval returns OverrunLogIntervalMS as a duration.
func (c *Config) OverrunLogInterval() time.Duration {
	return time.Duration(c.OverrunLogIntervalMS) * time.Millisecond
}

// MetricsRefreshInterval returns MetricsRefreshIntervalMS as a duration.
func (c *Config) MetricsRefreshInterval() time.Duration {
	return time.Duration(c.MetricsRefreshIntervalMS) * time.Millisecond
}

// PackagePathList splits PackagePaths on the OS list separator.
func (c *Config) PackagePathList() []string {
	return filepath.SplitList(c.PackagePaths)
}
