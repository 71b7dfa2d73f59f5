package jointpub

import "os"

// ShowHelp prints usage information for the joint publisher.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`robocloud joint publisher
=========================

Streams sinusoidal joint states to a running robocloud service.

Usage:
  go run ./cmd/joint-publisher [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -udp string
        Send UDP datagrams to this address instead of HTTP
  -topic string
        Joint-state topic (default "joint_states")
  -joints string
        Comma separated joint names
  -urdf string
        URDF file whose active joints are driven when -joints is empty
  -rate float
        Messages per second (default 100)
  -count int
        Number of messages to send (default 0, unbounded)
  -duration duration
        Stop after this long (default 0, unbounded)
  -amplitude float
        Sine amplitude (default 0.5)
  -frequency float
        Sine frequency in Hz (default 0.25)
  -timeout duration
        HTTP request timeout (default 5s)
  -verbose
        Log every message
  -help
        Show this help message

Examples:
  go run ./cmd/joint-publisher -urdf robot.urdf
  go run ./cmd/joint-publisher -joints pan,tilt -udp localhost:9081 -rate 200
`)
}
