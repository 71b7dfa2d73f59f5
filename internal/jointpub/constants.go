package jointpub

import "time"

// HTTP status code constants.
const (
	StatusOK       = 200
	StatusAccepted = 202
)

// Defaults used by the command line.
const (
	DefaultBaseURL   = "http://localhost:9080"
	DefaultTopic     = "joint_states"
	DefaultRate      = 100.0
	DefaultAmplitude = 0.5
	DefaultFrequency = 0.25
	DefaultTimeout   = 5 * time.Second
)

// Result classifies one send.
type Result int

const (
	ResultAccepted Result = iota
	ResultDuplicate
	ResultFailed
)
