// Package jointpub streams synthetic joint states to a running service.
package jointpub

import "time"

// Config holds configuration for one publishing run.
type Config struct {
	BaseURL   string        // HTTP base URL; used when UDPAddr is empty
	UDPAddr   string        // UDP target, e.g. "localhost:9081"
	Topic     string        // joint-state topic
	Joints    []string      // joint names; taken from URDFFile when empty
	URDFFile  string        // model whose active joints are driven
	Rate      float64       // messages per second
	Count     int           // messages to send; 0 runs until Duration or ctx ends
	Duration  time.Duration // run length; 0 means unbounded
	Amplitude float64       // sine amplitude in joint units
	Frequency float64       // sine frequency in Hz
	Timeout   time.Duration // HTTP request timeout
	Verbose   bool          // log every message
}

// Stats holds run statistics.
type Stats struct {
	Sent      int
	Accepted  int
	Duplicate int
	Failed    int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}
