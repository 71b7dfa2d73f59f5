package queue

import "errors"

// Sentinel errors returned by Enqueue.
var (
	ErrQueueFull   = errors.New("queue full")
	ErrQueueClosed = errors.New("queue closed")
)
