package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnknownTopic = errors.New("unknown topic")
	ErrNoFrame      = errors.New("no frame published yet")
)
