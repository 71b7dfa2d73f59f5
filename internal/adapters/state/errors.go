package state

import "errors"

// ErrInvalidState marks a joint-state message the monitor refused.
var ErrInvalidState = errors.New("invalid joint state")
