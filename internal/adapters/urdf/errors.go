package urdf

import "errors"

// ErrInvalidModel marks a description that cannot form a single-rooted tree.
var ErrInvalidModel = errors.New("invalid robot model")
