package preview

import "errors"

var (
	ErrEmptyFrame  = errors.New("frame has no points")
	ErrUnsupported = errors.New("unsupported image format")
)
