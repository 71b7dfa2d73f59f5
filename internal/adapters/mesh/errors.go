package mesh

import "errors"

// Sentinel errors for mesh loading.
var (
	ErrDecode      = errors.New("mesh decode failed")
	ErrUnsupported = errors.New("unsupported mesh format")
	ErrNotFound    = errors.New("mesh resource not found")
)
