package meshstore

import "errors"

// ErrMeshDecode wraps a failure to decode a segment mesh that has a path.
var ErrMeshDecode = errors.New("segment mesh decode failed")
