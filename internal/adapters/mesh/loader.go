// Package mesh resolves mesh resources and decodes their vertex lists.
package mesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	packageScheme = "package://"
	fileScheme    = "file://"
)

type cacheKey struct {
	path  string
	scale mgl32.Vec3
}

// Loader decodes STL and OBJ resources. Decoded vertex lists are cached per
// resolved path and scale and shared between callers; treat them as read-only.
type Loader struct {
	packagePaths []string
	meshRoot     string

	mu    sync.Mutex
	cache map[cacheKey][]mgl32.Vec3
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{cache: make(map[cacheKey][]mgl32.Vec3)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves resource and returns its vertices multiplied by scale.
func (l *Loader) Load(ctx context.Context, resource string, scale mgl32.Vec3) ([]mgl32.Vec3, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.Resolve(resource)
	if err != nil {
		return nil, err
	}
	key := cacheKey{path: path, scale: scale}

	l.mu.Lock()
	if v, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return v, nil
	}
	l.mu.Unlock()

	verts, err := decodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, resource, err)
	}
	if len(verts) == 0 {
		return nil, fmt.Errorf("%w: %s: no vertices", ErrDecode, resource)
	}
	if scale != (mgl32.Vec3{1, 1, 1}) {
		for i, v := range verts {
			verts[i] = mgl32.Vec3{v[0] * scale[0], v[1] * scale[1], v[2] * scale[2]}
		}
	}

	l.mu.Lock()
	l.cache[key] = verts
	l.mu.Unlock()
	return verts, nil
}

// Resolve maps a resource URI to a filesystem path.
func (l *Loader) Resolve(resource string) (string, error) {
	switch {
	case strings.HasPrefix(resource, packageScheme):
		rest := strings.TrimPrefix(resource, packageScheme)
		for _, root := range l.packagePaths {
			candidate := filepath.Join(root, filepath.FromSlash(rest))
			if exists(candidate) {
				return candidate, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrNotFound, resource)
	case strings.HasPrefix(resource, fileScheme):
		path := strings.TrimPrefix(resource, fileScheme)
		if !exists(path) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, resource)
		}
		return path, nil
	default:
		path := resource
		if !filepath.IsAbs(path) && l.meshRoot != "" {
			path = filepath.Join(l.meshRoot, path)
		}
		if !exists(path) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, resource)
		}
		return path, nil
	}
}

func exists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}

func decodeFile(path string) ([]mgl32.Vec3, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return DecodeSTL(data)
	case ".obj":
		return DecodeOBJ(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}
}
