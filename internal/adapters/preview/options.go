package preview

import "image/color"

// Option configures a Renderer.
type Option func(*Renderer)

// WithGrid sets the side of the square raster points are binned into before
// scaling.
func WithGrid(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.grid = n
		}
	}
}

// WithSize sets the output side length in pixels.
func WithSize(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.size = n
		}
	}
}

// WithBackground sets the fill colour.
func WithBackground(c color.RGBA) Option {
	return func(r *Renderer) {
		r.background = c
	}
}
