// Package preview renders a top-down image of a frame for quick inspection.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/okian/robocloud/internal/domain/cloud"
)

// Image formats accepted by Encode.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

const (
	defaultGrid = 128
	defaultSize = 512
)

var palette = []color.RGBA{ //nolint:gochecknoglobals // segment colours
	{R: 0xe6, G: 0x19, B: 0x4b, A: 0xff},
	{R: 0x3c, G: 0xb4, B: 0x4b, A: 0xff},
	{R: 0x43, G: 0x63, B: 0xd8, A: 0xff},
	{R: 0xf5, G: 0x82, B: 0x31, A: 0xff},
	{R: 0x91, G: 0x1e, B: 0xb4, A: 0xff},
	{R: 0x42, G: 0xd4, B: 0xf4, A: 0xff},
	{R: 0xf0, G: 0x32, B: 0xe6, A: 0xff},
	{R: 0xbf, G: 0xef, B: 0x45, A: 0xff},
}

// Renderer projects points onto the XY plane. Each grid cell takes the
// colour of the highest point that falls in it; the grid is then scaled to
// the output size with nearest-neighbour sampling.
type Renderer struct {
	grid       int
	size       int
	background color.RGBA
}

// NewRenderer creates a renderer with a 128 cell grid and 512 px output.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		grid:       defaultGrid,
		size:       defaultSize,
		background: color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Size returns the output side length.
func (r *Renderer) Size() int { return r.size }

// Render draws f. The image is north-up: +X to the right, +Y up.
func (r *Renderer) Render(f *cloud.Frame) (*image.RGBA, error) {
	if f == nil || f.Len() == 0 {
		return nil, ErrEmptyFrame
	}

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for _, p := range f.Points {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	// Square extent keeps the aspect ratio.
	span := max(maxX-minX, maxY-minY)
	if span <= 0 {
		span = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	x0, y0 := cx-span/2, cy-span/2

	g := r.grid
	grid := image.NewRGBA(image.Rect(0, 0, g, g))
	draw.Draw(grid, grid.Bounds(), &image.Uniform{C: r.background}, image.Point{}, draw.Src)
	height := make([]float32, g*g)
	for i := range height {
		height[i] = float32(math.Inf(-1))
	}

	scale := float32(g-1) / span
	for i, p := range f.Points {
		col := int((p.X - x0) * scale)
		row := g - 1 - int((p.Y-y0)*scale)
		cell := row*g + col
		if p.Z < height[cell] {
			continue
		}
		height[cell] = p.Z
		grid.SetRGBA(col, row, palette[int(f.Tags[i])%len(palette)])
	}

	out := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.NearestNeighbor.Scale(out, out.Bounds(), grid, grid.Bounds(), draw.Src, nil)
	return out, nil
}

// Encode writes img in format ("webp" or "png").
func Encode(w io.Writer, img image.Image, format string) error {
	switch strings.ToLower(format) {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupported, format)
	}
	return nil
}

// ContentType returns the MIME type for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatWebP:
		return "image/webp"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
