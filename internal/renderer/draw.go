package renderer

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"
)

type point struct {
	X, Y float32
}

// fillPolygon composites c over dst inside the closed polygon. The
// rasterizer covers exactly bounds, which must lie inside dst.
func fillPolygon(dst *image.RGBA, bounds image.Rectangle, poly []point, c color.Color) {
	if len(poly) < 3 || bounds.Empty() {
		return
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float32(bounds.Min.X), float32(bounds.Min.Y)

	z.MoveTo(poly[0].X-ox, poly[0].Y-oy)
	for _, p := range poly[1:] {
		z.LineTo(p.X-ox, p.Y-oy)
	}
	z.ClosePath()
	z.Draw(dst, bounds, image.NewUniform(c), image.Point{})
}

// strokeLine draws an anti-aliased one pixel wide line between the centres
// of two pixels. Only the line's bounding box is rasterized.
func strokeLine(dst *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	ax, ay := float64(x1)+0.5, float64(y1)+0.5
	bx, by := float64(x2)+0.5, float64(y2)+0.5
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	// half-width normal
	nx, ny := -dy/length*0.5, dx/length*0.5

	quad := []point{
		{float32(ax + nx), float32(ay + ny)},
		{float32(bx + nx), float32(by + ny)},
		{float32(bx - nx), float32(by - ny)},
		{float32(ax - nx), float32(ay - ny)},
	}

	box := image.Rect(min(x1, x2)-1, min(y1, y2)-1, max(x1, x2)+2, max(y1, y2)+2)
	box = box.Intersect(dst.Rect)
	if box.Empty() {
		return
	}
	fillPolygon(dst, box, quad, c)
}
