package renderer

import (
	"image"
	"image/color"

	"github.com/ivlev/funpreview/internal/source"
)

// drawHeatmap colours every column with the speed of the segment active at
// that column's time. Columns before the first action are left transparent
// so the layer underneath shows through.
func (r *Renderer) drawHeatmap(img *image.RGBA, duration float64, actions source.Sequence) {
	if len(actions) < 2 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()

	xs := make([]int, len(actions))
	for i, a := range actions {
		xs[i] = columnOf(a.At, duration, w)
	}
	firstX := exactColumn(actions[0].At, duration, w)
	colors := r.Colors.ColorsForSpeeds(segmentSpeeds(actions))
	lastSeg := len(colors) - 1

	column := make([]color.RGBA, w)
	idx := -1
	for x := 0; x < w; x++ {
		// xs is non-decreasing, so the active segment only moves forward
		for idx+1 < len(xs) && xs[idx+1] <= x {
			idx++
		}
		if float64(x) < firstX || idx < 0 {
			column[x] = color.RGBA{}
			continue
		}
		c := colors[min(idx, lastSeg)]
		c.A = 255
		column[x] = c
	}

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x, c := range column {
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}
