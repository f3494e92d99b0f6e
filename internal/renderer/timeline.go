package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/ivlev/funpreview/internal/colormap"
	"github.com/ivlev/funpreview/internal/source"
)

// envelope holds, per column, the lowest and highest row the curve touches.
// max < 0 marks an uncovered column.
type envelope struct {
	min []int
	max []int
}

func newEnvelope(width, height int) *envelope {
	e := &envelope{min: make([]int, width), max: make([]int, width)}
	for x := range e.min {
		e.min[x] = height
		e.max[x] = -1
	}
	return e
}

func (e *envelope) add(x, y int) {
	if y < e.min[x] {
		e.min[x] = y
	}
	if y > e.max[x] {
		e.max[x] = y
	}
}

// segment records the rows covered between two pixel points.
func (e *envelope) segment(x1, y1, x2, y2 int) {
	if x1 == x2 {
		e.add(x1, y1)
		e.add(x1, y2)
		return
	}
	dx := float64(x2 - x1)
	dy := float64(y2 - y1)
	for x := x1; x <= x2; x++ {
		y := float64(y1) + dy*float64(x-x1)/dx
		e.add(x, int(math.Round(y)))
	}
}

// outline builds the closed polygon around the covered columns: the minima
// from left to right, then the maxima from right to left. Vertices sit on
// pixel edges so a covered pixel is fully inside.
func (e *envelope) outline() []point {
	var top, bottom []point
	for x := range e.min {
		if e.max[x] < 0 {
			continue
		}
		fx := float32(x)
		top = append(top, point{fx, float32(e.min[x])}, point{fx + 1, float32(e.min[x])})
		bottom = append(bottom, point{fx + 1, float32(e.max[x] + 1)}, point{fx, float32(e.max[x] + 1)})
	}
	if len(top) == 0 {
		return nil
	}
	poly := top
	for i := len(bottom) - 2; i >= 0; i -= 2 {
		poly = append(poly, bottom[i], bottom[i+1])
	}
	return poly
}

func (r *Renderer) drawEnvelope(img *image.RGBA, duration float64, actions source.Sequence) {
	if len(actions) < 2 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()

	env := newEnvelope(w, h)
	px, py := columnOf(actions[0].At, duration, w), rowOf(actions[0].Pos, h)
	for _, a := range actions[1:] {
		x, y := columnOf(a.At, duration, w), rowOf(a.Pos, h)
		env.segment(px, py, x, y)
		px, py = x, y
	}

	poly := env.outline()
	if poly == nil {
		return
	}

	ref := r.Colors.ColorForSpeed(colormap.EnvelopeSpeed)
	tint := color.NRGBA{R: ref.R, G: ref.G, B: ref.B, A: uint8(math.Round(255 * envelopeA))}
	fillPolygon(img, image.Rect(0, 0, w, h), poly, tint)
}

func (r *Renderer) drawSpeedLines(img *image.RGBA, duration float64, actions source.Sequence) {
	if len(actions) < 2 {
		return
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()

	colors := r.Colors.ColorsForSpeeds(segmentSpeeds(actions))
	for i := 0; i < len(actions)-1; i++ {
		x1, y1 := columnOf(actions[i].At, duration, w), rowOf(actions[i].Pos, h)
		x2, y2 := columnOf(actions[i+1].At, duration, w), rowOf(actions[i+1].Pos, h)
		if x1 == x2 && y1 == y2 {
			continue
		}
		strokeLine(img, x1, y1, x2, y2, colors[i])
	}
}
