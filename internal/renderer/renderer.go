// Package renderer rasterizes action sequences into RGBA preview images:
// the timeline strip drawn under the editor and the speed heatmap bar.
//
// Pixel mapping, shared by every mode:
//
//	x = round(t / D * (W-1))           column of an action at t seconds
//	y = round((1 - pos/100) * (H-1))   row of a position, 100 at the top
//
// Rounding is math.Round (half away from zero) and coordinates are clamped to
// the image. Column c stands for the time c*D/(W-1).
//
// Actions must have strictly increasing timestamps. Out-of-order input does
// not panic but the drawn geometry is undefined.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/ivlev/funpreview/internal/colormap"
	"github.com/ivlev/funpreview/internal/source"
	"github.com/ivlev/funpreview/internal/system"
)

type Mode int

const (
	ModeTimeline Mode = iota
	ModeHeatmap
)

func (m Mode) String() string {
	switch m {
	case ModeTimeline:
		return "timeline"
	case ModeHeatmap:
		return "heatmap"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Detail selects how the timeline mode draws the curve.
type Detail int

const (
	// DetailEnvelope fills the min/max band swept per column.
	DetailEnvelope Detail = iota
	// DetailSpeed draws every segment as a line coloured by its speed.
	DetailSpeed
)

// ParseDetail maps a config string to a Detail.
func ParseDetail(s string) (Detail, error) {
	switch s {
	case "envelope", "simplified", "":
		return DetailEnvelope, nil
	case "speed", "detailed":
		return DetailSpeed, nil
	default:
		return DetailEnvelope, fmt.Errorf("unknown timeline detail: %s", s)
	}
}

var (
	Background    = color.RGBA{R: 31, G: 31, B: 38, A: 255}
	GuidelineTint = color.RGBA{R: 77, G: 77, B: 77, A: 179}
)

const (
	minDuration = 0.001 // seconds
	minDelta    = 1e-6  // seconds, below this a segment has zero speed
	envelopeA   = 0.5
)

// Renderer turns action snapshots into preview images. It holds no mutable
// state and is safe for concurrent use by the preview workers.
type Renderer struct {
	Colors colormap.Mapper
}

func New(colors colormap.Mapper) *Renderer {
	if colors == nil {
		colors = colormap.NewDefault()
	}
	return &Renderer{Colors: colors}
}

// Rasterize draws actions into a width x height RGBA image. It never fails:
// with no actions, a duration under a millisecond or too few points for the
// mode, the result is the background with its guideline. The returned buffer
// comes from the shared image pool and belongs to the caller.
func (r *Renderer) Rasterize(width, height int, duration float64, actions source.Sequence, mode Mode, detail Detail) *image.RGBA {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	img := system.GetImage(width, height)
	fillBackground(img)

	if len(actions) == 0 || duration <= minDuration {
		return img
	}

	switch mode {
	case ModeHeatmap:
		r.drawHeatmap(img, duration, actions)
	default:
		if detail == DetailSpeed {
			r.drawSpeedLines(img, duration, actions)
		} else {
			r.drawEnvelope(img, duration, actions)
		}
	}
	return img
}

// fillBackground paints the background and blends the horizontal centre
// guideline over it.
func fillBackground(img *image.RGBA) {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	c := Background
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w*4; x += 4 {
			row[x], row[x+1], row[x+2], row[x+3] = c.R, c.G, c.B, c.A
		}
	}
	line := image.Rect(img.Rect.Min.X, img.Rect.Min.Y+h/2, img.Rect.Max.X, img.Rect.Min.Y+h/2+1)
	draw.Draw(img, line, image.NewUniform(GuidelineTint), image.Point{}, draw.Over)
}

func columnOf(atMs int64, duration float64, width int) int {
	return clamp(int(math.Round(exactColumn(atMs, duration, width))), 0, width-1)
}

func exactColumn(atMs int64, duration float64, width int) float64 {
	return float64(atMs) / 1000.0 / duration * float64(width-1)
}

func rowOf(pos int, height int) int {
	return clamp(int(math.Round((1-float64(pos)/100.0)*float64(height-1))), 0, height-1)
}

// segmentSpeeds returns |dpos|/dt for every consecutive pair in units per second.
func segmentSpeeds(actions source.Sequence) []float64 {
	if len(actions) < 2 {
		return nil
	}
	speeds := make([]float64, len(actions)-1)
	for i := range speeds {
		dt := float64(actions[i+1].At-actions[i].At) / 1000.0
		if dt < minDelta {
			continue
		}
		dp := math.Abs(float64(actions[i+1].Pos - actions[i].Pos))
		speeds[i] = dp / dt
	}
	return speeds
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
