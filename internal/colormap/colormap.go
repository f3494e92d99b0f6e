// Package colormap turns stroke speeds into display colours.
package colormap

import (
	"image/color"
	"math"
)

// Mapper maps a speed (position units per second) to a colour. The batch
// entry point is what the rasterizer uses; the scalar one is kept for single
// lookups such as the envelope reference colour.
type Mapper interface {
	ColorForSpeed(speed float64) color.RGBA
	ColorsForSpeeds(speeds []float64) []color.RGBA
}

// Stop is one anchor of a gradient.
type Stop struct {
	Speed float64
	Color color.RGBA
}

// Gradient interpolates linearly between stops sorted by speed. Speeds
// outside the range clamp to the first or last stop.
type Gradient struct {
	Stops []Stop
}

// EnvelopeSpeed is the speed whose colour fills the simplified timeline.
const EnvelopeSpeed = 500.0

// NewDefault returns the heatmap palette: blue for slow strokes through
// green and yellow to red for very fast ones.
func NewDefault() *Gradient {
	return &Gradient{Stops: []Stop{
		{Speed: 0, Color: color.RGBA{R: 30, G: 144, B: 255, A: 255}},
		{Speed: 100, Color: color.RGBA{R: 0, G: 255, B: 255, A: 255}},
		{Speed: 200, Color: color.RGBA{R: 0, G: 255, B: 0, A: 255}},
		{Speed: 350, Color: color.RGBA{R: 255, G: 255, B: 0, A: 255}},
		{Speed: 500, Color: color.RGBA{R: 255, G: 165, B: 0, A: 255}},
		{Speed: 800, Color: color.RGBA{R: 255, G: 0, B: 0, A: 255}},
	}}
}

func (g *Gradient) ColorForSpeed(speed float64) color.RGBA {
	n := len(g.Stops)
	if n == 0 {
		return color.RGBA{A: 255}
	}
	if math.IsNaN(speed) || speed <= g.Stops[0].Speed {
		return g.Stops[0].Color
	}
	if speed >= g.Stops[n-1].Speed {
		return g.Stops[n-1].Color
	}

	for i := 0; i < n-1; i++ {
		a, b := g.Stops[i], g.Stops[i+1]
		if speed >= b.Speed {
			continue
		}
		span := b.Speed - a.Speed
		if span <= 0 {
			return b.Color
		}
		return mix(a.Color, b.Color, (speed-a.Speed)/span)
	}
	return g.Stops[n-1].Color
}

func (g *Gradient) ColorsForSpeeds(speeds []float64) []color.RGBA {
	out := make([]color.RGBA, len(speeds))
	for i, s := range speeds {
		out[i] = g.ColorForSpeed(s)
	}
	return out
}

func mix(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(math.Round(lerp(float64(a.R), float64(b.R), t))),
		G: uint8(math.Round(lerp(float64(a.G), float64(b.G), t))),
		B: uint8(math.Round(lerp(float64(a.B), float64(b.B), t))),
		A: uint8(math.Round(lerp(float64(a.A), float64(b.A), t))),
	}
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
