package renderer

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/funpreview/internal/colormap"
	"github.com/ivlev/funpreview/internal/source"
)

type countingMapper struct {
	colormap.Mapper
	batchCalls int
}

func (m *countingMapper) ColorsForSpeeds(speeds []float64) []color.RGBA {
	m.batchCalls++
	return m.Mapper.ColorsForSpeeds(speeds)
}

func zigzag(n int, stepMs int64) source.Sequence {
	seq := make(source.Sequence, n)
	for i := range seq {
		pos := 0
		if i%2 == 1 {
			pos = 100
		}
		seq[i] = source.Action{At: int64(i) * stepMs, Pos: pos}
	}
	return seq
}

func background(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillBackground(img)
	return img.Pix
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestRasterizeBufferSize(t *testing.T) {
	r := New(nil)
	actions := zigzag(50, 200)

	sizes := []struct{ w, h int }{{1, 1}, {3, 2}, {100, 20}, {640, 48}, {1920, 1}}
	modes := []struct {
		mode   Mode
		detail Detail
	}{
		{ModeTimeline, DetailEnvelope},
		{ModeTimeline, DetailSpeed},
		{ModeHeatmap, DetailEnvelope},
	}

	for _, s := range sizes {
		for _, m := range modes {
			img := r.Rasterize(s.w, s.h, 10, actions, m.mode, m.detail)
			if len(img.Pix) != s.w*s.h*4 {
				t.Errorf("%dx%d %s/%d: expected %d bytes, got %d", s.w, s.h, m.mode, m.detail, s.w*s.h*4, len(img.Pix))
			}
		}
	}
}

func TestRasterizeDegradedInputIsBackground(t *testing.T) {
	r := New(nil)
	want := background(40, 9)

	tests := []struct {
		name     string
		duration float64
		actions  source.Sequence
		mode     Mode
		detail   Detail
	}{
		{"no actions", 10, nil, ModeTimeline, DetailEnvelope},
		{"zero duration", 0, zigzag(10, 100), ModeTimeline, DetailEnvelope},
		{"negative duration", -5, zigzag(10, 100), ModeTimeline, DetailSpeed},
		{"tiny duration", 0.0005, zigzag(10, 100), ModeHeatmap, DetailEnvelope},
		{"single action envelope", 10, zigzag(1, 100), ModeTimeline, DetailEnvelope},
		{"single action heatmap", 10, zigzag(1, 100), ModeHeatmap, DetailEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 2; i++ {
				img := r.Rasterize(40, 9, tt.duration, tt.actions, tt.mode, tt.detail)
				if !bytes.Equal(img.Pix, want) {
					t.Fatalf("run %d: expected pure background", i)
				}
			}
		})
	}
}

func TestBackgroundGuideline(t *testing.T) {
	img := New(nil).Rasterize(10, 7, 10, nil, ModeTimeline, DetailEnvelope)
	// {77,77,77,179} over {31,31,38,255}
	want := color.RGBA{R: 86, G: 86, B: 88, A: 255}
	for x := 0; x < 10; x++ {
		if got := rgbaAt(img, x, 3); got != want {
			t.Errorf("guideline pixel %d = %+v, want %+v", x, got, want)
		}
	}
	if got := rgbaAt(img, 4, 0); got != Background {
		t.Errorf("background pixel = %+v", got)
	}
}

func TestEnvelopeFillsCoveredColumnsOnly(t *testing.T) {
	r := New(colormap.NewDefault())
	actions := source.Sequence{{At: 2000, Pos: 0}, {At: 4000, Pos: 100}}

	// x: 20 -> 40, y: 10 -> 0
	img := r.Rasterize(101, 11, 10, actions, ModeTimeline, DetailEnvelope)

	got := rgbaAt(img, 22, 9)
	if !near(got.R, 143, 3) || !near(got.G, 98, 3) || !near(got.B, 19, 3) || got.A != 255 {
		t.Errorf("expected half-blended envelope pixel, got %+v", got)
	}

	for _, p := range []image.Point{{22, 0}, {10, 9}, {60, 2}, {19, 10}} {
		if c := rgbaAt(img, p.X, p.Y); c != Background {
			t.Errorf("pixel %v should be untouched, got %+v", p, c)
		}
	}
}

func TestEnvelopeVerticalSegment(t *testing.T) {
	env := newEnvelope(5, 11)
	env.segment(2, 8, 2, 1)
	if env.min[2] != 1 || env.max[2] != 8 {
		t.Fatalf("vertical segment: min=%d max=%d", env.min[2], env.max[2])
	}
	if env.max[1] != -1 || env.max[3] != -1 {
		t.Fatal("neighbouring columns should stay uncovered")
	}

	env.segment(2, 1, 4, 5)
	if env.min[3] != 3 || env.max[3] != 3 || env.max[4] != 5 {
		t.Fatalf("sloped segment: col3=%d..%d col4 max=%d", env.min[3], env.max[3], env.max[4])
	}

	poly := env.outline()
	// three covered columns, four vertices each
	if len(poly) != 12 {
		t.Fatalf("expected 12 outline vertices, got %d", len(poly))
	}
	if poly[0] != (point{2, 1}) || poly[len(poly)-1] != (point{2, 9}) {
		t.Errorf("unexpected outline ends %v %v", poly[0], poly[len(poly)-1])
	}
}

func TestSpeedLines(t *testing.T) {
	m := &countingMapper{Mapper: colormap.NewDefault()}
	r := New(m)
	actions := source.Sequence{{At: 0, Pos: 0}, {At: 10000, Pos: 100}}

	img := r.Rasterize(11, 11, 10, actions, ModeTimeline, DetailSpeed)

	if m.batchCalls != 1 {
		t.Errorf("expected one batch colour lookup, got %d", m.batchCalls)
	}
	if c := rgbaAt(img, 2, 8); c == Background {
		t.Error("pixel on the line was not drawn")
	}
	if c := rgbaAt(img, 8, 8); c != Background {
		t.Errorf("pixel far from the line changed: %+v", c)
	}
}

func TestSpeedLinesSkipSamePixel(t *testing.T) {
	r := New(nil)
	// both actions quantize to column 0, row 10
	actions := source.Sequence{{At: 0, Pos: 0}, {At: 1, Pos: 0}}
	img := r.Rasterize(11, 11, 100, actions, ModeTimeline, DetailSpeed)
	if !bytes.Equal(img.Pix, background(11, 11)) {
		t.Error("zero-length segment should not draw")
	}
}

func TestHeatmapTransparentBeforeFirstAction(t *testing.T) {
	r := New(nil)
	w, h := 100, 4
	duration := 10.0
	actions := source.Sequence{{At: 4970, Pos: 0}, {At: 6000, Pos: 100}, {At: 9000, Pos: 20}}

	img := r.Rasterize(w, h, duration, actions, ModeHeatmap, DetailEnvelope)

	for x := 0; x < w; x++ {
		colTime := float64(x) * duration / float64(w-1)
		for y := 0; y < h; y++ {
			a := rgbaAt(img, x, y).A
			if colTime*1000 < float64(actions[0].At) {
				if a != 0 {
					t.Fatalf("column %d (t=%.3fs) before first action has alpha %d", x, colTime, a)
				}
			} else if a != 255 {
				t.Fatalf("column %d (t=%.3fs) should be opaque, alpha %d", x, colTime, a)
			}
		}
	}
}

func TestHeatmapUsesSegmentColours(t *testing.T) {
	g := &colormap.Gradient{Stops: []colormap.Stop{
		{Speed: 0, Color: color.RGBA{B: 255, A: 255}},
		{Speed: 1000, Color: color.RGBA{R: 255, A: 255}},
	}}
	r := New(g)
	// slow first segment, fast second segment
	actions := source.Sequence{{At: 0, Pos: 0}, {At: 5000, Pos: 10}, {At: 5100, Pos: 100}}

	img := r.Rasterize(101, 2, 10, actions, ModeHeatmap, DetailEnvelope)

	slow := rgbaAt(img, 10, 0)
	fast := rgbaAt(img, 50, 1)
	if slow.B < 200 || slow.R > 10 {
		t.Errorf("expected slow colour in first segment, got %+v", slow)
	}
	if fast.R < 200 {
		t.Errorf("expected fast colour at second segment, got %+v", fast)
	}
	// past the last action the last segment colour is held
	if tail := rgbaAt(img, 100, 0); tail != fast {
		t.Errorf("tail colour %+v != last segment %+v", tail, fast)
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		in      string
		want    Detail
		wantErr bool
	}{
		{"", DetailEnvelope, false},
		{"envelope", DetailEnvelope, false},
		{"speed", DetailSpeed, false},
		{"detailed", DetailSpeed, false},
		{"sparkles", DetailEnvelope, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDetail(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
