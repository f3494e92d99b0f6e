package analyzer

import (
	"sort"

	"github.com/ivlev/funpreview/internal/source"
)

// DefaultProminence is the minimum height, in position units, a turning
// point must stand out from its surroundings.
const DefaultProminence = 5.0

// ExtremaDetector finds local maxima and minima of position over time and
// keeps those whose prominence reaches the threshold.
type ExtremaDetector struct {
	Prominence float64
}

func NewExtremaDetector(prominence float64) *ExtremaDetector {
	if prominence < 0 {
		prominence = 0
	}
	return &ExtremaDetector{Prominence: prominence}
}

// Detect returns peaks and valleys sorted by index. Sequences shorter than
// three actions have none.
func (d *ExtremaDetector) Detect(actions source.Sequence) []Feature {
	if len(actions) < 3 {
		return nil
	}

	pos := make([]int, len(actions))
	neg := make([]int, len(actions))
	for i, a := range actions {
		pos[i] = a.Pos
		neg[i] = -a.Pos
	}

	var out []Feature
	for _, p := range findPeaks(pos, d.Prominence) {
		out = append(out, Feature{Index: p.index, At: actions[p.index].At, Pos: actions[p.index].Pos, Kind: Peak, Prominence: p.prominence})
	}
	for _, p := range findPeaks(neg, d.Prominence) {
		out = append(out, Feature{Index: p.index, At: actions[p.index].At, Pos: actions[p.index].Pos, Kind: Valley, Prominence: p.prominence})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

type peak struct {
	index      int
	prominence float64
}

// findPeaks returns the local maxima of x with at least minProminence.
// A flat top counts once, at its middle sample, when the samples on both
// sides of it are lower. The first and last samples are never peaks.
func findPeaks(x []int, minProminence float64) []peak {
	var out []peak
	last := len(x) - 1
	for i := 1; i < last; i++ {
		if x[i-1] >= x[i] {
			continue
		}
		ahead := i + 1
		for ahead < last && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			mid := (i + ahead - 1) / 2
			if prom := prominence(x, mid); prom >= minProminence {
				out = append(out, peak{index: mid, prominence: prom})
			}
		}
		i = ahead - 1
	}
	return out
}

// prominence is the height of x[p] above the higher of the two lowest
// points reached when walking outwards until a sample rises above x[p].
func prominence(x []int, p int) float64 {
	leftMin := x[p]
	for i := p; i >= 0 && x[i] <= x[p]; i-- {
		leftMin = min(leftMin, x[i])
	}
	rightMin := x[p]
	for i := p; i < len(x) && x[i] <= x[p]; i++ {
		rightMin = min(rightMin, x[i])
	}
	return float64(x[p] - max(leftMin, rightMin))
}
