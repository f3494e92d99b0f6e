package analyzer

import "github.com/ivlev/funpreview/internal/source"

type FeatureKind int

const (
	Peak FeatureKind = iota
	Valley
)

func (k FeatureKind) String() string {
	if k == Valley {
		return "valley"
	}
	return "peak"
}

// Feature is a turning point of the motion curve
type Feature struct {
	Index      int   // index into the analyzed sequence
	At         int64 // timestamp in ms
	Pos        int
	Kind       FeatureKind
	Prominence float64
}

// Detector is the interface for feature extraction strategies
type Detector interface {
	Detect(actions source.Sequence) []Feature
}
