package analyzer

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/funpreview/internal/source"
)

// MinFeatures is the number of turning points each sequence needs for the
// correlation to be meaningful.
const MinFeatures = 5

var (
	ErrEmptyInput           = errors.New("empty input")
	ErrInsufficientFeatures = errors.New("insufficient features")
	ErrInvalidInput         = errors.New("invalid input")
)

// Result of aligning a target sequence against a reference. OffsetMs is
// positive when the target happens later than the reference. Err is set
// instead of failing when the inputs cannot be aligned; the counts are
// still filled in when extraction ran.
type Result struct {
	OffsetMs       int64
	RefFeatures    int
	TargetFeatures int
	Err            error
}

// Align estimates the time offset of target relative to ref using the
// extrema of both curves.
func Align(ref, target source.Sequence, prominence float64) Result {
	return align(NewExtremaDetector(prominence), ref, target)
}

func align(det Detector, ref, target source.Sequence) Result {
	if len(ref) == 0 || len(target) == 0 {
		return Result{Err: ErrEmptyInput}
	}
	if err := source.Validate(ref); err != nil {
		return Result{Err: fmt.Errorf("%w: reference: %v", ErrInvalidInput, err)}
	}
	if err := source.Validate(target); err != nil {
		return Result{Err: fmt.Errorf("%w: target: %v", ErrInvalidInput, err)}
	}

	// Step 1: Feature extraction
	refTimes := featureTimes(det.Detect(ref))
	targetTimes := featureTimes(det.Detect(target))
	res := Result{RefFeatures: len(refTimes), TargetFeatures: len(targetTimes)}
	if len(refTimes) < MinFeatures || len(targetTimes) < MinFeatures {
		res.Err = ErrInsufficientFeatures
		return res
	}

	// Step 2: Cross-correlate the impulse trains. Both trains are 0/1, so
	// the correlation at lag k is the number of feature pairs with
	// target - ref == k. Only lags hit by some pair can be non-zero.
	corr := make(map[int64]uint32)
	for _, t := range targetTimes {
		for _, r := range refTimes {
			corr[t-r]++
		}
	}

	// Step 3: Highest count wins, ties go to the smallest lag
	var best int64
	var bestCount uint32
	for lag, c := range corr {
		if c > bestCount || (c == bestCount && lag < best) {
			best, bestCount = lag, c
		}
	}
	res.OffsetMs = best
	return res
}

func featureTimes(features []Feature) []int64 {
	out := make([]int64, len(features))
	for i, f := range features {
		out[i] = f.At
	}
	return out
}

// Aligner runs alignments with a configured detector and logs the outcome.
type Aligner struct {
	Detector Detector
	Log      logrus.FieldLogger
}

func NewAligner(det Detector, log logrus.FieldLogger) *Aligner {
	if det == nil {
		det = NewExtremaDetector(DefaultProminence)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Aligner{Detector: det, Log: log}
}

func (a *Aligner) Align(ref, target source.Sequence) Result {
	res := align(a.Detector, ref, target)
	entry := a.Log.WithFields(logrus.Fields{
		"ref_features":    res.RefFeatures,
		"target_features": res.TargetFeatures,
	})
	if res.Err != nil {
		entry.Warnf("signal alignment skipped: %v", res.Err)
		return res
	}
	entry.WithField("offset_ms", res.OffsetMs).Info("signal alignment complete")
	return res
}
