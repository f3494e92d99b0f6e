// Package chapters keeps a set of labeled frame ranges that never share a
// frame. Ranges are inclusive at both ends.
package chapters

import (
	"errors"
	"fmt"
)

var (
	ErrOverlap      = errors.New("chapter overlaps an existing chapter")
	ErrNotFound     = errors.New("chapter not found")
	ErrInvalidRange = errors.New("invalid chapter range")
)

// Chapter is a labeled inclusive frame interval.
type Chapter struct {
	ID         string
	StartFrame int
	EndFrame   int
	ShortLabel string
	LongLabel  string
}

// Frames is the number of frames the chapter covers.
func (c Chapter) Frames() int {
	return c.EndFrame - c.StartFrame + 1
}

func (c Chapter) Contains(frame int) bool {
	return c.StartFrame <= frame && frame <= c.EndFrame
}

// Intersects reports whether [start, end] shares at least one frame with c.
func (c Chapter) Intersects(start, end int) bool {
	return max(start, c.StartFrame) <= min(end, c.EndFrame)
}

func (c Chapter) String() string {
	return fmt.Sprintf("%q [%d-%d]", c.ShortLabel, c.StartFrame, c.EndFrame)
}

func validRange(start, end int) error {
	if start < 0 || end < start {
		return fmt.Errorf("%w: [%d-%d]", ErrInvalidRange, start, end)
	}
	return nil
}
