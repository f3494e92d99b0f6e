package chapters

import (
	"math"

	"github.com/google/uuid"

	"github.com/ivlev/funpreview/internal/source"
)

// DefaultFPS is used when frame/time conversion gets a non-positive rate.
const DefaultFPS = 30.0

func (m *Manager) fps(fps float64) float64 {
	if fps <= 0 {
		m.log.Warnf("invalid fps %v for chapter sync, using %.1f", fps, DefaultFPS)
		return DefaultFPS
	}
	return fps
}

// FromMarks replaces the set with chapters converted from millisecond marks
// and repairs any overlaps the marks contained.
func (m *Manager) FromMarks(marks []source.ChapterMark, fps float64) {
	fps = m.fps(fps)

	m.chapters = m.chapters[:0]
	for _, mk := range marks {
		long := mk.PositionLong
		if long == "" {
			long = mk.Name
		}
		m.chapters = append(m.chapters, Chapter{
			ID:         uuid.NewString(),
			StartFrame: msToFrame(mk.StartMs, fps),
			EndFrame:   msToFrame(mk.EndMs, fps),
			ShortLabel: mk.PositionShort,
			LongLabel:  long,
		})
	}
	m.sort()
	m.RepairOverlaps()
	m.log.Debugf("loaded %d chapters from %d marks", len(m.chapters), len(marks))
}

// ToMarks converts the set to millisecond marks in start order.
func (m *Manager) ToMarks(fps float64) []source.ChapterMark {
	fps = m.fps(fps)

	out := make([]source.ChapterMark, 0, len(m.chapters))
	for _, c := range m.chapters {
		out = append(out, source.ChapterMark{
			Name:          c.LongLabel,
			StartMs:       frameToMs(c.StartFrame, fps),
			EndMs:         frameToMs(c.EndFrame, fps),
			PositionShort: c.ShortLabel,
			PositionLong:  c.LongLabel,
		})
	}
	return out
}

// frameToMs truncates; msToFrame rounds so that a frame survives the trip
// through whole milliseconds.
func frameToMs(frame int, fps float64) int64 {
	return int64(float64(frame) / fps * 1000)
}

func msToFrame(ms int64, fps float64) int {
	return int(math.Round(float64(ms) / 1000 * fps))
}
