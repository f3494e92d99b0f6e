package chapters

import (
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager owns a chapter set and keeps it sorted by start frame. It is not
// safe for concurrent use; the editing layer calls it synchronously.
type Manager struct {
	chapters []Chapter
	log      logrus.FieldLogger
}

// New builds a manager over a copy of chapters. The input is sorted but
// not repaired; call RepairOverlaps for data of unknown origin.
func New(log logrus.FieldLogger, chapters ...Chapter) *Manager {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	m := &Manager{log: log, chapters: make([]Chapter, len(chapters))}
	copy(m.chapters, chapters)
	m.sort()
	return m
}

func (m *Manager) sort() {
	sort.SliceStable(m.chapters, func(i, j int) bool {
		return m.chapters[i].StartFrame < m.chapters[j].StartFrame
	})
}

// Chapters returns a copy of the set in ascending start order.
func (m *Manager) Chapters() []Chapter {
	out := make([]Chapter, len(m.chapters))
	copy(out, m.chapters)
	return out
}

func (m *Manager) Len() int {
	return len(m.chapters)
}

func (m *Manager) indexOf(id string) int {
	for i, c := range m.chapters {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Overlaps reports whether [start, end] shares a frame with any chapter
// other than the one with ID excludingID.
func (m *Manager) Overlaps(start, end int, excludingID string) bool {
	for _, c := range m.chapters {
		if excludingID != "" && c.ID == excludingID {
			continue
		}
		if c.Intersects(start, end) {
			m.log.WithFields(logrus.Fields{
				"proposed": fmt.Sprintf("%d-%d", start, end),
				"existing": c.ID,
			}).Warnf("overlap with chapter %s", c)
			return true
		}
	}
	return false
}

func (m *Manager) collides(start, end int) bool {
	for _, c := range m.chapters {
		if c.Intersects(start, end) {
			return true
		}
	}
	return false
}

// AutoAdjust moves [start, end] to the nearest free place that keeps its
// length of end-start frames (one frame at least). Candidates are tried in
// order: just before the first chapter it overlaps, just after the last one
// it overlaps, the first gap between chapters that is wide enough, and
// finally after the last chapter. A range that overlaps nothing comes back
// unchanged.
func (m *Manager) AutoAdjust(start, end int) (int, int) {
	if len(m.chapters) == 0 {
		return start, end
	}

	var first, last *Chapter
	for i := range m.chapters {
		c := &m.chapters[i]
		if !c.Intersects(start, end) {
			continue
		}
		if first == nil || c.StartFrame < first.StartFrame {
			first = c
		}
		if last == nil || c.EndFrame > last.EndFrame {
			last = c
		}
	}
	if first == nil {
		return start, end
	}

	span := max(end-start, 1)

	if first.StartFrame >= span {
		e := first.StartFrame - 1
		s := e - span + 1
		if s >= 0 && !m.collides(s, e) {
			return s, e
		}
	}

	if s := last.EndFrame + 1; !m.collides(s, s+span-1) {
		return s, s + span - 1
	}

	for i := 0; i+1 < len(m.chapters); i++ {
		gapStart := m.chapters[i].EndFrame + 1
		gapEnd := m.chapters[i+1].StartFrame - 1
		if gapEnd-gapStart+1 >= span {
			return gapStart, gapStart + span - 1
		}
	}

	tail := m.chapters[0].EndFrame
	for _, c := range m.chapters[1:] {
		tail = max(tail, c.EndFrame)
	}
	return tail + 1, tail + span
}

// RepairOverlaps fixes sets loaded from data that predates the non-overlap
// rule: after sorting, each chapter that reaches into its successor ends
// one frame before it. Chapters left with no frames are dropped. It returns
// the number of chapters shortened.
func (m *Manager) RepairOverlaps() int {
	if len(m.chapters) == 0 {
		return 0
	}
	m.sort()

	repaired := 0
	kept := m.chapters[:0]
	for i := range m.chapters {
		cur := m.chapters[i]
		if i+1 < len(m.chapters) {
			next := m.chapters[i+1]
			if cur.EndFrame >= next.StartFrame {
				old := cur.EndFrame
				cur.EndFrame = next.StartFrame - 1
				repaired++
				m.log.Infof("repaired overlapping chapter %q: end %d -> %d", cur.ShortLabel, old, cur.EndFrame)
			}
		}
		if cur.EndFrame < cur.StartFrame {
			m.log.Warnf("dropping empty chapter %s", cur)
			continue
		}
		kept = append(kept, cur)
	}
	m.chapters = kept

	if repaired > 0 {
		m.log.Infof("repaired %d overlapping chapter(s)", repaired)
	}
	return repaired
}

// AddIfUnique inserts ch unless a chapter with the same range and short
// label already exists. It does not check for overlaps. A missing ID is
// generated.
func (m *Manager) AddIfUnique(ch Chapter) bool {
	for _, c := range m.chapters {
		if c.StartFrame == ch.StartFrame && c.EndFrame == ch.EndFrame && c.ShortLabel == ch.ShortLabel {
			m.log.Debugf("skipping duplicate chapter %s", ch)
			return false
		}
	}
	if ch.ID == "" {
		ch.ID = uuid.NewString()
	}
	m.insert(ch)
	return true
}

func (m *Manager) insert(ch Chapter) {
	i := sort.Search(len(m.chapters), func(i int) bool {
		return m.chapters[i].StartFrame > ch.StartFrame
	})
	m.chapters = append(m.chapters, Chapter{})
	copy(m.chapters[i+1:], m.chapters[i:])
	m.chapters[i] = ch
}

// ChapterAt returns the chapter containing frame. This is a linear scan;
// the set is kept sorted so it can become a binary search if sets grow
// large.
func (m *Manager) ChapterAt(frame int) (Chapter, bool) {
	for _, c := range m.chapters {
		if c.Contains(frame) {
			return c, true
		}
	}
	return Chapter{}, false
}

// Add creates a chapter on [start, end]. The range must be free.
func (m *Manager) Add(start, end int, short, long string) (Chapter, error) {
	if err := validRange(start, end); err != nil {
		return Chapter{}, err
	}
	if m.Overlaps(start, end, "") {
		return Chapter{}, fmt.Errorf("add [%d-%d]: %w", start, end, ErrOverlap)
	}
	ch := Chapter{
		ID:         uuid.NewString(),
		StartFrame: start,
		EndFrame:   end,
		ShortLabel: short,
		LongLabel:  long,
	}
	m.insert(ch)
	return ch, nil
}

// AddAdjusted is Add after moving the range out of the way with AutoAdjust.
func (m *Manager) AddAdjusted(start, end int, short, long string) (Chapter, error) {
	if err := validRange(start, end); err != nil {
		return Chapter{}, err
	}
	s, e := m.AutoAdjust(start, end)
	if s != start || e != end {
		m.log.Infof("chapter %q moved from [%d-%d] to [%d-%d]", short, start, end, s, e)
	}
	return m.Add(s, e, short, long)
}

// Update moves the chapter with the given ID to [start, end].
func (m *Manager) Update(id string, start, end int) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	if err := validRange(start, end); err != nil {
		return err
	}
	if m.Overlaps(start, end, id) {
		return fmt.Errorf("update %s to [%d-%d]: %w", id, start, end, ErrOverlap)
	}
	m.chapters[i].StartFrame = start
	m.chapters[i].EndFrame = end
	m.sort()
	return nil
}

// Relabel changes the labels of a chapter.
func (m *Manager) Relabel(id, short, long string) error {
	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("relabel %s: %w", id, ErrNotFound)
	}
	m.chapters[i].ShortLabel = short
	m.chapters[i].LongLabel = long
	return nil
}

func (m *Manager) Delete(id string) bool {
	i := m.indexOf(id)
	if i < 0 {
		return false
	}
	m.chapters = append(m.chapters[:i], m.chapters[i+1:]...)
	return true
}
