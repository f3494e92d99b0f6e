package source

import (
	"encoding/json"
	"fmt"
	"os"
)

// ChapterMark is a chapter as stored next to the actions in a script file.
type ChapterMark struct {
	Name          string `json:"name"`
	StartMs       int64  `json:"start"`
	EndMs         int64  `json:"end"`
	PositionShort string `json:"position_short,omitempty"`
	PositionLong  string `json:"position_long,omitempty"`
}

type scriptFile struct {
	Actions  Sequence      `json:"actions"`
	Chapters []ChapterMark `json:"chapters"`
	Axes     []struct {
		ID      string   `json:"id"`
		Actions Sequence `json:"actions"`
	} `json:"axes"`
}

// FileSource serves the actions of a .funscript file read once at open time.
type FileSource struct {
	path      string
	primary   Sequence
	secondary Sequence
	chapters  []ChapterMark
}

func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f scriptFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	fs := &FileSource{
		path:     path,
		primary:  f.Actions,
		chapters: f.Chapters,
	}
	if len(f.Axes) > 0 {
		fs.secondary = f.Axes[0].Actions
	}

	if err := Validate(fs.primary); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := Validate(fs.secondary); err != nil {
		return nil, fmt.Errorf("%s secondary axis: %w", path, err)
	}
	return fs, nil
}

func (f *FileSource) Path() string {
	return f.path
}

func (f *FileSource) Actions(axis Axis) Sequence {
	if axis == AxisSecondary {
		return f.secondary.Clone()
	}
	return f.primary.Clone()
}

// Chapters returns the chapter marks stored in the file, in file order.
func (f *FileSource) Chapters() []ChapterMark {
	out := make([]ChapterMark, len(f.chapters))
	copy(out, f.chapters)
	return out
}

// Load copies both axes into a Store.
func (f *FileSource) Load(s *Store) error {
	if err := s.Set(AxisPrimary, f.primary); err != nil {
		return err
	}
	return s.Set(AxisSecondary, f.secondary)
}
