package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		seq     Sequence
		wantErr bool
	}{
		{"empty", nil, false},
		{"ordered", Sequence{{0, 0}, {100, 50}, {200, 100}}, false},
		{"duplicate timestamp", Sequence{{0, 0}, {0, 50}}, true},
		{"backwards", Sequence{{100, 0}, {50, 50}}, true},
		{"position too high", Sequence{{0, 101}}, true},
		{"negative timestamp", Sequence{{-1, 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.seq)
			if tt.wantErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestStoreSnapshotIsIndependent(t *testing.T) {
	s := NewStore()
	if err := s.Set(AxisPrimary, Sequence{{0, 0}, {100, 100}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	snap := s.Snapshot(AxisPrimary)
	snap[0].Pos = 42

	if got := s.Snapshot(AxisPrimary)[0].Pos; got != 0 {
		t.Fatalf("store mutated through snapshot: pos=%d", got)
	}
	if s.Count(AxisSecondary) != 0 {
		t.Fatalf("expected empty secondary axis")
	}
}

func TestStoreAppendRejectsOutOfOrder(t *testing.T) {
	s := NewStore()
	if err := s.Append(AxisPrimary, Action{At: 100, Pos: 10}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := s.Append(AxisPrimary, Action{At: 100, Pos: 20}); err == nil {
		t.Fatal("expected error for repeated timestamp")
	}
	if err := s.Append(AxisPrimary, Action{At: 200, Pos: 20}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if s.Count(AxisPrimary) != 2 {
		t.Fatalf("expected 2 actions, got %d", s.Count(AxisPrimary))
	}
}

func TestStoreLiveFlag(t *testing.T) {
	s := NewStore()
	if s.Live() {
		t.Fatal("live flag should start cleared")
	}
	s.SetLive(true)
	if !s.Live() {
		t.Fatal("live flag not set")
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.funscript")
	data := `{
		"actions": [{"at": 0, "pos": 0}, {"at": 500, "pos": 100}, {"at": 1000, "pos": 0}],
		"axes": [{"id": "roll", "actions": [{"at": 0, "pos": 50}]}],
		"chapters": [{"name": "Intro", "start": 0, "end": 999, "position_short": "IN"}]
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	fs, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("NewFileSource failed: %v", err)
	}

	if got := len(fs.Actions(AxisPrimary)); got != 3 {
		t.Errorf("expected 3 primary actions, got %d", got)
	}
	if got := len(fs.Actions(AxisSecondary)); got != 1 {
		t.Errorf("expected 1 secondary action, got %d", got)
	}
	marks := fs.Chapters()
	if len(marks) != 1 || marks[0].PositionShort != "IN" || marks[0].EndMs != 999 {
		t.Errorf("unexpected chapters: %#v", marks)
	}

	store := NewStore()
	if err := fs.Load(store); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if store.Count(AxisPrimary) != 3 {
		t.Errorf("store not loaded")
	}
}

func TestFileSourceRejectsUnorderedActions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.funscript")
	os.WriteFile(path, []byte(`{"actions":[{"at":10,"pos":0},{"at":5,"pos":10}]}`), 0644)

	if _, err := NewFileSource(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestComputeStats(t *testing.T) {
	seq := Sequence{{0, 0}, {500, 100}, {1000, 0}, {1500, 100}}
	st := ComputeStats(seq)

	if st.NumPoints != 4 {
		t.Errorf("NumPoints = %d", st.NumPoints)
	}
	if st.DurationScripted != 1.5 {
		t.Errorf("DurationScripted = %f", st.DurationScripted)
	}
	if st.TotalTravel != 300 {
		t.Errorf("TotalTravel = %d", st.TotalTravel)
	}
	if st.AvgSpeed != 200 {
		t.Errorf("AvgSpeed = %f", st.AvgSpeed)
	}
	if st.NumStrokes != 2 {
		t.Errorf("NumStrokes = %d", st.NumStrokes)
	}
	if st.MinIntervalMs != 500 || st.MaxIntervalMs != 500 || st.AvgIntervalMs != 500 {
		t.Errorf("intervals = %d/%f/%d", st.MinIntervalMs, st.AvgIntervalMs, st.MaxIntervalMs)
	}
	if st.MinPos != 0 || st.MaxPos != 100 {
		t.Errorf("pos range = %d..%d", st.MinPos, st.MaxPos)
	}

	empty := ComputeStats(nil)
	if empty.MinPos != -1 || empty.MinIntervalMs != -1 {
		t.Errorf("unexpected empty stats: %#v", empty)
	}
}
