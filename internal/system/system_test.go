package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultWorkersBounds(t *testing.T) {
	n := DefaultWorkers()
	if n < minWorkers || n > maxWorkers {
		t.Fatalf("DefaultWorkers() = %d, want %d..%d", n, minWorkers, maxWorkers)
	}
}

func TestMemoryReport(t *testing.T) {
	if r := MemoryReport(); r == "" {
		t.Fatal("empty memory report")
	}
}

func TestImagePoolSizes(t *testing.T) {
	p := NewImagePool()

	img := p.Get(16, 4)
	if img.Rect != image.Rect(0, 0, 16, 4) || len(img.Pix) != 16*4*4 {
		t.Fatalf("unexpected buffer %v len=%d", img.Rect, len(img.Pix))
	}
	p.Put(img)

	other := p.Get(8, 8)
	if other.Rect.Dx() != 8 || other.Rect.Dy() != 8 {
		t.Fatalf("pool returned wrong size %v", other.Rect)
	}

	// sub-images are not pooled
	p.Put(img.SubImage(image.Rect(1, 1, 4, 4)).(*image.RGBA))
	p.Put(nil)
}

func TestFindLatestScript(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.funscript", "b.funscript", "c.txt"}
	for i, n := range names {
		path := filepath.Join(dir, n)
		os.WriteFile(path, []byte("{}"), 0644)
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(path, mod, mod)
	}

	latest, err := FindLatestScript(dir)
	if err != nil {
		t.Fatalf("FindLatestScript failed: %v", err)
	}
	if filepath.Base(latest) != "b.funscript" {
		t.Errorf("expected b.funscript, got %s", latest)
	}

	if _, err := FindLatestScript(t.TempDir()); err == nil {
		t.Error("expected error for empty directory")
	}
}
