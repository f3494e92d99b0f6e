package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Workers < 2 {
		t.Errorf("expected at least 2 workers, got %d", cfg.Workers)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, `
workers: 4
live_throttle: 500ms
timeline_width: 1280
detail: speed
prominence: 8.5
log_json: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Workers != 4 || cfg.TimelineWidth != 1280 || cfg.Detail != "speed" || cfg.Prominence != 8.5 || !cfg.LogJSON {
		t.Errorf("values not loaded: %+v", cfg)
	}
	if cfg.LiveThrottle != 500*time.Millisecond {
		t.Errorf("live_throttle = %v", cfg.LiveThrottle)
	}
	// untouched keys keep their defaults
	if cfg.HeatmapHeight != 20 || cfg.FPS != 30 || cfg.OutputDir != "output" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"one worker", "workers: 1", "Workers"},
		{"bad detail", "detail: sparkle", "Detail"},
		{"zero fps", "fps: 0", "FPS"},
		{"negative prominence", "prominence: -1", "Prominence"},
		{"bad level", "log_level: loud", "LogLevel"},
		{"zero width", "heatmap_width: 0", "HeatmapWidth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error does not name %s: %v", tt.field, err)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := Load(writeFile(t, "workers: [1, 2")); err == nil {
		t.Error("malformed YAML should fail")
	}
}

func TestNewLogger(t *testing.T) {
	log, err := NewLogger("debug", true)
	if err != nil {
		t.Fatal(err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level %v", log.GetLevel())
	}
	if _, ok := log.Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("expected JSON formatter, got %T", log.Formatter)
	}

	if _, err := NewLogger("loud", false); err == nil {
		t.Error("unknown level should fail")
	}
}
