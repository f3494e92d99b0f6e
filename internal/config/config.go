package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/funpreview/internal/system"
)

type Config struct {
	InputPath  string `yaml:"input"`
	TargetPath string `yaml:"target"`
	OutputDir  string `yaml:"output_dir" validate:"required"`
	Format     string `yaml:"format" validate:"oneof=png rgba raw"`

	Workers      int           `yaml:"workers" validate:"gte=2,lte=64"`
	QueueSize    int           `yaml:"queue_size" validate:"gte=1"`
	ResultSize   int           `yaml:"result_size" validate:"gte=1"`
	LiveThrottle time.Duration `yaml:"live_throttle" validate:"gt=0"`
	Timeout      time.Duration `yaml:"timeout" validate:"gt=0"`

	TimelineWidth  int    `yaml:"timeline_width" validate:"gte=1,lte=16384"`
	TimelineHeight int    `yaml:"timeline_height" validate:"gte=1,lte=4096"`
	HeatmapWidth   int    `yaml:"heatmap_width" validate:"gte=1,lte=16384"`
	HeatmapHeight  int    `yaml:"heatmap_height" validate:"gte=1,lte=4096"`
	Detail         string `yaml:"detail" validate:"oneof=envelope simplified speed detailed"`

	Prominence float64 `yaml:"prominence" validate:"gte=0"`
	FPS        float64 `yaml:"fps" validate:"gt=0"`

	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogJSON   bool   `yaml:"log_json"`
	ShowStats bool   `yaml:"stats"`
}

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		OutputDir:      "output",
		Format:         "png",
		Workers:        system.DefaultWorkers(),
		QueueSize:      8,
		ResultSize:     8,
		LiveThrottle:   300 * time.Millisecond,
		Timeout:        10 * time.Second,
		TimelineWidth:  1920,
		TimelineHeight: 80,
		HeatmapWidth:   1920,
		HeatmapHeight:  20,
		Detail:         "envelope",
		Prominence:     5,
		FPS:            30,
		LogLevel:       "info",
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints and reports all
// failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("field '%s' failed on the '%s' tag", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s (value: %s)", msg, fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
