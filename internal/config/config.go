// Package config defines service configuration and its loader.
package config

import (
	"fmt"
	"time"
	_ "time/tzdata" // LoadLocation must work on hosts without zoneinfo.
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Timezone is the IANA zone forecast timestamps are read in.
	Timezone string `koanf:"timezone" validate:"required,timezone"`

	// ShortBucket and LongBucket are the grid widths per horizon.
	ShortBucket time.Duration `koanf:"short_bucket" validate:"gt=0"`
	LongBucket  time.Duration `koanf:"long_bucket" validate:"gt=0"`

	// WindowPolicy selects the summary window: containing or last.
	WindowPolicy string `koanf:"window_policy" validate:"oneof=containing last"`

	// MaxPayloadBytes caps request bodies.
	MaxPayloadBytes int64 `koanf:"max_payload_bytes" validate:"gt=0"`

	// Image mode canvas geometry in pixels.
	ImageWidth       int `koanf:"image_width" validate:"min=200,max=4000"`
	ImagePanelHeight int `koanf:"image_panel_height" validate:"min=80,max=2000"`

	// Image mode colours as #rrggbb.
	ImageBackground  string `koanf:"image_background" validate:"hexcolor"`
	ImagePastColor   string `koanf:"image_past_color" validate:"hexcolor"`
	ImageFutureColor string `koanf:"image_future_color" validate:"hexcolor"`

	// RenderWorkers draw PNGs concurrently; 0 means one per CPU.
	RenderWorkers int `koanf:"render_workers" validate:"min=0,max=256"`
	// RenderQueueSize bounds image renders waiting for a worker.
	RenderQueueSize int `koanf:"render_queue_size" validate:"gt=0"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "text",
		Addr:             ":9080",
		Timezone:         "Asia/Taipei",
		ShortBucket:      3 * time.Hour,
		LongBucket:       24 * time.Hour,
		WindowPolicy:     "containing",
		MaxPayloadBytes:  4 << 20,
		ImageWidth:       800,
		ImagePanelHeight: 180,
		ImageBackground:  "#ffffff",
		ImagePastColor:   "#808080",
		ImageFutureColor: "#ff0000",
		RenderWorkers:    0,
		RenderQueueSize:  64,
	}
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidConfig, c.Timezone, err)
	}
	return loc, nil
}
