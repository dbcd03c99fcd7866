package render

import (
	"strings"
	"time"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/wxgrid/pkg/logger"
)

// ImageOption configures an ImageRenderer.
type ImageOption func(*ImageRenderer)

// WithSize sets the canvas width and the height of each panel in pixels.
func WithSize(width, panelHeight int) ImageOption {
	return func(r *ImageRenderer) {
		if width > 0 {
			r.width = width
		}
		if panelHeight > 0 {
			r.panelHeight = panelHeight
		}
	}
}

// WithColors sets the background, past-point and future-point colours as
// hex strings ("#rrggbb" or "rrggbb"). Empty strings keep the defaults.
func WithColors(background, past, future string) ImageOption {
	return func(r *ImageRenderer) {
		if background != "" {
			r.background = hexColor(background)
		}
		if past != "" {
			r.past = hexColor(past)
		}
		if future != "" {
			r.future = hexColor(future)
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) ImageOption {
	return func(r *ImageRenderer) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ImageOption {
	return func(r *ImageRenderer) {
		if l != nil {
			r.log = l
		}
	}
}

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
