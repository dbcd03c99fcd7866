package service

import (
	"time"

	"github.com/okian/wxgrid/internal/domain/snapshot"
	"github.com/okian/wxgrid/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLocation sets the zone forecast timestamps are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithBuckets sets the grid width of each horizon.
func WithBuckets(short, long time.Duration) Option {
	return func(s *Service) {
		if short > 0 {
			s.shortBucket = short
		}
		if long > 0 {
			s.longBucket = long
		}
	}
}

// WithWindowPolicy sets how the summary window is chosen.
func WithWindowPolicy(p snapshot.Policy) Option {
	return func(s *Service) {
		if p.Valid() {
			s.policy = p
		}
	}
}

// WithImageSize sets the chart canvas width and per-panel height.
func WithImageSize(width, panelHeight int) Option {
	return func(s *Service) {
		if width > 0 {
			s.imageWidth = width
		}
		if panelHeight > 0 {
			s.imagePanelHeight = panelHeight
		}
	}
}

// WithImageColors sets the chart background, past and future colours.
func WithImageColors(background, past, future string) Option {
	return func(s *Service) {
		s.imageBackground = background
		s.imagePast = past
		s.imageFuture = future
	}
}

// WithRenderPool sets the number of image render workers and how many
// jobs may wait for one. workers < 1 selects runtime.NumCPU().
func WithRenderPool(workers, queueSize int) Option {
	return func(s *Service) {
		s.renderWorkers = workers
		if queueSize > 0 {
			s.renderQueueSize = queueSize
		}
	}
}

// WithClock replaces time.Now for window selection and chart colouring.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
