package snapshot

import (
	"time"

	"github.com/okian/wxgrid/pkg/logger"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLocation sets the zone window times are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(b *Builder) {
		if loc != nil {
			b.loc = loc
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithPolicy sets the window selection policy.
func WithPolicy(p Policy) Option {
	return func(b *Builder) {
		if p.Valid() {
			b.policy = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.log = l
		}
	}
}
