package align

import (
	"time"

	"github.com/okian/wxgrid/pkg/logger"
)

// Option configures an Aligner.
type Option func(*Aligner)

// WithLocation sets the zone sample timestamps belong to. It is recorded on
// the table for comparisons against the current time.
func WithLocation(loc *time.Location) Option {
	return func(a *Aligner) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.log = l
		}
	}
}
