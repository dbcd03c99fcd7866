package model

import (
	"fmt"
	"strings"
	"time"
)

// Horizon selects the forecast span a request covers.
type Horizon string

const (
	// Short is the 3-day forecast sampled every few hours.
	Short Horizon = "short"
	// Long is the 7-day forecast sampled in 12-hour windows.
	Long Horizon = "long"
)

// Default bucket widths per horizon.
const (
	DefaultShortBucket = 3 * time.Hour
	DefaultLongBucket  = 24 * time.Hour
)

// ParseHorizon accepts the canonical names plus the "three"/"seven" and
// "3"/"7" aliases callers use for day counts.
func ParseHorizon(s string) (Horizon, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short", "three", "3":
		return Short, nil
	case "long", "seven", "7":
		return Long, nil
	default:
		return "", fmt.Errorf("unknown horizon %q", s)
	}
}

// Valid reports whether h is one of the known horizons.
func (h Horizon) Valid() bool {
	return h == Short || h == Long
}

func (h Horizon) String() string { return string(h) }
