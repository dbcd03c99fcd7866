// Package model contains domain models passed between pipeline stages.
package model

import "strings"

// timestampWidth is the length of a normalized YYYY-MM-DDTHH:MM timestamp.
const timestampWidth = 16

// TimestampLayout parses normalized sample timestamps.
const TimestampLayout = "2006-01-02T15:04"

// Sample is one (timestamp, value) pair of an element series. Value keeps
// the raw upstream token; numeric coercion happens during alignment.
type Sample struct {
	Timestamp string
	Value     string
}

// ElementSeries is the ordered sample list of one weather element.
type ElementSeries struct {
	Name    string
	Samples []Sample
}

// Len returns the number of samples.
func (s ElementSeries) Len() int { return len(s.Samples) }

// NormalizeTimestamp drops any "+hh:mm" offset and truncates to minute
// precision. It is not a timezone conversion and is idempotent.
func NormalizeTimestamp(ts string) string {
	if i := strings.IndexByte(ts, '+'); i >= 0 {
		ts = ts[:i]
	}
	if len(ts) > timestampWidth {
		ts = ts[:timestampWidth]
	}
	return ts
}
