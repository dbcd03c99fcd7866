package align

import (
	"time"

	"github.com/okian/wxgrid/internal/domain/model"
)

// Cell is one grid value. Valid is false when the bucket had no usable
// sample.
type Cell struct {
	Value float64
	Valid bool
}

// Column is the aligned series of one element.
type Column struct {
	Element model.Element
	Cells   []Cell
}

// Table is a set of columns sharing one uniform, ascending time index.
// Every column holds exactly len(Index) cells. Index entries are wall-clock
// readings of Location stored in UTC, so the grid stays uniform across
// daylight-saving shifts.
type Table struct {
	Index    []time.Time
	Columns  []Column
	Bucket   time.Duration
	Location *time.Location
}

// Rows returns the number of grid rows.
func (t Table) Rows() int { return len(t.Index) }

// Empty reports whether the table has no rows or no columns.
func (t Table) Empty() bool { return len(t.Index) == 0 || len(t.Columns) == 0 }

// Zone returns the zone the index was read in, UTC when unset.
func (t Table) Zone() *time.Location {
	if t.Location == nil {
		return time.UTC
	}
	return t.Location
}

// Wall converts the instant at to the wall-clock form used by Index.
func (t Table) Wall(at time.Time) time.Time {
	return wallClock(at.In(t.Zone()))
}

func wallClock(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
