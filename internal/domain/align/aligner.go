// Package align resamples element series onto one shared time grid.
package align

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

const op = "align"

// Aligner buckets series by fixed-width intervals and averages each bucket.
type Aligner struct {
	loc *time.Location
	log logger.Logger
}

// New returns an Aligner whose tables are labelled UTC unless configured.
func New(opts ...Option) *Aligner {
	a := &Aligner{loc: time.UTC, log: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type point struct {
	bucket int
	value  float64
	ok     bool
}

// Align places every series on a grid whose origin is midnight of the
// earliest sample and whose rows cover each bucket between the earliest and
// latest sample of any series. Timestamps are bucketed as wall-clock times;
// the configured zone only labels the table. Each cell is the mean of the numeric samples
// in its bucket. Non-numeric values count as no data; unparseable
// timestamps are schema errors.
func (a *Aligner) Align(ctx context.Context, series []model.ElementSeries, bucket time.Duration) (Table, error) {
	if bucket <= 0 {
		return Table{}, failure.Wrap(op, failure.ErrInvalidInput, fmt.Errorf("bucket width %s", bucket))
	}

	times := make([][]time.Time, len(series))
	var earliest time.Time
	var found bool
	for i, s := range series {
		times[i] = make([]time.Time, len(s.Samples))
		for j, smp := range s.Samples {
			t, err := time.ParseInLocation(model.TimestampLayout, smp.Timestamp, time.UTC)
			if err != nil {
				return Table{}, failure.Schemaf(op, "%s[%d]: timestamp %q: %v", s.Name, j, smp.Timestamp, err)
			}
			times[i][j] = t
			if !found || t.Before(earliest) {
				earliest, found = t, true
			}
		}
	}
	if !found {
		return Table{Bucket: bucket, Location: a.loc}, nil
	}

	y, m, d := earliest.Date()
	origin := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	lo, hi := math.MaxInt, math.MinInt
	points := make([][]point, len(series))
	for i, s := range series {
		points[i] = make([]point, len(s.Samples))
		for j, smp := range s.Samples {
			b := int(times[i][j].Sub(origin) / bucket)
			lo, hi = min(lo, b), max(hi, b)
			v, ok := parseValue(smp.Value)
			points[i][j] = point{bucket: b, value: v, ok: ok}
		}
	}

	rows := hi - lo + 1
	t := Table{Index: make([]time.Time, rows), Bucket: bucket, Location: a.loc}
	for r := range t.Index {
		t.Index[r] = origin.Add(time.Duration(lo+r) * bucket)
	}

	cat := catalogOf(series)
	for i, s := range series {
		if len(s.Samples) == 0 {
			continue
		}
		sums := make([]float64, rows)
		counts := make([]int, rows)
		for _, p := range points[i] {
			if p.ok {
				sums[p.bucket-lo] += p.value
				counts[p.bucket-lo]++
			}
		}
		col := Column{Element: elementOf(cat, s.Name), Cells: make([]Cell, rows)}
		for r := range col.Cells {
			if counts[r] > 0 {
				col.Cells[r] = Cell{Value: sums[r] / float64(counts[r]), Valid: true}
			}
		}
		t.Columns = append(t.Columns, col)
	}

	sort.SliceStable(t.Columns, func(i, j int) bool {
		return position(cat, t.Columns[i].Element.Name) < position(cat, t.Columns[j].Element.Name)
	})

	metrics.RecordAlignedRows(rows)
	a.log.Debug(ctx, "series aligned",
		logger.Int("rows", rows), logger.Int("columns", len(t.Columns)), logger.Duration("bucket", bucket))
	return t, nil
}

// parseValue reads a numeric token. NaN and infinities count as no data.
func parseValue(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// catalogOf picks the horizon catalog recognizing most series names,
// preferring the short horizon on ties. It returns nil when none match.
func catalogOf(series []model.ElementSeries) *model.Catalog {
	var best *model.Catalog
	bestHits := 0
	for _, h := range []model.Horizon{model.Short, model.Long} {
		cat, err := model.CatalogFor(h)
		if err != nil {
			continue
		}
		hits := 0
		for _, s := range series {
			if cat.Position(s.Name) >= 0 {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = cat, hits
		}
	}
	return best
}

func elementOf(cat *model.Catalog, name string) model.Element {
	if cat != nil {
		if e, ok := cat.Lookup(name); ok {
			return e
		}
	}
	return model.Element{Name: name, Header: name}
}

// position sorts unknown names after every catalog entry.
func position(cat *model.Catalog, name string) int {
	if cat == nil {
		return math.MaxInt
	}
	if p := cat.Position(name); p >= 0 {
		return p
	}
	return math.MaxInt
}
