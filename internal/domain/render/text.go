// Package render turns aligned tables into fixed-width text or PNG charts.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/pkg/metrics"
)

const (
	dayLayout = "2006-01-02"
	noData    = "-"
	colGap    = "  "
)

// TextRenderer renders one row per calendar day.
type TextRenderer struct{}

// NewText returns a TextRenderer.
func NewText() *TextRenderer { return &TextRenderer{} }

// Render formats t for horizon h. Short tables show the daily "[max, min]
// unit" range of rounded values; long tables show the daily mean. An empty
// table renders as the empty string.
func (r *TextRenderer) Render(t align.Table, h model.Horizon) (string, error) {
	const op = "render.text"
	if !h.Valid() {
		return "", failure.Wrap(op, failure.ErrUnsupported, fmt.Errorf("horizon %q", h))
	}
	if t.Empty() {
		return "", nil
	}
	days, rows := groupDays(t)

	headers := make([]string, len(t.Columns))
	numeric := make([]bool, len(t.Columns))
	cells := make([][]string, len(days))
	for d := range days {
		cells[d] = make([]string, len(t.Columns))
	}
	for c, col := range t.Columns {
		headers[c] = col.Element.Header
		numeric[c] = h == model.Long
		for d := range days {
			if h == model.Short {
				cells[d][c] = dailyRange(col, rows[d])
			} else {
				cells[d][c] = dailyMean(col, rows[d])
			}
		}
	}

	out := layout(days, headers, numeric, cells)
	metrics.RecordArtifactBytes("text", len(out))
	return out, nil
}

// groupDays returns the distinct local dates of t.Index in order, with the
// row indexes falling on each.
func groupDays(t align.Table) ([]string, [][]int) {
	var days []string
	var rows [][]int
	for i, ts := range t.Index {
		day := ts.Format(dayLayout)
		if n := len(days); n == 0 || days[n-1] != day {
			days = append(days, day)
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], i)
	}
	return days, rows
}

func dailyRange(col align.Column, rows []int) string {
	var hi, lo int64
	seen := false
	for _, i := range rows {
		c := col.Cells[i]
		if !c.Valid {
			continue
		}
		v := int64(math.RoundToEven(c.Value))
		if !seen {
			hi, lo, seen = v, v, true
			continue
		}
		hi, lo = max(hi, v), min(lo, v)
	}
	if !seen {
		return noData
	}
	return strings.TrimSpace(fmt.Sprintf("[%d, %d] %s", hi, lo, col.Element.Unit))
}

func dailyMean(col align.Column, rows []int) string {
	var sum float64
	n := 0
	for _, i := range rows {
		if c := col.Cells[i]; c.Valid {
			sum += c.Value
			n++
		}
	}
	if n == 0 {
		return noData
	}
	return strconv.FormatFloat(sum/float64(n), 'g', 6, 64)
}

// layout draws the "simple" table: a header row, a dash rule per column
// and the body, columns separated by two spaces. The first column holds
// the day and has no header.
func layout(days, headers []string, numeric []bool, cells [][]string) string {
	widths := make([]int, len(headers)+1)
	for _, d := range days {
		widths[0] = max(widths[0], runewidth.StringWidth(d))
	}
	for c, h := range headers {
		widths[c+1] = runewidth.StringWidth(h)
		for d := range cells {
			widths[c+1] = max(widths[c+1], runewidth.StringWidth(cells[d][c]))
		}
	}

	var b strings.Builder
	line := func(fields []string) {
		parts := make([]string, len(fields))
		for i, f := range fields {
			if i > 0 && numeric[i-1] {
				parts[i] = runewidth.FillLeft(f, widths[i])
			} else {
				parts[i] = runewidth.FillRight(f, widths[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, colGap), " "))
		b.WriteByte('\n')
	}

	line(append([]string{""}, headers...))
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	b.WriteString(strings.Join(rule, colGap))
	b.WriteByte('\n')
	for d, day := range days {
		line(append([]string{day}, cells[d]...))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
