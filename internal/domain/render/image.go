package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/okian/wxgrid/pkg/metrics"
)

const (
	defaultWidth       = 800
	defaultPanelHeight = 180
	captionHeight      = 24
	dotWidth           = 4
	tickLayout         = "01-02 15h"
)

// ImageRenderer plots one scatter panel per column, stacked vertically.
// Points at or before now use the past colour, later points the future
// colour.
type ImageRenderer struct {
	width       int
	panelHeight int
	background  drawing.Color
	past        drawing.Color
	future      drawing.Color
	now         func() time.Time
	log         logger.Logger
}

// NewImage returns an ImageRenderer with gray past and red future points on
// white.
func NewImage(opts ...ImageOption) *ImageRenderer {
	r := &ImageRenderer{
		width:       defaultWidth,
		panelHeight: defaultPanelHeight,
		background:  drawing.ColorWhite,
		past:        drawing.Color{R: 128, G: 128, B: 128, A: 179},
		future:      drawing.Color{R: 255, G: 0, B: 0, A: 179},
		now:         time.Now,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns a PNG of t. Only the short horizon has a chart form.
func (r *ImageRenderer) Render(ctx context.Context, t align.Table, h model.Horizon) ([]byte, error) {
	const op = "render.image"
	if h != model.Short {
		return nil, failure.Wrap(op, failure.ErrUnsupported, fmt.Errorf("image mode for %s horizon", h))
	}
	if t.Empty() {
		return nil, failure.Wrap(op, failure.ErrRender, fmt.Errorf("nothing to plot"))
	}

	now := r.now()
	wallNow := t.Wall(now)
	xr := timeRange(t)

	canvas := image.NewRGBA(image.Rect(0, 0, r.width, captionHeight+len(t.Columns)*r.panelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	r.caption(canvas, fmt.Sprintf("forecast as of %s", now.In(t.Zone()).Format("2006-01-02 15:04 MST")))

	for i, col := range t.Columns {
		panel, err := r.panel(t.Index, col, xr, wallNow)
		if err != nil {
			return nil, failure.Wrap(op, failure.ErrRender, fmt.Errorf("%s panel: %w", col.Element.Header, err))
		}
		top := captionHeight + i*r.panelHeight
		dst := image.Rect(0, top, r.width, top+r.panelHeight)
		draw.Draw(canvas, dst, panel, panel.Bounds().Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, failure.Wrap(op, failure.ErrRender, err)
	}
	metrics.RecordArtifactBytes("image", buf.Len())
	r.log.Debug(ctx, "image rendered", logger.Int("panels", len(t.Columns)), logger.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// panel renders one column through go-chart and decodes the PNG back so it
// can be composed onto the shared canvas. now is in the wall-clock form of
// index.
func (r *ImageRenderer) panel(index []time.Time, col align.Column, xr *chart.ContinuousRange, now time.Time) (image.Image, error) {
	var pastX, futureX []time.Time
	var pastY, futureY []float64
	for i, c := range col.Cells {
		if !c.Valid {
			continue
		}
		if index[i].After(now) {
			futureX, futureY = append(futureX, index[i]), append(futureY, c.Value)
		} else {
			pastX, pastY = append(pastX, index[i]), append(pastY, c.Value)
		}
	}
	yr := valueRange(col)

	var series []chart.Series
	if len(pastX) > 0 {
		series = append(series, chart.TimeSeries{Name: "past", XValues: pastX, YValues: pastY, Style: r.dots(r.past)})
	}
	if len(futureX) > 0 {
		series = append(series, chart.TimeSeries{Name: "future", XValues: futureX, YValues: futureY, Style: r.dots(r.future)})
	}
	if len(series) == 0 {
		// go-chart needs one visible series; this one draws neither line nor dots.
		series = append(series, chart.ContinuousSeries{
			Name:    "empty",
			Style:   chart.Style{StrokeWidth: chart.Disabled, DotWidth: 0},
			XValues: []float64{xr.Min, xr.Max},
			YValues: []float64{yr.Min, yr.Max},
		})
	}

	name := col.Element.Header
	if col.Element.Unit != "" {
		name += " (" + col.Element.Unit + ")"
	}
	graph := chart.Chart{
		Width:      r.width,
		Height:     r.panelHeight,
		Background: chart.Style{FillColor: r.background, Padding: chart.Box{Top: 12, Left: 12, Right: 16, Bottom: 8}},
		Canvas:     chart.Style{FillColor: r.background},
		XAxis: chart.XAxis{
			Range:          xr,
			ValueFormatter: wallTick,
			GridMajorStyle: chart.Style{StrokeColor: drawing.ColorFromHex("dddddd"), StrokeWidth: 1},
		},
		YAxis: chart.YAxis{
			Name:  name,
			Range: yr,
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return png.Decode(&buf)
}

// wallTick formats an x value in UTC, the form the index is stored in.
func wallTick(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return ""
	}
	return time.Unix(0, int64(f)).UTC().Format(tickLayout)
}

func (r *ImageRenderer) dots(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    dotWidth,
		DotColor:    c,
	}
}

func (r *ImageRenderer) caption(dst draw.Image, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(drawing.ColorBlack),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(8, captionHeight-8),
	}
	d.DrawString(text)
}

// timeRange is the shared x range of every panel. A single-row table is
// widened by half a bucket on each side.
func timeRange(t align.Table) *chart.ContinuousRange {
	lo, hi := t.Index[0], t.Index[len(t.Index)-1]
	if !hi.After(lo) {
		pad := t.Bucket / 2
		if pad <= 0 {
			pad = time.Hour
		}
		lo, hi = lo.Add(-pad), hi.Add(pad)
	}
	return &chart.ContinuousRange{Min: chart.TimeToFloat64(lo), Max: chart.TimeToFloat64(hi)}
}

// valueRange spans the valid cells of col with a small margin. A flat or
// empty column gets a unit-wide range so the axis can still be drawn.
func valueRange(col align.Column) *chart.ContinuousRange {
	var lo, hi float64
	seen := false
	for _, c := range col.Cells {
		if !c.Valid {
			continue
		}
		if !seen {
			lo, hi, seen = c.Value, c.Value, true
			continue
		}
		lo, hi = min(lo, c.Value), max(hi, c.Value)
	}
	switch {
	case !seen:
		return &chart.ContinuousRange{Min: 0, Max: 1}
	case hi == lo:
		return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	default:
		m := (hi - lo) * 0.1
		return &chart.ContinuousRange{Min: lo - m, Max: hi + m}
	}
}
