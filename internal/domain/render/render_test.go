package render_test

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/okian/wxgrid/internal/domain/align"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/internal/domain/render"
	. "github.com/smartystreets/goconvey/convey"
)

func element(h model.Horizon, name string) model.Element {
	cat, err := model.CatalogFor(h)
	So(err, ShouldBeNil)
	e, ok := cat.Lookup(name)
	So(ok, ShouldBeTrue)
	return e
}

func cells(vals ...float64) []align.Cell {
	out := make([]align.Cell, len(vals))
	for i, v := range vals {
		if !isNaN(v) {
			out[i] = align.Cell{Value: v, Valid: true}
		}
	}
	return out
}

func isNaN(f float64) bool { return f != f }

var nan = func() float64 { z := 0.0; return z / z }()

func grid(start string, step time.Duration, n int) []time.Time {
	t0, err := time.ParseInLocation(model.TimestampLayout, start, time.UTC)
	So(err, ShouldBeNil)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = t0.Add(time.Duration(i) * step)
	}
	return out
}

func TestTextShort(t *testing.T) {
	Convey("Given a short-horizon table spanning two days", t, func() {
		// 05-01 18:00 and 21:00, then 05-02 00:00, 03:00 and 06:00
		tbl := align.Table{
			Index:  grid("2024-05-01T18:00", 3*time.Hour, 5),
			Bucket: 3 * time.Hour,
			Columns: []align.Column{
				{Element: element(model.Short, "溫度"), Cells: cells(nan, nan, 10, 14, 8)},
				{Element: element(model.Short, "風速"), Cells: cells(2.5, 1.5, 3.5, 1.4, nan)},
				{Element: element(model.Short, "相對濕度"), Cells: cells(80, nan, nan, nan, nan)},
			},
		}
		out, err := render.NewText().Render(tbl, model.Short)
		So(err, ShouldBeNil)
		lines := strings.Split(out, "\n")

		Convey("Then one row is printed per day", func() {
			So(len(lines), ShouldEqual, 4)
			So(lines[2], ShouldStartWith, "2024-05-01")
			So(lines[3], ShouldStartWith, "2024-05-02")
		})

		Convey("Then daily [max, min] uses rounded values and the unit", func() {
			So(lines[3], ShouldContainSubstring, "[14, 8] C")
		})

		Convey("Then halves round to even and unitless cells carry no trailing space", func() {
			So(lines[2], ShouldContainSubstring, "[2, 2]  ")
			So(lines[3], ShouldContainSubstring, "[4, 1]")
		})

		Convey("Then missing days show a dash", func() {
			So(lines[2], ShouldContainSubstring, "-")
			So(strings.TrimRight(lines[3], " "), ShouldEndWith, "-")
		})

		Convey("Then the layout follows the simple table style", func() {
			So(out, ShouldEqual, strings.Join([]string{
				"            Temperature  Wind speed  Relative humidity",
				"----------  -----------  ----------  -----------------",
				"2024-05-01  -            [2, 2]      [80, 80] %",
				"2024-05-02  [14, 8] C    [4, 1]      -",
			}, "\n"))
		})
	})
}

func TestTextLong(t *testing.T) {
	Convey("Given a long-horizon daily table", t, func() {
		tbl := align.Table{
			Index:  grid("2024-05-01T00:00", 24*time.Hour, 2),
			Bucket: 24 * time.Hour,
			Columns: []align.Column{
				{Element: element(model.Long, "平均溫度"), Cells: cells(25.5, 26.3333333)},
				{Element: element(model.Long, "紫外線指數"), Cells: cells(7, nan)},
			},
		}
		out, err := render.NewText().Render(tbl, model.Long)
		So(err, ShouldBeNil)

		Convey("Then means use six significant digits and numbers align right", func() {
			So(out, ShouldEqual, strings.Join([]string{
				"              T_avg  UV index",
				"----------  -------  --------",
				"2024-05-01     25.5         7",
				"2024-05-02  26.3333         -",
			}, "\n"))
		})
	})

	Convey("Given an empty table", t, func() {
		out, err := render.NewText().Render(align.Table{}, model.Long)
		So(err, ShouldBeNil)
		So(out, ShouldBeEmpty)
	})
}

func TestImage(t *testing.T) {
	Convey("Given a short-horizon table and a clock in the middle of it", t, func() {
		idx := grid("2024-05-01T00:00", 3*time.Hour, 8)
		tbl := align.Table{
			Index:  idx,
			Bucket: 3 * time.Hour,
			Columns: []align.Column{
				{Element: element(model.Short, "溫度"), Cells: cells(20, 21, 23, 26, 27, 25, 23, 22)},
				{Element: element(model.Short, "3小時降雨機率"), Cells: cells(nan, nan, nan, nan, nan, nan, nan, nan)},
			},
		}
		r := render.NewImage(
			render.WithSize(640, 160),
			render.WithColors("#ffffff", "#808080", "#ff0000"),
			render.WithClock(func() time.Time { return idx[3] }),
		)

		Convey("When rendering", func() {
			out, err := r.Render(context.Background(), tbl, model.Short)
			So(err, ShouldBeNil)

			Convey("Then a PNG with one panel per column is produced", func() {
				cfg, err := png.DecodeConfig(bytes.NewReader(out))
				So(err, ShouldBeNil)
				So(cfg.Width, ShouldEqual, 640)
				So(cfg.Height, ShouldEqual, 24+2*160)
			})
		})

		Convey("When the table has a single row", func() {
			single := align.Table{Index: idx[:1], Bucket: 3 * time.Hour, Columns: []align.Column{
				{Element: element(model.Short, "溫度"), Cells: cells(20)},
			}}
			out, err := r.Render(context.Background(), single, model.Short)
			So(err, ShouldBeNil)
			So(len(out), ShouldBeGreaterThan, 0)
		})

		Convey("When no column has any data", func() {
			blank := align.Table{Index: idx, Bucket: 3 * time.Hour, Columns: []align.Column{
				{Element: element(model.Short, "3小時降雨機率"), Cells: cells(nan, nan, nan, nan, nan, nan, nan, nan)},
			}}
			out, err := r.Render(context.Background(), blank, model.Short)
			So(err, ShouldBeNil)
			cfg, err := png.DecodeConfig(bytes.NewReader(out))
			So(err, ShouldBeNil)
			So(cfg.Height, ShouldEqual, 24+160)
		})

		Convey("When the table carries a zone ahead of UTC", func() {
			zoned := tbl
			zoned.Location = time.FixedZone("CST", 8*3600)
			out, err := r.Render(context.Background(), zoned, model.Short)
			So(err, ShouldBeNil)
			So(len(out), ShouldBeGreaterThan, 0)
		})

		Convey("When the horizon is long", func() {
			_, err := r.Render(context.Background(), tbl, model.Long)
			So(errors.Is(err, failure.ErrUnsupported), ShouldBeTrue)
		})

		Convey("When the table is empty", func() {
			_, err := r.Render(context.Background(), align.Table{}, model.Short)
			So(errors.Is(err, failure.ErrRender), ShouldBeTrue)
		})
	})
}
