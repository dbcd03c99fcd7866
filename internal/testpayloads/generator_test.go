package testpayloads

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/okian/wxgrid/internal/domain/extract"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/internal/domain/payload"
	"github.com/okian/wxgrid/internal/domain/snapshot"
	. "github.com/smartystreets/goconvey/convey"
)

var fixedStart = time.Date(2024, 5, 1, 6, 0, 0, 0, time.FixedZone("CST", 8*3600))

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		g := NewGenerator(WithSeed(7), WithStart(fixedStart))
		ctx := context.Background()

		Convey("Short payloads pass the element-major schema and extract", func() {
			raw, err := g.Short(3)
			So(err, ShouldBeNil)
			doc, err := payload.DecodeBytes(raw)
			So(err, ShouldBeNil)
			So(payload.Validate(doc, payload.ElementMajor), ShouldBeNil)

			series, err := extract.New().Extract(ctx, doc, model.Short)
			So(err, ShouldBeNil)
			So(len(series), ShouldEqual, 4)
			for _, s := range series {
				So(s.Len(), ShouldEqual, 24)
			}
			So(series[0].Samples[0].Timestamp, ShouldEqual, "2024-05-01T06:00")
		})

		Convey("Long payloads drop the unrecognized apparent temperature", func() {
			raw, err := g.Long(7)
			So(err, ShouldBeNil)
			doc, err := payload.DecodeBytes(raw)
			So(err, ShouldBeNil)

			series, err := extract.New().Extract(ctx, doc, model.Long)
			So(err, ShouldBeNil)
			So(len(series), ShouldEqual, 7)
			for _, s := range series {
				So(s.Name, ShouldNotEqual, "最高體感溫度")
				So(s.Len(), ShouldEqual, 14)
			}
		})

		Convey("Window payloads summarize", func() {
			raw, err := g.Windows()
			So(err, ShouldBeNil)
			doc, err := payload.DecodeBytes(raw)
			So(err, ShouldBeNil)

			b := snapshot.New(snapshot.WithClock(func() time.Time { return fixedStart.Add(time.Hour) }))
			snap, err := b.Build(ctx, doc)
			So(err, ShouldBeNil)
			So(snap.Location, ShouldEqual, "臺北市")
			So(len(snap.Windows), ShouldEqual, 3)

			text, err := b.Summarize(ctx, doc)
			So(err, ShouldBeNil)
			So(text, ShouldContainSubstring, "臺北市")
		})

		Convey("The same seed and start produce the same values", func() {
			a, err := NewGenerator(WithSeed(3), WithStart(fixedStart)).Long(2)
			So(err, ShouldBeNil)
			b, err := NewGenerator(WithSeed(3), WithStart(fixedStart)).Long(2)
			So(err, ShouldBeNil)

			da, _ := payload.DecodeBytes(a)
			db, _ := payload.DecodeBytes(b)
			sa, err := extract.New().Extract(ctx, da, model.Long)
			So(err, ShouldBeNil)
			sb, err := extract.New().Extract(ctx, db, model.Long)
			So(err, ShouldBeNil)
			So(sa, ShouldResemble, sb)
		})
	})
}

func TestBuildCases(t *testing.T) {
	Convey("Given generated payloads", t, func() {
		p, err := Generate(NewGenerator(WithStart(fixedStart)), 2)
		So(err, ShouldBeNil)
		cases := BuildCases(p)

		Convey("Every case is a POST with a body and an expectation", func() {
			names := map[string]bool{}
			for _, c := range cases {
				So(c.Method, ShouldEqual, http.MethodPost)
				So(len(c.Body), ShouldBeGreaterThan, 0)
				So(c.WantStatus, ShouldBeIn, StatusOK, StatusBadRequest, StatusUnprocessableEntity)
				So(names[c.Name], ShouldBeFalse)
				names[c.Name] = true
			}
			So(names["long-image"], ShouldBeTrue)
			So(names["malformed"], ShouldBeTrue)
		})
	})
}

func TestTruncate(t *testing.T) {
	Convey("truncate keeps short bodies and cuts long ones", t, func() {
		So(truncate([]byte("short")), ShouldEqual, "short")
		long := make([]byte, 300)
		for i := range long {
			long[i] = 'a'
		}
		out := truncate(long)
		So(len(out), ShouldEqual, 203)
		So(out[200:], ShouldEqual, "...")
	})
}
