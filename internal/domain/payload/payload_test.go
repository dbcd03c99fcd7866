package payload_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/payload"
	. "github.com/smartystreets/goconvey/convey"
)

const elementMajor = `{"records":{"Locations":[{"Location":[{"WeatherElement":[
  {"ElementName":"溫度","Time":[{"DataTime":"2024-05-01T12:00:00+08:00","ElementValue":[{"Temperature":"25"}]}]}
]}]}]}}`

const windowMajor = `{"records":{"location":[{"locationName":"臺北市","weatherElement":[
  {"elementName":"Wx","time":[{"startTime":"2024-05-01 06:00:00","endTime":"2024-05-01 18:00:00","parameter":{"parameterName":"晴時多雲","parameterValue":"2"}}]}
]}]}}`

func TestDecode(t *testing.T) {
	Convey("Given raw JSON bodies", t, func() {
		Convey("When the body is valid JSON", func() {
			doc, err := payload.DecodeBytes([]byte(elementMajor))
			So(err, ShouldBeNil)
			So(doc, ShouldNotBeNil)
		})

		Convey("When the body is truncated", func() {
			_, err := payload.DecodeBytes([]byte(`{"records":`))
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
		})

		Convey("When the body holds two documents", func() {
			_, err := payload.Decode(strings.NewReader(`{} {}`))
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given the embedded payload schemas", t, func() {
		em, err := payload.DecodeBytes([]byte(elementMajor))
		So(err, ShouldBeNil)
		wm, err := payload.DecodeBytes([]byte(windowMajor))
		So(err, ShouldBeNil)

		Convey("Then each document matches its own shape", func() {
			So(payload.Validate(em, payload.ElementMajor), ShouldBeNil)
			So(payload.Validate(wm, payload.WindowMajor), ShouldBeNil)
		})

		Convey("And the shapes do not cross-validate", func() {
			So(errors.Is(payload.Validate(em, payload.WindowMajor), failure.ErrSchema), ShouldBeTrue)
			So(errors.Is(payload.Validate(wm, payload.ElementMajor), failure.ErrSchema), ShouldBeTrue)
		})

		Convey("And an element without Time passes the shape gate", func() {
			doc, err := payload.DecodeBytes([]byte(`{"records":{"Locations":[{"Location":[{"WeatherElement":[{"ElementName":"天氣現象"}]}]}]}}`))
			So(err, ShouldBeNil)
			So(payload.Validate(doc, payload.ElementMajor), ShouldBeNil)
		})

		Convey("And a missing WeatherElement is rejected", func() {
			doc, err := payload.DecodeBytes([]byte(`{"records":{"Locations":[{"Location":[{}]}]}}`))
			So(err, ShouldBeNil)
			So(errors.Is(payload.Validate(doc, payload.ElementMajor), failure.ErrSchema), ShouldBeTrue)
		})
	})
}

func TestWalk(t *testing.T) {
	Convey("Given a decoded element-major document", t, func() {
		doc, err := payload.DecodeBytes([]byte(elementMajor))
		So(err, ShouldBeNil)
		root := payload.Root(doc)

		Convey("When walking to an existing leaf", func() {
			n, err := root.Walk("records", "Locations", 0, "Location", 0, "WeatherElement", 0, "ElementName")
			So(err, ShouldBeNil)
			name, err := n.Text()
			So(err, ShouldBeNil)
			So(name, ShouldEqual, "溫度")
			So(n.Path(), ShouldEqual, "$.records.Locations[0].Location[0].WeatherElement[0].ElementName")
		})

		Convey("When a key is missing", func() {
			_, err := root.Walk("records", "locations")
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, `$.records: missing key "locations"`)
		})

		Convey("When an index is out of range", func() {
			_, err := root.Walk("records", "Locations", 3)
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
		})

		Convey("When a type does not match", func() {
			_, err := root.Walk("records", "Locations", "Location")
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "expected object, got array")
		})

		Convey("When reading numbers and nulls as scalars", func() {
			n, err := payload.DecodeBytes([]byte(`{"a": 25.5, "b": null, "c": {}}`))
			So(err, ShouldBeNil)
			r := payload.Root(n)
			a, _ := r.Lookup("a")
			s, err := a.Scalar()
			So(err, ShouldBeNil)
			So(s, ShouldEqual, "25.5")
			b, _ := r.Lookup("b")
			s, err = b.Scalar()
			So(err, ShouldBeNil)
			So(s, ShouldBeEmpty)
			c, _ := r.Lookup("c")
			_, err = c.Scalar()
			So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			_, ok := r.Lookup("missing")
			So(ok, ShouldBeFalse)
		})
	})
}
