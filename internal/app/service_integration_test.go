package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	service "github.com/okian/wxgrid/internal/app"
	"github.com/okian/wxgrid/internal/domain/failure"
	"github.com/okian/wxgrid/internal/domain/model"
	"github.com/okian/wxgrid/internal/testpayloads"
	"github.com/okian/wxgrid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	taipei = time.FixedZone("CST", 8*3600)
	start  = time.Date(2024, 5, 1, 6, 0, 0, 0, taipei)
)

func startedService(ctx context.Context) *service.Service {
	svc := service.New(
		service.WithLocation(taipei),
		service.WithClock(func() time.Time { return start.Add(time.Hour) }),
		service.WithImageSize(400, 100),
		service.WithLogger(logger.Nop()),
	)
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a started service and generated payloads", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		ctx = service.WithRequestID(ctx, "test-request")

		svc := startedService(ctx)
		defer svc.Stop()

		p, err := testpayloads.Generate(testpayloads.NewGenerator(testpayloads.WithStart(start)), 3)
		So(err, ShouldBeNil)

		Convey("When rendering the short horizon as text", func() {
			res, err := svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeText, Payload: p.Short})

			Convey("Then a daily table is returned", func() {
				So(err, ShouldBeNil)
				So(res.ContentType, ShouldStartWith, "text/plain")
				So(res.Rows, ShouldEqual, 24)
				So(res.Columns, ShouldEqual, 4)

				lines := strings.Split(string(res.Body), "\n")
				So(len(lines), ShouldEqual, 2+4)
				So(lines[0], ShouldContainSubstring, "Temperature")
				So(lines[0], ShouldContainSubstring, "Probability of precipitation")
				So(lines[2], ShouldStartWith, "2024-05-01")
				So(lines[5], ShouldStartWith, "2024-05-04")
			})
		})

		Convey("When rendering the short horizon as an image", func() {
			res, err := svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeImage, Payload: p.Short})

			Convey("Then a PNG is returned", func() {
				So(err, ShouldBeNil)
				So(res.ContentType, ShouldEqual, "image/png")
				So(bytes.HasPrefix(res.Body, []byte("\x89PNG")), ShouldBeTrue)
			})
		})

		Convey("When rendering the long horizon as text", func() {
			res, err := svc.Forecast(ctx, service.Request{Horizon: model.Long, Mode: service.ModeText, Payload: p.Long})

			Convey("Then one row per day and seven columns are returned", func() {
				So(err, ShouldBeNil)
				So(res.Columns, ShouldEqual, 7)
				So(string(res.Body), ShouldContainSubstring, "UV index")
				So(string(res.Body), ShouldNotContainSubstring, "最高體感溫度")
			})
		})

		Convey("When rendering the long horizon as an image", func() {
			_, err := svc.Forecast(ctx, service.Request{Horizon: model.Long, Mode: service.ModeImage, Payload: p.Long})

			Convey("Then it is unsupported", func() {
				So(errors.Is(err, failure.ErrUnsupported), ShouldBeTrue)
			})
		})

		Convey("When the payload is malformed", func() {
			_, err := svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeText, Payload: []byte(`{"records":{}}`)})

			Convey("Then a schema error is returned", func() {
				So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When the payload is not JSON", func() {
			_, err := svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeText, Payload: []byte(`{"records":`)})

			Convey("Then a schema error is returned", func() {
				So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When summarizing the window payload", func() {
			out, err := svc.Summary(ctx, p.Windows)

			Convey("Then the first window is described", func() {
				So(err, ShouldBeNil)
				So(out, ShouldStartWith, "\nlocation: 臺北市\n")
				So(out, ShouldContainSubstring, "maximum temperature: ")
			})
		})

		Convey("When summarizing an element-major payload", func() {
			_, err := svc.Summary(ctx, p.Short)

			Convey("Then a schema error is returned", func() {
				So(errors.Is(err, failure.ErrSchema), ShouldBeTrue)
			})
		})

		Convey("When running several requests", func() {
			_, _ = svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeText, Payload: p.Short})
			_, _ = svc.Forecast(ctx, service.Request{Horizon: model.Long, Mode: service.ModeImage, Payload: p.Long})
			_, _ = svc.Summary(ctx, p.Windows)

			Convey("Then the counters track them", func() {
				stats := svc.GetStats()
				So(stats["forecasts"], ShouldEqual, int64(2))
				So(stats["summaries"], ShouldEqual, int64(1))
				So(stats["failures"], ShouldEqual, int64(1))
			})
		})
	})
}

func TestServiceConcurrentRequests(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startedService(ctx)
		defer svc.Stop()

		p, err := testpayloads.Generate(testpayloads.NewGenerator(testpayloads.WithStart(start)), 2)
		So(err, ShouldBeNil)

		Convey("When rendering concurrently", func() {
			const n = 16
			var wg sync.WaitGroup
			bodies := make([]string, n)
			errs := make([]error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					res, err := svc.Forecast(ctx, service.Request{Horizon: model.Short, Mode: service.ModeText, Payload: p.Short})
					bodies[i], errs[i] = string(res.Body), err
				}(i)
			}
			wg.Wait()

			Convey("Then every result is identical", func() {
				for i := 0; i < n; i++ {
					So(errs[i], ShouldBeNil)
					So(bodies[i], ShouldEqual, bodies[0])
				}
				So(svc.GetStats()["forecasts"], ShouldEqual, int64(n))
			})
		})
	})
}
