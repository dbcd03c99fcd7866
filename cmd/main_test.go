package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	app "github.com/okian/wxgrid/internal/app"
	"github.com/okian/wxgrid/internal/config"
	"github.com/okian/wxgrid/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			_ = os.Setenv("WXGRID_ADDR", ":8080")
			_ = os.Setenv("WXGRID_WINDOW_POLICY", "last")
			_ = os.Setenv("WXGRID_SHORT_BUCKET", "1h")
			defer func() {
				_ = os.Unsetenv("WXGRID_ADDR")
				_ = os.Unsetenv("WXGRID_WINDOW_POLICY")
				_ = os.Unsetenv("WXGRID_SHORT_BUCKET")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

			convey.Convey("Then the service reflects it", func() {
				opts, err := serviceOptions(cfg)
				convey.So(err, convey.ShouldBeNil)

				stats := app.New(opts...).GetStats()
				convey.So(stats["windowPolicy"], convey.ShouldEqual, "last")
				convey.So(stats["shortBucket"], convey.ShouldEqual, "1h0m0s")
				convey.So(stats["timezone"], convey.ShouldEqual, "Asia/Taipei")
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg := config.New()
			cfg.Timezone = "Mars/Olympus"

			convey.Convey("Then building options fails", func() {
				_, err := serviceOptions(cfg)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When building the mux", func() {
			ctx := context.Background()
			cfg := config.New()
			opts, err := serviceOptions(cfg)
			convey.So(err, convey.ShouldBeNil)
			svc := app.New(append(opts, app.WithLogger(logger.Nop()))...)
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			mux := newMux(ctx, svc, cfg)

			convey.Convey("Then every route group is reachable", func() {
				for _, path := range []string{"/", "/healthz", "/stats", "/metrics", "/api-docs", "/openapi.yaml"} {
					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When running the system metrics updater until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns without panicking", func() {
				convey.So(func() {
					startSystemMetricsUpdater(ctx)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When updating system metrics directly", func() {
			convey.Convey("Then it should not panic", func() {
				convey.So(func() {
					updateSystemMetrics()
				}, convey.ShouldNotPanic)
			})
		})
	})
}
