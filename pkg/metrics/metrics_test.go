package metrics

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should use the pipeline namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "wxgrid")
				So(manager.subsystem, ShouldEqual, "pipeline")
				So(manager.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("x"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			So(manager.RecordPipelineRun("short", "text", OutcomeOK), ShouldBeNil)

			Convey("Then names and constant labels are applied", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_x_runs_total" {
						found = true
						So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty option values are passed", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "wxgrid")
				So(manager.subsystem, ShouldEqual, "pipeline")
				So(manager.histogramBuckets, ShouldNotBeEmpty)
				So(manager.customLabels, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording pipeline runs", func() {
			So(m.RecordPipelineRun("short", "text", OutcomeOK), ShouldBeNil)
			So(m.RecordPipelineRun("short", "text", OutcomeOK), ShouldBeNil)
			So(m.RecordPipelineRun("long", "image", OutcomeError), ShouldBeNil)

			Convey("Then counters are split by labels", func() {
				So(testutil.ToFloat64(m.pipelineRuns.WithLabelValues("short", "text", OutcomeOK)), ShouldEqual, 2)
				So(testutil.ToFloat64(m.pipelineRuns.WithLabelValues("long", "image", OutcomeError)), ShouldEqual, 1)
			})
		})

		Convey("When the outcome label is unknown", func() {
			err := m.RecordPipelineRun("short", "text", "maybe")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, ErrUnknownOutcome), ShouldBeTrue)
				So(testutil.CollectAndCount(m.pipelineRuns), ShouldEqual, 0)
			})
		})

		Convey("When recording extraction counts", func() {
			m.RecordElementsExtracted("short", 4)
			m.RecordElementsExtracted("short", 0)
			m.RecordElementDropped("short", "excluded")

			Convey("Then totals are accumulated", func() {
				So(testutil.ToFloat64(m.elementsExtracted.WithLabelValues("short")), ShouldEqual, 4)
				So(testutil.ToFloat64(m.elementsDropped.WithLabelValues("short", "excluded")), ShouldEqual, 1)
			})
		})

		Convey("When recording window selections", func() {
			m.RecordWindowSelected("containing", true)
			m.RecordWindowSelected("containing", false)

			Convey("Then contained is a boolean label", func() {
				So(testutil.ToFloat64(m.windowsSelected.WithLabelValues("containing", "true")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.windowsSelected.WithLabelValues("containing", "false")), ShouldEqual, 1)
			})
		})

		Convey("When recording HTTP and error metrics", func() {
			m.RecordHTTPRequest("/v1/forecast", "POST", "200")
			m.RecordHTTPRequestDuration("/v1/forecast", "POST", "200", 12.5)
			m.RecordErrorByComponent("extract", "schema")
			m.RecordErrorByEndpoint("/v1/forecast", "POST", "schema")

			Convey("Then each family has one series", func() {
				So(testutil.ToFloat64(m.httpRequests.WithLabelValues("/v1/forecast", "POST", "200")), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.httpRequestDuration), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByComponent.WithLabelValues("extract", "schema")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.errorRateByEndpoint.WithLabelValues("/v1/forecast", "POST", "schema")), ShouldEqual, 1)
			})
		})

		Convey("When recording histograms", func() {
			m.RecordStageLatency("align", 1.2)
			m.RecordAlignedRows(24)
			m.RecordArtifactBytes("image", 40960)

			Convey("Then they are exported", func() {
				So(testutil.CollectAndCount(m.stageLatency), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.alignedRows), ShouldEqual, 1)
				So(testutil.CollectAndCount(m.artifactBytes), ShouldEqual, 1)
			})
		})

		Convey("When tracking the render queue", func() {
			m.UpdateRenderQueueDepth(3)
			m.UpdateRenderWorkers(2)
			m.RecordRenderQueueRejected("full")

			Convey("Then depth, workers and rejections are exported", func() {
				So(testutil.ToFloat64(m.renderQueueDepth), ShouldEqual, 3)
				So(testutil.ToFloat64(m.renderWorkers), ShouldEqual, 2)
				So(testutil.ToFloat64(m.renderQueueRejected.WithLabelValues("full")), ShouldEqual, 1)
			})
		})

		Convey("When updating system metrics", func() {
			m.UpdateSystemMemoryUsage(1 << 20)
			m.UpdateSystemGoroutineCount(12)
			m.RecordSystemGCPauseTime(0.2)

			Convey("Then gauges hold the last value", func() {
				So(testutil.ToFloat64(m.systemMemoryUsage), ShouldEqual, 1<<20)
				So(testutil.ToFloat64(m.systemGoroutineCount), ShouldEqual, 12)
				So(testutil.CollectAndCount(m.systemGCPauseTime), ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsDisabled(t *testing.T) {
	Convey("Given a disabled manager", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()), WithMetricsEnabled(false))

		Convey("When recording", func() {
			So(m.RecordPipelineRun("short", "text", OutcomeOK), ShouldBeNil)
			m.RecordHTTPRequest("/healthz", "GET", "200")

			Convey("Then nothing is exported", func() {
				So(testutil.CollectAndCount(m.pipelineRuns), ShouldEqual, 0)
				So(testutil.CollectAndCount(m.httpRequests), ShouldEqual, 0)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through package functions", func() {
			So(func() {
				So(RecordPipelineRun("short", "text", OutcomeOK), ShouldBeNil)
				RecordStageLatency("extract", 0.4)
				RecordElementsExtracted("long", 7)
				RecordElementDropped("long", "empty")
				RecordAlignedRows(7)
				RecordArtifactBytes("text", 512)
				RecordWindowSelected("last", false)
				RecordHTTPRequest("/healthz", "GET", "200")
				RecordHTTPRequestDuration("/healthz", "GET", "200", 0.1)
				RecordErrorByComponent("render", "render")
				RecordErrorByEndpoint("/v1/summary", "POST", "schema")
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "wxgrid_pipeline_runs_total")
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					_ = m.RecordPipelineRun("short", "image", OutcomeOK)
				}
			}()
		}
		wg.Wait()

		Convey("Then no increments are lost", func() {
			So(testutil.ToFloat64(m.pipelineRuns.WithLabelValues("short", "image", OutcomeOK)), ShouldEqual, 800)
		})
	})
}
