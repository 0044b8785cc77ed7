package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithRefreshInterval(time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "test")
				So(manager.subsystem, ShouldEqual, "unit")
				So(manager.refreshInterval, ShouldEqual, time.Second)
				So(manager.histogramBuckets, ShouldResemble, []float64{1, 10, 100})
			})

			Convey("And the metrics are registered on that registry", func() {
				manager.refreshes.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When empty option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "salesdash")
				So(manager.subsystem, ShouldEqual, "scoring")
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording refresh outcomes", func() {
			before := testutil.ToFloat64(globalManager.refreshes.WithLabelValues("ok"))
			RecordRefresh("ok", 2*time.Second)

			Convey("Then the counter increases", func() {
				So(testutil.ToFloat64(globalManager.refreshes.WithLabelValues("ok")), ShouldEqual, before+1)
			})
		})

		Convey("When updating the rating distribution", func() {
			UpdateRatingDistribution(map[string]int{"A": 2, "C": 1}, 3)

			Convey("Then every letter is set, missing ones to zero", func() {
				So(testutil.ToFloat64(globalManager.employeesByGrade.WithLabelValues("A")), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.employeesByGrade.WithLabelValues("B")), ShouldEqual, 0)
				So(testutil.ToFloat64(globalManager.employeesByGrade.WithLabelValues("C")), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.employeesUnrated), ShouldEqual, 3)
			})
		})

		Convey("When recording gateway activity", func() {
			before := testutil.ToFloat64(globalManager.gatewayLogins.WithLabelValues("beststore", "failed"))
			RecordGatewayLogin("beststore", false)
			RecordGatewayError("beststore", "timeout")
			RecordExport(4, 20*time.Second)
			RecordRowsSkipped(0)
			RecordRowsSkipped(2)
			RecordHRMatchMiss()

			Convey("Then the labelled counters move", func() {
				So(testutil.ToFloat64(globalManager.gatewayLogins.WithLabelValues("beststore", "failed")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.gatewayErrors.WithLabelValues("beststore", "timeout")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When toggling worker and queue gauges", func() {
			SetWorkerBusy(true)
			UpdateQueueCapacity(8)
			UpdateQueueSize(3)
			RecordQueueRejected()

			Convey("Then the gauges reflect the latest values", func() {
				So(testutil.ToFloat64(globalManager.workerBusy), ShouldEqual, 1)
				So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 8)
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
				SetWorkerBusy(false)
				So(testutil.ToFloat64(globalManager.workerBusy), ShouldEqual, 0)
			})
		})

		Convey("When serving the registry", func() {
			RecordHTTPRequest("dashboard", "GET", "200")
			RecordHTTPRequestDuration("dashboard", "GET", "200", 3)
			RecordErrorByEndpoint("dashboard", "GET", "server_error")
			RecordErrorByType("server_error", "high")
			UpdateSystemMemoryUsage(1024)
			UpdateSystemGoroutineCount(10)

			Convey("Then the custom registry gathers them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 5)
				So(RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}
