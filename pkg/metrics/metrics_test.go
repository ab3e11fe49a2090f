package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a dedicated registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("quiz"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			m.roundsCreated.Inc()

			Convey("Then collectors are registered under the namespace", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var names []string
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(strings.Join(names, ","), ShouldContainSubstring, "test_quiz_rounds_created_total")
			})
		})
	})
}

func TestRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording quiz flow metrics", func() {
			before := testutil.ToFloat64(globalManager.exactMatches)
			RecordExactMatch()

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.exactMatches), ShouldEqual, before+1)
			})
		})

		Convey("When recording everything else", func() {
			So(func() {
				RecordRoundCreated()
				RecordMove("ok")
				RecordMove("invalid_index")
				RecordSubmission("accepted")
				RecordAnalysisLatency(95)
				RecordFixtureMiss("scores")
				RecordHandoff("read", "ok")
				UpdateActiveRounds(3)
				RecordRevealSession("all_revealed")
				AddActiveReveals(1)
				AddActiveReveals(-1)
				RecordCelebrationBurst()
				RecordShareText()
				RecordShareImage("ok")
				RecordRenderLatency(12)
				UpdateRenderQueueSize(1)
				UpdateRenderQueueCapacity(64)
				UpdateRenderWorkers(2)
				RecordHTTPRequest("/rounds", "POST", "201")
				RecordHTTPRequestDuration("/rounds", "POST", "201", 3)
				RecordErrorByComponent("render", "encode")
				RecordErrorByType("encode", "high")
				RecordErrorByEndpoint("/rounds", "POST", "client_error")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
