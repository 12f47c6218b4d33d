package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// counterValue sums every series of a gathered counter family.
func counterValue(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	So(err, ShouldBeNil)
	total := 0.0
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			if c := m.GetCounter(); c != nil {
				total += c.GetValue()
			}
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "trustgraph")
				So(manager.subsystem, ShouldEqual, "pipeline")
			})
		})

		Convey("When creating with custom options", func() {
			manager := NewManager(
				WithNamespace("ns"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"graph": "ai"}),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then the options are applied", func() {
				So(manager.namespace, ShouldEqual, "ns")
				So(manager.subsystem, ShouldEqual, "sub")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.constLabels["graph"], ShouldEqual, "ai")
			})
		})

		Convey("When empty values are passed", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "trustgraph")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		reg := GetRegistry()

		Convey("When recording duplicates", func() {
			before := counterValue(reg, "trustgraph_pipeline_duplicates_total")
			RecordDuplicate("post")
			RecordDuplicate("follow")

			Convey("Then the counter grows by two", func() {
				So(counterValue(reg, "trustgraph_pipeline_duplicates_total"), ShouldEqual, before+2)
			})
		})

		Convey("When recording every kind of pipeline metric", func() {
			So(func() {
				RecordRecordNormalized("seed_followings")
				RecordEventEmitted("follow")
				RecordEventDropped("self_loop")
				RecordSourceSkipped("missing")
				RecordEventAggregated("reply")
				RecordEdgeEmitted(60)
				RecordSeedsEmitted(3)
				RecordSeedsFiltered(1)
				RecordScoresNormalized("log2", 3)
				RecordScoresDiscarded(1)
				RecordStageDuration("trust", 0.25)
				RecordStageError("scores")
			}, ShouldNotPanic)

			Convey("Then edges are counted", func() {
				So(counterValue(reg, "trustgraph_pipeline_edges_emitted_total"), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a textfile destination", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "trustgraph.prom")
		RecordSeedsEmitted(1)

		Convey("When writing the registry", func() {
			err := WriteTextfile(path)

			Convey("Then the exposition text is on disk", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldContainSubstring, "trustgraph_pipeline_seeds_emitted_total")
			})
		})

		Convey("When the directory does not exist", func() {
			err := WriteTextfile(filepath.Join(dir, "missing", "x.prom"))

			Convey("Then a wrapped error is returned", func() {
				So(errors.Is(err, ErrWriteTextfile), ShouldBeTrue)
			})
		})
	})
}
