package prometheus

import (
	"github.com/JibranRasheed/NCDK-sub001/internal/domain/observe"
	"github.com/JibranRasheed/NCDK-sub001/pkg/types/molecule"
)

// PerceptionMetrics holds the counters and histograms of the perception
// service.  It also satisfies observe.Observer so the domain transforms can
// report stereo outcomes directly.
type PerceptionMetrics struct {
	GraphsAdaptedTotal         CounterVec
	PatternsCompiledTotal      CounterVec
	StereoElementsTotal        CounterVec
	StereoDroppedTotal         CounterVec
	FragmentsTotal             CounterVec
	ProjectionsClassifiedTotal CounterVec
	ConversionDuration         HistogramVec
	BatchInflight              GaugeVec
}

// DefaultConversionBuckets suits in-memory graph transforms, which finish in
// microseconds to milliseconds.
var DefaultConversionBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1}

// NewPerceptionMetrics registers all metrics on collector.
func NewPerceptionMetrics(collector MetricsCollector) *PerceptionMetrics {
	return &PerceptionMetrics{
		GraphsAdaptedTotal:         collector.RegisterCounter("graphs_adapted_total", "Notation graphs adapted", "result"),
		PatternsCompiledTotal:      collector.RegisterCounter("patterns_compiled_total", "Pattern trees compiled", "result"),
		StereoElementsTotal:        collector.RegisterCounter("stereo_elements_total", "Stereo elements emitted", "source", "kind"),
		StereoDroppedTotal:         collector.RegisterCounter("stereo_dropped_total", "Stereo elements or rings skipped as under-specified", "source", "reason"),
		FragmentsTotal:             collector.RegisterCounter("fragments_total", "Fragments produced by partitioning"),
		ProjectionsClassifiedTotal: collector.RegisterCounter("projections_classified_total", "Rings matched to a projection type", "projection"),
		ConversionDuration:         collector.RegisterHistogram("conversion_duration_seconds", "Duration of a single conversion", DefaultConversionBuckets, "operation"),
		BatchInflight:              collector.RegisterGauge("batch_inflight", "Adaptations currently running in a batch"),
	}
}

// NewNoopPerceptionMetrics returns metrics that record nothing.
func NewNoopPerceptionMetrics() *PerceptionMetrics {
	return &PerceptionMetrics{
		GraphsAdaptedTotal:         noopCounterVec{},
		PatternsCompiledTotal:      noopCounterVec{},
		StereoElementsTotal:        noopCounterVec{},
		StereoDroppedTotal:         noopCounterVec{},
		FragmentsTotal:             noopCounterVec{},
		ProjectionsClassifiedTotal: noopCounterVec{},
		ConversionDuration:         noopHistogramVec{},
		BatchInflight:              noopGaugeVec{},
	}
}

var _ observe.Observer = (*PerceptionMetrics)(nil)

func (m *PerceptionMetrics) Emitted(source observe.Source, kind molecule.StereoKind) {
	m.StereoElementsTotal.WithLabelValues(string(source), string(kind)).Inc()
}

func (m *PerceptionMetrics) Dropped(source observe.Source, reason string) {
	m.StereoDroppedTotal.WithLabelValues(string(source), reason).Inc()
}

func (m *PerceptionMetrics) Classified(projection string) {
	m.ProjectionsClassifiedTotal.WithLabelValues(projection).Inc()
}

// Helpers

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Time starts a Timer on the conversion histogram for operation.
func (m *PerceptionMetrics) Time(operation string) *Timer {
	return NewTimer(m.ConversionDuration.WithLabelValues(operation))
}

// RecordAdapt counts one adaptation.
func RecordAdapt(m *PerceptionMetrics, err error) {
	m.GraphsAdaptedTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordCompile counts one pattern compilation.
func RecordCompile(m *PerceptionMetrics, err error) {
	m.PatternsCompiledTotal.WithLabelValues(resultLabel(err)).Inc()
}

// RecordPartition counts the fragments of one partitioning.
func RecordPartition(m *PerceptionMetrics, fragments int) {
	m.FragmentsTotal.WithLabelValues().Add(float64(fragments))
}
