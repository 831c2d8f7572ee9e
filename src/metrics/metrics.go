// Package metrics records hashing, repeat resolution and precorrection counters on a caller supplied
// prometheus registry. A nil *Recorder is valid and records nothing.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FusaishiHaruaki/LJA/src/hashing"
)

// namespace prefixes every metric name
const namespace = "lja"

// Recorder holds the lja collectors
type Recorder struct {
	hashCalls          *prometheus.CounterVec
	minimizers         prometheus.Counter
	verticesProcessed  *prometheus.CounterVec
	precorrectedReads  prometheus.Counter
	examinedReads      prometheus.Counter
	precorrectionTimer prometheus.Histogram
}

// NewRecorder registers the lja collectors on reg, it panics if they are already registered there
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		hashCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hash_calls_total",
			Help:      "Rolling hash window operations by type",
		}, []string{"op"}),
		minimizers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "minimizers_total",
			Help:      "Minimizers selected",
		}),
		verticesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vertices_processed_total",
			Help:      "Vertices visited during repeat resolution by kind",
		}, []string{"kind"}),
		precorrectedReads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "precorrected_reads_total",
			Help:      "Reads rerouted by precorrection",
		}),
		examinedReads: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "precorrection_examined_reads_total",
			Help:      "Reads with more than one edge examined by precorrection",
		}),
		precorrectionTimer: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "precorrection_seconds",
			Help:      "Duration of a precorrection pass",
			Buckets:   prometheus.ExponentialBuckets(0.001, 10, 7),
		}),
	}
}

// AddHashStats adds the window operation counts of a scan
func (r *Recorder) AddHashStats(stats hashing.Stats) {
	if r == nil {
		return
	}
	for op, n := range stats.Counts() {
		r.hashCalls.WithLabelValues(op).Add(float64(n))
	}
}

// AddMinimizers counts selected minimizers
func (r *Recorder) AddMinimizers(n int) {
	if r == nil {
		return
	}
	r.minimizers.Add(float64(n))
}

// VertexProcessed counts one vertex handled by the given kind of processing
func (r *Recorder) VertexProcessed(kind string) {
	if r == nil {
		return
	}
	r.verticesProcessed.WithLabelValues(kind).Inc()
}

// ObservePrecorrection records a finished precorrection pass
func (r *Recorder) ObservePrecorrection(examined, corrected int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.examinedReads.Add(float64(examined))
	r.precorrectedReads.Add(float64(corrected))
	r.precorrectionTimer.Observe(elapsed.Seconds())
}

// Summary renders the lja counters gathered from g, one "name{labels} value" per line
func Summary(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", err
	}
	lines := []string{}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), namespace+"_") {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := []string{}
			for _, pair := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", pair.GetName(), pair.GetValue()))
			}
			name := family.GetName()
			if len(labels) != 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %v", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}
