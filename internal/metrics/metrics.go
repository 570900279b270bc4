// Package metrics holds the per-run Prometheus collectors.
//
// A run is a short batch job, so nothing is served. The registry can be
// written once at the end in the text exposition format for the node
// exporter's textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "scgid_codons"

// Metrics is the collector set of one run.
type Metrics struct {
	Registry *prometheus.Registry

	Artifacts     *prometheus.CounterVec
	Genes         *prometheus.CounterVec
	Concatenates  *prometheus.CounterVec
	Fragments     prometheus.Counter
	Codons        prometheus.Counter
	StageDuration *prometheus.HistogramVec
	Failures      *prometheus.CounterVec
}

// New registers a fresh collector set on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		Artifacts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_total",
			Help:      "Artifacts resolved, by outcome.",
		}, []string{"argument", "status"}),
		Genes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "genes_total",
			Help:      "Reconstructed genes, by frame filter outcome.",
		}, []string{"outcome"}),
		Concatenates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concatenates_total",
			Help:      "Contig concatenates, by size filter outcome.",
		}, []string{"outcome"}),
		Fragments: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "zero_length_fragments_total",
			Help:      "Coding fragments skipped for zero length.",
		}),
		Codons: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "codons_total",
			Help:      "Codons counted across retained contigs.",
		}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed runs, by the stage that failed.",
		}, []string{"stage"}),
	}
}

// WriteTextfile writes every collector to path, replacing it atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
