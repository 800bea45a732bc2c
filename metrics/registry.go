/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics gathers process counters into a prometheus
// registry purely as an in-process data source for the recorder's
// status loop (runStatusLoop in cmd/recorder): no promhttp handler is
// mounted anywhere in this repository, since an HTTP metrics dashboard
// is explicitly out of scope. That loop copies the gauge values of
// Gather()'s result into radiod-status.json; counters and histograms
// are not copied.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registry holds every gauge/counter the pipeline updates.
type Registry struct {
	reg *prometheus.Registry

	ActiveWorkers       prometheus.Gauge
	QueueDepth          *prometheus.GaugeVec
	Discontinuities     *prometheus.CounterVec
	ConvergenceState    *prometheus.GaugeVec
	FusionAgreementGauge prometheus.Gauge
	SNRHistogram        *prometheus.HistogramVec
}

// NewRegistry constructs and registers every metric.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		ActiveWorkers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recorder_active_channel_workers",
			Help: "Number of channel worker goroutines currently running.",
		}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recorder_pipeline_queue_depth",
			Help: "Depth of each channel's pipeline stage queue.",
		}, []string{"channel", "stage"}),
		Discontinuities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recorder_discontinuities_total",
			Help: "Count of archive discontinuities by kind.",
		}, []string{"channel", "kind"}),
		ConvergenceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recorder_convergence_state",
			Help: "1 if the station is currently in the named convergence state, else 0.",
		}, []string{"station", "state"}),
		FusionAgreementGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recorder_fusion_agreement_spread_ms",
			Help: "Most recent cross-broadcast agreement spread, in ms.",
		}),
		SNRHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recorder_tone_snr_db",
			Help:    "Distribution of detected tone SNR in dB.",
			Buckets: prometheus.LinearBuckets(0, 5, 12),
		}, []string{"station"}),
	}
	reg.MustRegister(r.ActiveWorkers, r.QueueDepth, r.Discontinuities, r.ConvergenceState, r.FusionAgreementGauge, r.SNRHistogram)
	return r
}

// Gather returns the registry's current metric families, the same
// call a promhttp handler would make — but here consumed directly by
// the recorder's status loop instead of being served over HTTP.
func (r *Registry) Gather() ([]*dto.MetricFamily, error) {
	return r.reg.Gather()
}
