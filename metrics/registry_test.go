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

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryRegistersEveryMetric(t *testing.T) {
	r := NewRegistry()
	r.ActiveWorkers.Set(3)
	r.QueueDepth.WithLabelValues("ch0", "tone").Set(5)
	r.Discontinuities.WithLabelValues("ch0", "network_gap").Inc()
	r.ConvergenceState.WithLabelValues("WWV", "LOCKED").Set(1)
	r.FusionAgreementGauge.Set(0.2)
	r.SNRHistogram.WithLabelValues("WWV").Observe(22.5)

	families, err := r.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"recorder_active_channel_workers",
		"recorder_pipeline_queue_depth",
		"recorder_discontinuities_total",
		"recorder_convergence_state",
		"recorder_fusion_agreement_spread_ms",
		"recorder_tone_snr_db",
	} {
		assert.True(t, names[want], "missing metric family %s", want)
	}
}

func TestGatherReturnsNoErrorOnEmptyRegistry(t *testing.T) {
	r := NewRegistry()
	_, err := r.Gather()
	assert.NoError(t, err)
}
