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

package characterize

import (
	"math"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// genQuadratureTone synthesizes n IQ samples of a unit-amplitude
// complex exponential at freqHz, matching the reference waveforms
// Correlate/QuadratureReference expect to match against.
func genQuadratureTone(freqHz float64, n int) []model.IQSample {
	out := make([]model.IQSample, n)
	w := 2 * math.Pi * freqHz / model.SampleRateHF
	for i := range out {
		theta := w * float64(i)
		out[i] = model.IQSample{I: float32(math.Cos(theta)), Q: float32(math.Sin(theta))}
	}
	return out
}

// genRealTone synthesizes n samples of a real-valued cosine at freqHz
// on the I rail only, the shape the harmonic/Doppler analyses (which
// read only the I component) expect.
func genRealTone(freqHz float64, n int) []model.IQSample {
	out := make([]model.IQSample, n)
	w := 2 * math.Pi * freqHz / model.SampleRateHF
	for i := range out {
		out[i] = model.IQSample{I: float32(math.Cos(w * float64(i)))}
	}
	return out
}
