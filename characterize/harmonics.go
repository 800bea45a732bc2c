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
	"github.com/mijahauan/signal-recorder-sub008/dsp"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

// HarmonicRatios computes the ratio of each second-mark tone's power
// to its half-frequency subharmonic, plus the 400/700 Hz
// intermodulation ratio WWV/WWVH's audio processing chain is known to
// imprint (spec section 4.5 evidence streams: harmonic ratio
// analysis). These ratios feed the frequency-selectivity score and
// help discriminate ionospheric multipath from receiver-side
// nonlinearity.
func HarmonicRatios(minute []model.IQSample) (ratio1000to500, ratio1200to600, intermod400to700 float64) {
	real := make([]float64, len(minute))
	for i, s := range minute {
		real[i] = float64(s.I)
	}
	p1000 := dsp.BinPower(real, model.SampleRateHF, 1000)
	p500 := dsp.BinPower(real, model.SampleRateHF, 500)
	p1200 := dsp.BinPower(real, model.SampleRateHF, 1200)
	p600 := dsp.BinPower(real, model.SampleRateHF, 600)
	p400 := dsp.BinPower(real, model.SampleRateHF, 400)
	p700 := dsp.BinPower(real, model.SampleRateHF, 700)

	ratio1000to500 = safeRatio(p1000, p500)
	ratio1200to600 = safeRatio(p1200, p600)
	intermod400to700 = safeRatio(p400, p700)
	return
}

// FrequencySelectivityScore summarizes minute-8/44 test-signal power
// relative to the noise floor into a single [0,1] figure (spec
// section 4.5).
func FrequencySelectivityScore(testSignalPower, noiseFloorPower float64) float64 {
	if noiseFloorPower <= 0 {
		return 0
	}
	ratio := testSignalPower / noiseFloorPower
	return clamp01(ratio / (ratio + 1))
}

func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
