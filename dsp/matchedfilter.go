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

package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// QuadratureReference is a complex exponential at toneHz sampled at
// sampleRateHz for n samples, the matched-filter reference spec
// section 4.4 correlates each second-mark window against.
func QuadratureReference(toneHz float64, sampleRateHz float64, n int) []complex128 {
	ref := make([]complex128, n)
	w := 2 * math.Pi * toneHz / sampleRateHz
	for i := 0; i < n; i++ {
		theta := w * float64(i)
		ref[i] = cmplx.Exp(complex(0, theta))
	}
	return ref
}

// Correlate computes the complex inner product of samples against ref
// at each offset in [0, len(samples)-len(ref)], returning the
// magnitude and phase of the peak plus its index — the core operation
// behind tone onset detection (spec section 4.4) and BCD subcarrier
// correlation (spec section 4.5).
type CorrelationPeak struct {
	Index      int
	Magnitude  float64
	Phase      float64
	NoiseFloor float64
}

func Correlate(samples []model.IQSample, ref []complex128) CorrelationPeak {
	if len(samples) < len(ref) {
		return CorrelationPeak{}
	}
	n := len(samples) - len(ref) + 1
	mags := make([]float64, n)
	var sumMag, peakMag float64
	peakIdx := 0
	var peakVal complex128
	for offset := 0; offset < n; offset++ {
		var acc complex128
		for i, r := range ref {
			s := samples[offset+i]
			acc += complex(float64(s.I), float64(s.Q)) * cmplx.Conj(r)
		}
		m := cmplx.Abs(acc)
		mags[offset] = m
		sumMag += m
		if m > peakMag {
			peakMag = m
			peakIdx = offset
			peakVal = acc
		}
	}
	noiseFloor := 0.0
	if n > 1 {
		noiseFloor = (sumMag - peakMag) / float64(n-1)
	}
	return CorrelationPeak{
		Index:      peakIdx,
		Magnitude:  peakMag,
		Phase:      cmplx.Phase(peakVal),
		NoiseFloor: noiseFloor,
	}
}

// SNRdB converts a correlation peak's magnitude-over-noise-floor ratio
// to decibels, clamping to a large-but-finite value when the floor is
// zero so callers never divide by zero.
func (p CorrelationPeak) SNRdB() float64 {
	if p.NoiseFloor <= 0 {
		return 120.0
	}
	return 20 * math.Log10(p.Magnitude/p.NoiseFloor)
}
