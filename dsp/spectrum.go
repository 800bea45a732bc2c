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

	"gonum.org/v1/gonum/dsp/fourier"
)

// PeakFrequency runs a real FFT over windowed samples and returns the
// frequency in Hz of the largest spectral bin within [loHz, hiHz] —
// used by the Doppler estimator (spec section 4.5) to track a tone's
// instantaneous carrier frequency across short analysis windows, and
// by the harmonic-ratio analysis to measure power at specific bins.
func PeakFrequency(samples []float64, sampleRateHz float64, loHz, hiHz float64) (freqHz float64, magnitude float64) {
	n := len(samples)
	if n == 0 {
		return 0, 0
	}
	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, samples)
	binHz := sampleRateHz / float64(n)
	best := -1
	bestMag := -1.0
	for i, c := range coeff {
		f := float64(i) * binHz
		if f < loHz || f > hiHz {
			continue
		}
		m := math.Hypot(real(c), imag(c))
		if m > bestMag {
			bestMag = m
			best = i
		}
	}
	if best < 0 {
		return 0, 0
	}
	return float64(best) * binHz, bestMag
}

// BinPower returns the magnitude of the FFT bin nearest targetHz,
// used by harmonic-ratio and intermodulation-ratio analysis (spec
// section 4.5) which compare power at specific known frequencies
// rather than searching a band.
func BinPower(samples []float64, sampleRateHz float64, targetHz float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, samples)
	binHz := sampleRateHz / float64(n)
	idx := int(targetHz/binHz + 0.5)
	if idx < 0 || idx >= len(coeff) {
		return 0
	}
	c := coeff[idx]
	return math.Hypot(real(c), imag(c))
}
