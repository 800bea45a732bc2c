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
	"testing"

	"github.com/stretchr/testify/assert"
)

func sineWave(freqHz, sampleRateHz float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freqHz * float64(i) / sampleRateHz)
	}
	return out
}

func TestPeakFrequencyFindsDominantTone(t *testing.T) {
	const sampleRate = 20000.0
	samples := sineWave(1000, sampleRate, 2000)
	freq, mag := PeakFrequency(samples, sampleRate, 500, 1500)
	assert.InDelta(t, 1000, freq, sampleRate/float64(len(samples)))
	assert.Greater(t, mag, 0.0)
}

func TestPeakFrequencyReturnsZeroForEmptyInput(t *testing.T) {
	freq, mag := PeakFrequency(nil, 20000, 0, 1000)
	assert.Equal(t, 0.0, freq)
	assert.Equal(t, 0.0, mag)
}

func TestBinPowerIsLargerAtToneBinThanElsewhere(t *testing.T) {
	const sampleRate = 20000.0
	samples := sineWave(1000, sampleRate, 2000)
	atTone := BinPower(samples, sampleRate, 1000)
	offTone := BinPower(samples, sampleRate, 3000)
	assert.Greater(t, atTone, offTone)
}
