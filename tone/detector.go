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

// Package tone implements Step 1 of the measurement pipeline: a
// quadrature matched-filter second-mark detector for WWV (1000 Hz),
// WWVH (1200 Hz) and CHU (1000 Hz), and the TimeSnap updates that
// follow an eligible detection (spec section 4.4).
package tone

import (
	"fmt"
	"math"

	"github.com/mijahauan/signal-recorder-sub008/dsp"
	"github.com/mijahauan/signal-recorder-sub008/model"
)

// Frequencies of the three stations' second-mark tones (spec section
// 4.4).
const (
	WWVToneHz  = 1000.0
	WWVHToneHz = 1200.0
	CHUToneHz  = 1000.0
)

// searchWindowMs sets the length of each reference waveform (100 ms of
// samples). Correlate slides the reference across the whole window
// DetectSecondMark is given, so the span searched is set by the caller.
const searchWindowMs = 100

// Detector runs the matched filter for one channel.
type Detector struct {
	station     model.Station
	frequencyHz uint64
	wwvRef      []complex128
	wwvhRef     []complex128
	chuRef      []complex128
}

// NewDetector builds the reference waveforms for a channel's frequency
// once, up front, since they depend only on sample rate and tone
// frequency.
func NewDetector(ch model.Channel) *Detector {
	n := int(searchWindowMs * model.SampleRateHF / 1000)
	d := &Detector{frequencyHz: ch.FrequencyHz}
	if model.IsCHU(ch.FrequencyHz) {
		d.station = model.StationCHU
		d.chuRef = dsp.QuadratureReference(CHUToneHz, model.SampleRateHF, n)
		return d
	}
	d.station = model.StationWWV
	d.wwvRef = dsp.QuadratureReference(WWVToneHz, model.SampleRateHF, n)
	if model.CarriesWWVH(ch.FrequencyHz) {
		d.wwvhRef = dsp.QuadratureReference(WWVHToneHz, model.SampleRateHF, n)
	}
	return d
}

// DetectSecondMark correlates the window of samples immediately
// surrounding an expected second boundary and returns one
// ToneDetection per station whose reference is active for this
// channel (WWV only, or WWV+WWVH on shared frequencies, or CHU).
func (d *Detector) DetectSecondMark(window []model.IQSample, onsetRTP uint32) ([]model.ToneDetection, error) {
	if len(window) == 0 {
		return nil, fmt.Errorf("%w: empty tone search window", model.ErrDSPFailure)
	}
	var out []model.ToneDetection
	if d.chuRef != nil {
		out = append(out, d.correlate(model.StationCHU, CHUToneHz, window, d.chuRef, onsetRTP))
		return out, nil
	}
	out = append(out, d.correlate(model.StationWWV, WWVToneHz, window, d.wwvRef, onsetRTP))
	if d.wwvhRef != nil {
		out = append(out, d.correlate(model.StationWWVH, WWVHToneHz, window, d.wwvhRef, onsetRTP))
	}
	return out, nil
}

func (d *Detector) correlate(station model.Station, toneHz float64, window []model.IQSample, ref []complex128, onsetRTP uint32) model.ToneDetection {
	peak := dsp.Correlate(window, ref)
	samplesFromCenter := peak.Index - len(window)/2
	timingErrorMs := float64(samplesFromCenter) * 1000.0 / model.SampleRateHF
	return model.ToneDetection{
		Station:        station,
		FrequencyHz:    d.frequencyHz,
		OnsetRTP:       onsetRTP,
		TimingErrorMs:  timingErrorMs,
		SNRdB:          peak.SNRdB(),
		MarkerPowerdB:  20 * logOrFloor(peak.Magnitude),
		NoiseFloordB:   20 * logOrFloor(peak.NoiseFloor),
		PeakCorrelation: peak.Magnitude,
	}
}

func logOrFloor(x float64) float64 {
	if x <= 0 {
		return -200
	}
	return math.Log10(x)
}
