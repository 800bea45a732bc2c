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

package tone

import (
	"time"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

// DetectionConfidence turns SNR and timing-error figures into the
// [0,1] confidence TimeSnap eligibility is gated on (spec section 3):
// timing error dominates, since a precisely-located but weak tone is
// still useful, while a strong but mistimed one is not.
func DetectionConfidence(d model.ToneDetection) float64 {
	timingScore := 1.0 - clamp(absf(d.TimingErrorMs)/5.0, 0, 1)
	snrScore := clamp((d.SNRdB-model.MinSNRdB)/20.0, 0, 1)
	return 0.7*timingScore + 0.3*snrScore
}

// UpdateIfEligible returns a new TimeSnap anchored at detection d's
// second-mark onset if its confidence and SNR clear the establishment
// threshold; otherwise it returns the unmodified current snap. A
// TimeSnap's owner replaces its value wholesale via this function's
// result, never mutates it in place.
func UpdateIfEligible(current model.TimeSnap, d model.ToneDetection, source model.TimeSnapSource, at time.Time) model.TimeSnap {
	confidence := DetectionConfidence(d)
	if !model.Eligible(confidence, d.SNRdB) {
		return current
	}
	return model.TimeSnap{
		RTPTimestamp:  d.OnsetRTP,
		UTCTimestamp:  at.Truncate(time.Second).UnixNano(),
		Source:        source,
		Confidence:    confidence,
		EstablishedAt: at.UnixNano(),
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
