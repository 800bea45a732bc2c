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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mijahauan/signal-recorder-sub008/model"
)

func TestDetectionConfidenceIsHighForAPreciseStrongDetection(t *testing.T) {
	d := model.ToneDetection{TimingErrorMs: 0, SNRdB: 35}
	conf := DetectionConfidence(d)
	assert.InDelta(t, 1.0, conf, 1e-9)
}

func TestDetectionConfidenceWeightsTimingErrorMoreThanSNR(t *testing.T) {
	precise := DetectionConfidence(model.ToneDetection{TimingErrorMs: 0, SNRdB: 15})
	strongButMistimed := DetectionConfidence(model.ToneDetection{TimingErrorMs: 5, SNRdB: 35})
	assert.Greater(t, precise, strongButMistimed)
}

func TestUpdateIfEligibleReplacesSnapWhenThresholdsAreCleared(t *testing.T) {
	current := model.TimeSnap{RTPTimestamp: 1, UTCTimestamp: 1}
	d := model.ToneDetection{OnsetRTP: 9600, TimingErrorMs: 0, SNRdB: 25}
	at := time.Unix(100, 0)

	next := UpdateIfEligible(current, d, model.SourceWWVTone, at)

	assert.Equal(t, d.OnsetRTP, next.RTPTimestamp)
	assert.Equal(t, model.SourceWWVTone, next.Source)
	assert.Equal(t, at.Truncate(time.Second).UnixNano(), next.UTCTimestamp)
	assert.True(t, model.Eligible(next.Confidence, d.SNRdB))
}

func TestUpdateIfEligibleLeavesSnapUnchangedBelowThreshold(t *testing.T) {
	current := model.TimeSnap{RTPTimestamp: 1, UTCTimestamp: 1, Source: model.SourceNTP}
	// SNR far below MinSNRdB: confidence alone can't clear Eligible.
	d := model.ToneDetection{OnsetRTP: 9600, TimingErrorMs: 0, SNRdB: 1}

	next := UpdateIfEligible(current, d, model.SourceWWVTone, time.Now())

	assert.Equal(t, current, next)
}
