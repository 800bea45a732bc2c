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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEligibleRequiresBothThresholds(t *testing.T) {
	assert.True(t, Eligible(0.7, 15.0))
	assert.False(t, Eligible(0.69, 20.0))
	assert.False(t, Eligible(0.9, 14.9))
}

// TestUTCOfSampleEquation locks down the bit-exact TimeSnap equation
// from testable property 4: utc(sample) = T.utc + (sample.rtp -
// T.rtp) / sample_rate.
func TestUTCOfSampleEquation(t *testing.T) {
	snap := TimeSnap{RTPTimestamp: 1000, UTCTimestamp: 1_700_000_000_000_000_000, Source: SourceWWVTone, Confidence: 0.9}
	got := snap.UTCOfSample(1000+int64(SampleRateHF), SampleRateHF)
	assert.Equal(t, snap.UTCTimestamp+int64(1e9), got)
}

func TestUTCOfSampleAtAnchorIsExact(t *testing.T) {
	snap := TimeSnap{RTPTimestamp: 5000, UTCTimestamp: 42}
	assert.Equal(t, int64(42), snap.UTCOfSample(5000, SampleRateHF))
}

func TestUTCOfSampleIsMonotonicInRTPDelta(t *testing.T) {
	snap := TimeSnap{RTPTimestamp: 0, UTCTimestamp: 0}
	a := snap.UTCOfSample(100, SampleRateHF)
	b := snap.UTCOfSample(200, SampleRateHF)
	assert.Less(t, a, b)
}
