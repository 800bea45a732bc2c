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

// TimeSnapSource identifies what established a TimeSnap.
type TimeSnapSource string

const (
	SourceWWVTone        TimeSnapSource = "WWV_TONE"
	SourceWWVHTone       TimeSnapSource = "WWVH_TONE"
	SourceCHUTone        TimeSnapSource = "CHU_TONE"
	SourceNTP            TimeSnapSource = "NTP"
	SourceStartupEstimate TimeSnapSource = "STARTUP_ESTIMATE"
)

// MinConfidence and MinSNRdB are the establishment thresholds from
// spec section 3: a TimeSnap may only be created or replaced from a
// detection meeting both.
const (
	MinConfidence = 0.7
	MinSNRdB      = 15.0
)

// TimeSnap anchors a channel's private RTP sample clock to UTC (spec
// section 3). It has a single owner per channel and is replaced
// atomically; it is never mutated in place so that a reader holding a
// copy never observes a half-updated snap.
type TimeSnap struct {
	RTPTimestamp  uint32
	UTCTimestamp  int64 // unix nanoseconds
	Source        TimeSnapSource
	Confidence    float64
	EstablishedAt int64 // unix nanoseconds, wall clock of establishment
}

// Eligible reports whether a detection's confidence and SNR clear the
// bar spec section 3 sets for establishing or replacing a TimeSnap.
func Eligible(confidence, snrDB float64) bool {
	return confidence >= MinConfidence && snrDB >= MinSNRdB
}

// UTCOfSample reproduces the TimeSnap equation of spec section 3 and
// testable property 4: utc(sample) = T.utc + (sample.rtp - T.rtp) /
// sample_rate. The result is in unix nanoseconds. rtpDelta must
// already account for the 32-bit RTP timestamp's wraparound (the
// caller is expected to have unwrapped it against T.RTPTimestamp
// before calling, e.g. via a per-SSRC extended-timestamp tracker).
func (t TimeSnap) UTCOfSample(sampleRTP int64, sampleRateHz int64) int64 {
	rtpDelta := sampleRTP - int64(t.RTPTimestamp)
	nanosPerSample := int64(1e9) / sampleRateHz
	return t.UTCTimestamp + rtpDelta*nanosPerSample
}
