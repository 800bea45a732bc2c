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

import "time"

// Encoding identifies how IQ samples are packed in an RTP payload,
// announced by the SDR producer via RTP payload type (spec section 6).
type Encoding uint8

const (
	EncodingPCM16 Encoding = iota
	EncodingFloat32
)

// RTPFrame is one received datagram for one SSRC (spec section 3).
// Sequence and Timestamp are in that SSRC's own, independent 16- and
// 32-bit wrapping clocks: they must never be compared across SSRCs.
type RTPFrame struct {
	SSRC      uint32
	Sequence  uint16
	Timestamp uint32
	Encoding  Encoding
	Payload   []byte
	Arrival   time.Time
}

// DataQuality flags a MinuteFrame's completeness (spec section 4.3).
type DataQuality uint8

const (
	DataQualityComplete DataQuality = iota
	DataQualityMinorGaps
	DataQualityUnusable
)

func (q DataQuality) String() string {
	switch q {
	case DataQualityComplete:
		return "complete"
	case DataQualityMinorGaps:
		return "minor_gaps"
	case DataQualityUnusable:
		return "unusable"
	default:
		return "unknown"
	}
}

// MinuteFrame is exactly one UTC minute of samples for one channel
// (spec section 3): SamplesPerMinute IQ slots at the canonical HF rate,
// the Discontinuities that fall inside it, and the TimeSnap in force
// when the minute was delivered.
type MinuteFrame struct {
	Channel        Channel
	UTCMinute      time.Time
	Samples        []IQSample
	Discontinuities []Discontinuity
	TimeSnap       TimeSnap
	DataQuality    DataQuality
}

// SampleEquivalent is the number of sample slots a discontinuity
// accounts for; testable property 2 requires that summed over a
// minute's actual samples plus this, the total equal SamplesPerMinute.
func (d Discontinuity) SampleEquivalent() int {
	return int(d.LengthSamples)
}
