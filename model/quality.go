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

// TimingQualityKind annotates how trustworthy the host's own wall
// clock was when a measurement was produced (spec section 4.9, C9).
type TimingQualityKind string

const (
	// TimingToneLocked means the measurement's own TimeSnap was
	// established or refreshed from a confident tone detection within
	// the last five minutes: the host clock's quality is irrelevant to
	// D_clock's accuracy.
	TimingToneLocked TimingQualityKind = "TONE_LOCKED"
	// TimingNTPSynced means no fresh tone anchor was available but
	// the host's NTP/chrony client reports a synced, low-stratum
	// source.
	TimingNTPSynced TimingQualityKind = "NTP_SYNCED"
	// TimingInterpolated means the active TimeSnap no longer qualifies
	// as tone-locked but is at most one hour old, so UTCOfSample values
	// are interpolated from it rather than freshly anchored.
	TimingInterpolated TimingQualityKind = "INTERPOLATED"
	// TimingWallClock is the fallback when neither a fresh anchor nor
	// a synced host clock is available.
	TimingWallClock TimingQualityKind = "WALL_CLOCK"
)

// HostClockSample is a single host-clock-quality reading (spec section
// 4.9), produced by the hostclock package and consumed by the quality
// annotator.
type HostClockSample struct {
	Synced    bool
	Stratum   int
	OffsetMs  float64
	Source    string
	SampledAt int64 // unix nanoseconds
}
